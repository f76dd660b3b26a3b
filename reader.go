package mqtt

import (
	"fmt"
	"io"
)

// InboundMessage is handed to OnPublishFunc for every inbound PUBLISH.
// Payload is a bounded reader restricted to exactly Length bytes taken
// directly from the transport: the callback owns draining it. Reading
// fewer than Length bytes leaves the transport misaligned for the next
// frame; this engine does not compensate for that, see OnPublishFunc.
type InboundMessage struct {
	Topic   string
	QoS     uint8
	Dup     bool
	Retain  bool
	Length  int
	Payload io.Reader
}

func (m *InboundMessage) String() string {
	return fmt.Sprintf("%s (qos=%d, %d bytes)", m.Topic, m.QoS, m.Length)
}

// OnPublishFunc receives one inbound application message. It must read
// exactly msg.Length bytes from msg.Payload before returning: the event
// loop resumes reading the transport the moment this call returns,
// whether or not the payload was fully drained. Under-draining is a
// caller bug, not a condition the engine detects or repairs.
type OnPublishFunc func(msg *InboundMessage)

// OnErrorFunc is invoked for protocol-level faults that do not abort
// the event loop: an unexpected ack with nothing in flight, or a
// malformed inbound frame the loop chose to skip past.
type OnErrorFunc func(err error)

func defaultOnPublish(msg *InboundMessage) {
	_, _ = io.Copy(io.Discard, msg.Payload)
}

func defaultOnError(err error) {}
