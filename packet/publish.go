package packet

import (
	"bytes"
	"fmt"
	"io"
)

// Message is an application-level publish: a topic, a payload, and the
// QoS it was sent or received at. QoS 2 is only ever seen inbound; the
// engine never emits an outbound QoS 2 PUBLISH.
type Message struct {
	Topic   string
	Payload []byte
	QoS     uint8
}

func (m *Message) String() string {
	return fmt.Sprintf("%s (qos=%d, %d bytes)", m.Topic, m.QoS, len(m.Payload))
}

// FixedPublishPacketID is the constant packet identifier this engine
// uses for every QoS >= 1 outbound PUBLISH. Legal only because at most
// one request is ever in flight (spec section 5): correlation is by
// position, not by a packet-identifier map.
const FixedPublishPacketID uint16 = 0x0001

// PUBLISH carries an application message, section 3.3.
type PUBLISH struct {
	*FixedHeader

	Message  *Message
	PacketID uint16
}

func (pkt *PUBLISH) Kind() byte { return PUBLISH }

// Pack writes the topic, the packet identifier when QoS >= 1, and the
// raw payload. Retain and DUP are always zero on outbound publishes.
func (pkt *PUBLISH) Pack(w io.Writer) error {
	if pkt.Message.QoS > 1 {
		return fmt.Errorf("%w: outbound publish supports qos 0 or 1 only", ErrInvalidArgument)
	}

	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := writeString(buf, pkt.Message.Topic); err != nil {
		return err
	}
	if pkt.Message.QoS >= 1 {
		buf.Write(i2b(pkt.PacketID))
	}
	buf.Write(pkt.Message.Payload)

	pkt.FixedHeader.Kind = PUBLISH
	pkt.FixedHeader.QoS = pkt.Message.QoS
	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Unpack parses a buffered PUBLISH body for round-trip tests. The live
// event loop does not use this path for inbound publishes: it streams
// the payload straight from the transport instead of buffering it, see
// engine's handlePublish.
func (pkt *PUBLISH) Unpack(buf *bytes.Buffer) error {
	topic, err := readString[string](buf)
	if err != nil {
		return err
	}
	if pkt.FixedHeader.QoS >= 1 {
		if buf.Len() < 2 {
			return ErrMalformedPacket
		}
		pkt.PacketID = b2i(buf.Next(2))
	}
	pkt.Message = &Message{
		Topic:   topic,
		Payload: bytes.Clone(buf.Bytes()),
		QoS:     pkt.FixedHeader.QoS,
	}
	return nil
}
