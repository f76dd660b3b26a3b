package packet

import (
	"bytes"
	"io"
)

// PUBACK acknowledges a QoS 1 PUBLISH, section 3.4. It flows in both
// directions: the client sends one when it receives a QoS 1 publish,
// and receives one as the ack to its own QoS 1 publish.
type PUBACK struct {
	*FixedHeader

	PacketID uint16
}

func (pkt *PUBACK) Kind() byte { return PUBACK }

func (pkt *PUBACK) Pack(w io.Writer) error {
	pkt.FixedHeader.Kind = PUBACK
	pkt.FixedHeader.RemainingLength = 2
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := w.Write(i2b(pkt.PacketID))
	return err
}

// Unpack requires size == 2 and the packet identifier to match the one
// the in-flight publish used.
func (pkt *PUBACK) Unpack(buf *bytes.Buffer) error {
	if buf.Len() != 2 {
		return ErrMessageSize
	}
	pkt.PacketID = b2i(buf.Next(2))
	if pkt.PacketID != FixedPublishPacketID {
		return ErrProtocolViolation
	}
	return nil
}
