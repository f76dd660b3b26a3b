package packet

import (
	"bytes"
	"io"
)

// UNSUBACK acknowledges an UNSUBSCRIBE, section 3.11. Size must be 2:
// the packet identifier only, no payload. The packet identifier must
// match the one the in-flight unsubscribe used.
type UNSUBACK struct {
	*FixedHeader

	PacketID uint16
}

func (pkt *UNSUBACK) Kind() byte { return UNSUBACK }

func (pkt *UNSUBACK) Pack(w io.Writer) error {
	pkt.FixedHeader.Kind = UNSUBACK
	pkt.FixedHeader.RemainingLength = 2
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := w.Write(i2b(pkt.PacketID))
	return err
}

func (pkt *UNSUBACK) Unpack(buf *bytes.Buffer) error {
	if buf.Len() != 2 {
		return ErrMessageSize
	}
	pkt.PacketID = b2i(buf.Next(2))
	if pkt.PacketID != FixedUnsubscribePacketID {
		return ErrProtocolViolation
	}
	return nil
}
