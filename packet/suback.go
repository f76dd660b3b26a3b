package packet

import (
	"bytes"
	"io"
)

// SUBACK acknowledges a SUBSCRIBE, section 3.9. Size must be 3: packet
// identifier plus one granted-QoS byte (this engine subscribes to a
// single topic filter per request, so there is exactly one grant byte).
type SUBACK struct {
	*FixedHeader

	PacketID   uint16
	ReturnCode ReasonCode
}

func (pkt *SUBACK) Kind() byte { return SUBACK }

func (pkt *SUBACK) Pack(w io.Writer) error {
	pkt.FixedHeader.Kind = SUBACK
	pkt.FixedHeader.RemainingLength = 3
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	buf := append(i2b(pkt.PacketID), pkt.ReturnCode.Code)
	_, err := w.Write(buf)
	return err
}

// Unpack requires size == 3, the packet identifier to match the one
// the in-flight subscribe used, and a granted-QoS byte of 0, 1, or 2;
// anything else (including the 0x80 failure code) is a protocol error.
func (pkt *SUBACK) Unpack(buf *bytes.Buffer) error {
	if buf.Len() != 3 {
		return ErrMessageSize
	}
	pkt.PacketID = b2i(buf.Next(2))
	code := buf.Next(1)[0]
	pkt.ReturnCode = ReasonCode{Code: code}
	if pkt.PacketID != FixedSubscribePacketID {
		return ErrProtocolViolation
	}
	if code > 2 {
		return ErrProtocolViolation
	}
	return nil
}
