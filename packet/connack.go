package packet

import (
	"bytes"
	"io"
)

// CONNACK acknowledges a CONNECT, section 3.2. The client never sends
// one; Pack exists for round-trip tests, Unpack is what the engine uses.
type CONNACK struct {
	*FixedHeader

	SessionPresent bool
	ReturnCode     ReasonCode
}

func (pkt *CONNACK) Kind() byte { return CONNACK }

func (pkt *CONNACK) Pack(w io.Writer) error {
	pkt.FixedHeader.Kind = CONNACK
	pkt.FixedHeader.RemainingLength = 2
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	flags := byte(0)
	if pkt.SessionPresent {
		flags = 1
	}
	_, err := w.Write([]byte{flags, pkt.ReturnCode.Code})
	return err
}

// Unpack requires size == 2: a connect-ack flags byte (must be 0, this
// engine always forces a clean session so no prior session can be
// present) followed by the return code (must be 0, accepted).
func (pkt *CONNACK) Unpack(buf *bytes.Buffer) error {
	if buf.Len() != 2 {
		return ErrMessageSize
	}
	b := buf.Next(2)
	if b[0] != 0 {
		return ErrProtocolViolation
	}
	pkt.SessionPresent = false
	pkt.ReturnCode = ReasonCode{Code: b[1]}
	if pkt.ReturnCode.Code != 0 {
		return ErrProtocolViolation
	}
	return nil
}
