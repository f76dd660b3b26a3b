package packet

import (
	"fmt"
	"io"
)

// FixedHeader is the first portion of every MQTT control packet.
//
//	byte 1  | MQTT Control Packet type (bits 7-4) | Flags (bits 3-0) |
//	byte 2+ | Remaining Length (variable-length integer)             |
type FixedHeader struct {
	// Kind is the control packet type, bits 7-4 of byte 1.
	Kind byte

	// Dup, QoS and Retain are the per-type flags, bits 3-0 of byte 1.
	Dup    uint8
	QoS    uint8
	Retain uint8

	// RemainingLength is the number of bytes following the fixed header.
	RemainingLength uint32
}

func (h *FixedHeader) String() string {
	return fmt.Sprintf("%s: len=%d", Kind[h.Kind], h.RemainingLength)
}

func (h *FixedHeader) Pack(w io.Writer) error {
	b0 := h.Kind<<4 | h.Dup<<3 | h.QoS<<1 | h.Retain
	enc, err := encodeLength(h.RemainingLength)
	if err != nil {
		return err
	}
	buf := make([]byte, 0, 1+len(enc))
	buf = append(buf, b0)
	buf = append(buf, enc...)
	_, err = w.Write(buf)
	return err
}

func (h *FixedHeader) Unpack(r io.Reader) error {
	b := make([]byte, 1)
	if _, err := io.ReadFull(r, b); err != nil {
		return err
	}
	h.Kind = b[0] >> 4
	h.Dup = b[0] & 0b00001000 >> 3
	h.QoS = b[0] & 0b00000110 >> 1
	h.Retain = b[0] & 0b00000001

	switch h.Kind {
	case 0x3: // PUBLISH: DUP/QoS/RETAIN are all meaningful
		if h.QoS > 2 {
			return ErrMalformedFlags
		}
	case 0x6, 0x8, 0xA: // PUBREL, SUBSCRIBE, UNSUBSCRIBE: fixed at QoS 1
		if h.Dup != 0 || h.QoS != 1 || h.Retain != 0 {
			return ErrMalformedFlags
		}
	default:
		if h.Dup != 0 || h.QoS != 0 || h.Retain != 0 {
			return ErrMalformedFlags
		}
	}

	var err error
	h.RemainingLength, err = decodeLength(r)
	return err
}
