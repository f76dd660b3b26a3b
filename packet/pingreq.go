package packet

import "io"

// PINGREQ keeps the connection alive, section 3.12. No variable header,
// no payload.
type PINGREQ struct {
	*FixedHeader
}

func (pkt *PINGREQ) Kind() byte { return PINGREQ }

func (pkt *PINGREQ) Pack(w io.Writer) error {
	pkt.FixedHeader.Kind = PINGREQ
	pkt.FixedHeader.RemainingLength = 0
	return pkt.FixedHeader.Pack(w)
}
