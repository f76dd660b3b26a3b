package packet

import "io"

// PINGRESP answers a PINGREQ, section 3.13. No variable header, no
// payload; size must be 0.
type PINGRESP struct {
	*FixedHeader
}

func (pkt *PINGRESP) Kind() byte { return PINGRESP }

func (pkt *PINGRESP) Pack(w io.Writer) error {
	pkt.FixedHeader.Kind = PINGRESP
	pkt.FixedHeader.RemainingLength = 0
	return pkt.FixedHeader.Pack(w)
}
