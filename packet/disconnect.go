package packet

import "io"

// DISCONNECT is the graceful close notification, section 3.14. No
// variable header, no payload; the broker does not acknowledge it.
type DISCONNECT struct {
	*FixedHeader
}

func (pkt *DISCONNECT) Kind() byte { return DISCONNECT }

func (pkt *DISCONNECT) Pack(w io.Writer) error {
	pkt.FixedHeader.Kind = DISCONNECT
	pkt.FixedHeader.RemainingLength = 0
	return pkt.FixedHeader.Pack(w)
}
