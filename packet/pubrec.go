package packet

import "io"

// PUBREC is the first half of the QoS 2 receive flow, section 3.5. The
// client writes one when an inbound QoS 2 publish arrives; it never
// sends an outbound QoS 2 publish, so it never receives one back. The
// second half of the flow, PUBREL/PUBCOMP, is intentionally absent:
// see the engine's handlePublish doc comment.
type PUBREC struct {
	*FixedHeader

	PacketID uint16
}

func (pkt *PUBREC) Kind() byte { return PUBREC }

func (pkt *PUBREC) Pack(w io.Writer) error {
	pkt.FixedHeader.Kind = PUBREC
	pkt.FixedHeader.RemainingLength = 2
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := w.Write(i2b(pkt.PacketID))
	return err
}
