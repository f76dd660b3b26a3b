package packet

import (
	"bytes"
	"io"
)

// FixedUnsubscribePacketID is the constant packet identifier used for
// every UNSUBSCRIBE. It is 2, not 1, purely to mirror the source this
// engine is modeled on; nothing in the protocol requires the two verbs
// to use distinct constants given the single-in-flight discipline.
const FixedUnsubscribePacketID uint16 = 0x0002

// UNSUBSCRIBE removes one topic filter, section 3.10. Fixed-header
// flags are mandated to be 0x2, same as SUBSCRIBE.
type UNSUBSCRIBE struct {
	*FixedHeader

	PacketID    uint16
	TopicFilter string
}

func (pkt *UNSUBSCRIBE) Kind() byte { return UNSUBSCRIBE }

func (pkt *UNSUBSCRIBE) Pack(w io.Writer) error {
	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.Write(i2b(pkt.PacketID))
	if err := writeString(buf, pkt.TopicFilter); err != nil {
		return err
	}

	pkt.FixedHeader.Kind = UNSUBSCRIBE
	pkt.FixedHeader.QoS = 1
	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (pkt *UNSUBSCRIBE) Unpack(buf *bytes.Buffer) error {
	if buf.Len() < 2 {
		return ErrMalformedPacket
	}
	pkt.PacketID = b2i(buf.Next(2))
	topic, err := readString[string](buf)
	if err != nil {
		return err
	}
	pkt.TopicFilter = topic
	return nil
}
