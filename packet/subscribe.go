package packet

import (
	"bytes"
	"fmt"
	"io"
)

// FixedSubscribePacketID is the constant packet identifier used for
// every SUBSCRIBE, legal under the same single-in-flight discipline as
// FixedPublishPacketID.
const FixedSubscribePacketID uint16 = 0x0001

// SUBSCRIBE requests one topic filter at a requested QoS, section 3.8.
// The fixed header flags are mandated to be 0x2 (DUP=0, QoS=1, RETAIN=0).
type SUBSCRIBE struct {
	*FixedHeader

	PacketID     uint16
	TopicFilter  string
	RequestedQoS uint8
}

func (pkt *SUBSCRIBE) Kind() byte { return SUBSCRIBE }

func (pkt *SUBSCRIBE) Pack(w io.Writer) error {
	if pkt.RequestedQoS > 2 {
		return fmt.Errorf("%w: requested qos out of range", ErrInvalidArgument)
	}
	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.Write(i2b(pkt.PacketID))
	if err := writeString(buf, pkt.TopicFilter); err != nil {
		return err
	}
	buf.WriteByte(pkt.RequestedQoS)

	pkt.FixedHeader.Kind = SUBSCRIBE
	pkt.FixedHeader.QoS = 1
	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (pkt *SUBSCRIBE) Unpack(buf *bytes.Buffer) error {
	if buf.Len() < 2 {
		return ErrMalformedPacket
	}
	pkt.PacketID = b2i(buf.Next(2))
	topic, err := readString[string](buf)
	if err != nil {
		return err
	}
	pkt.TopicFilter = topic
	if buf.Len() < 1 {
		return ErrMalformedPacket
	}
	pkt.RequestedQoS = buf.Next(1)[0]
	return nil
}
