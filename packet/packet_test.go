package packet

import (
	"bytes"
	"testing"
)

func TestPUBRECPack(t *testing.T) {
	pkt := &PUBREC{FixedHeader: &FixedHeader{}, PacketID: 7}
	buf := &bytes.Buffer{}
	if err := pkt.Pack(buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	want := []byte{PUBREC<<4, 0x02, 0x00, 0x07}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % X, want % X", buf.Bytes(), want)
	}
}

func TestUnsubscribeRoundTrip(t *testing.T) {
	pkt := &UNSUBSCRIBE{FixedHeader: &FixedHeader{}, PacketID: FixedUnsubscribePacketID, TopicFilter: "t"}
	buf := &bytes.Buffer{}
	if err := pkt.Pack(buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	h := &FixedHeader{}
	if err := h.Unpack(buf); err != nil {
		t.Fatalf("Unpack header: %v", err)
	}
	got := &UNSUBSCRIBE{FixedHeader: h}
	if err := got.Unpack(buf); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if got.PacketID != FixedUnsubscribePacketID || got.TopicFilter != "t" {
		t.Errorf("got %+v", got)
	}
}

func TestUnsubackRejectsWrongSize(t *testing.T) {
	ack := &UNSUBACK{}
	if err := ack.Unpack(bytes.NewBuffer([]byte{0x00, 0x01, 0x00})); err == nil {
		t.Error("expected ErrMessageSize for a three-byte body")
	}
}

func TestPingReqPingResp(t *testing.T) {
	req := &PINGREQ{FixedHeader: &FixedHeader{}}
	buf := &bytes.Buffer{}
	if err := req.Pack(buf); err != nil {
		t.Fatalf("Pack pingreq: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{PINGREQ << 4, 0x00}) {
		t.Errorf("got % X", buf.Bytes())
	}

	resp := &PINGRESP{FixedHeader: &FixedHeader{}}
	buf.Reset()
	if err := resp.Pack(buf); err != nil {
		t.Fatalf("Pack pingresp: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{PINGRESP << 4, 0x00}) {
		t.Errorf("got % X", buf.Bytes())
	}
}

func TestDisconnectPack(t *testing.T) {
	pkt := &DISCONNECT{FixedHeader: &FixedHeader{}}
	buf := &bytes.Buffer{}
	if err := pkt.Pack(buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{DISCONNECT << 4, 0x00}) {
		t.Errorf("got % X", buf.Bytes())
	}
}

func TestPublishRejectsQoS2Outbound(t *testing.T) {
	pkt := &PUBLISH{FixedHeader: &FixedHeader{}, Message: &Message{Topic: "a", Payload: []byte("x"), QoS: 2}, PacketID: 1}
	if err := pkt.Pack(&bytes.Buffer{}); err == nil {
		t.Error("expected ErrInvalidArgument for an outbound QoS 2 publish")
	}
}

func TestConnectRejectsAsymmetricWill(t *testing.T) {
	pkt := &CONNECT{FixedHeader: &FixedHeader{}, WillTopic: "lwt"}
	if err := pkt.Pack(&bytes.Buffer{}); err == nil {
		t.Error("expected ErrInvalidArgument for a will topic with no will payload")
	}
}
