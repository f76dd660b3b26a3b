package packet

import (
	"bytes"
	"testing"
)

// These mirror the literal end-to-end byte scenarios used to validate
// the engine against the wire.

func TestScenarioConnect(t *testing.T) {
	pkt := &CONNECT{FixedHeader: &FixedHeader{}, ClientID: ""}
	buf := &bytes.Buffer{}
	if err := pkt.Pack(buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	want := []byte{
		0x10, 0x16,
		0x00, 0x04, 'M', 'Q', 'T', 'T',
		0x04, 0x02, 0x01, 0x2C,
		0x00, 0x0A, 's', 'i', 'm', 'b', 'a', '_', 'm', 'q', 't', 't',
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got  % X\nwant % X", buf.Bytes(), want)
	}
}

func TestScenarioConnack(t *testing.T) {
	wire := bytes.NewBuffer([]byte{0x20, 0x02, 0x00, 0x00})
	h := &FixedHeader{}
	if err := h.Unpack(wire); err != nil {
		t.Fatalf("Unpack header: %v", err)
	}
	ack := &CONNACK{FixedHeader: h}
	if err := ack.Unpack(wire); err != nil {
		t.Fatalf("Unpack connack: %v", err)
	}
	if ack.ReturnCode.Code != 0 {
		t.Errorf("ReturnCode = %d, want 0", ack.ReturnCode.Code)
	}
}

func TestScenarioPublishQoS0(t *testing.T) {
	pkt := &PUBLISH{FixedHeader: &FixedHeader{}, Message: &Message{Topic: "a/b", Payload: []byte("hi"), QoS: 0}}
	buf := &bytes.Buffer{}
	if err := pkt.Pack(buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	want := []byte{0x30, 0x07, 0x00, 0x03, 'a', '/', 'b', 'h', 'i'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got  % X\nwant % X", buf.Bytes(), want)
	}
}

func TestScenarioPublishQoS1(t *testing.T) {
	pkt := &PUBLISH{FixedHeader: &FixedHeader{}, Message: &Message{Topic: "a", Payload: []byte("x"), QoS: 1}, PacketID: FixedPublishPacketID}
	buf := &bytes.Buffer{}
	if err := pkt.Pack(buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	want := []byte{0x32, 0x06, 0x00, 0x01, 'a', 0x00, 0x01, 'x'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got  % X\nwant % X", buf.Bytes(), want)
	}

	ackWire := bytes.NewBuffer([]byte{0x40, 0x02, 0x00, 0x01})
	h := &FixedHeader{}
	if err := h.Unpack(ackWire); err != nil {
		t.Fatalf("Unpack header: %v", err)
	}
	ack := &PUBACK{FixedHeader: h}
	if err := ack.Unpack(ackWire); err != nil {
		t.Fatalf("Unpack puback: %v", err)
	}
	if ack.PacketID != FixedPublishPacketID {
		t.Errorf("PacketID = %d, want %d", ack.PacketID, FixedPublishPacketID)
	}
}

func TestScenarioSubscribe(t *testing.T) {
	pkt := &SUBSCRIBE{FixedHeader: &FixedHeader{}, PacketID: FixedSubscribePacketID, TopicFilter: "t", RequestedQoS: 1}
	buf := &bytes.Buffer{}
	if err := pkt.Pack(buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	want := []byte{0x82, 0x06, 0x00, 0x01, 0x00, 0x01, 't', 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got  % X\nwant % X", buf.Bytes(), want)
	}

	ackWire := bytes.NewBuffer([]byte{0x90, 0x03, 0x00, 0x01, 0x01})
	h := &FixedHeader{}
	if err := h.Unpack(ackWire); err != nil {
		t.Fatalf("Unpack header: %v", err)
	}
	ack := &SUBACK{FixedHeader: h}
	if err := ack.Unpack(ackWire); err != nil {
		t.Fatalf("Unpack suback: %v", err)
	}
	if ack.ReturnCode.Code != 1 {
		t.Errorf("ReturnCode = %d, want 1", ack.ReturnCode.Code)
	}
}

func TestScenarioSubscribeRefused(t *testing.T) {
	ackWire := bytes.NewBuffer([]byte{0x90, 0x03, 0x00, 0x01, 0x80})
	h := &FixedHeader{}
	if err := h.Unpack(ackWire); err != nil {
		t.Fatalf("Unpack header: %v", err)
	}
	ack := &SUBACK{FixedHeader: h}
	if err := ack.Unpack(ackWire); err == nil {
		t.Error("expected a protocol error for a 0x80 granted-QoS byte")
	}
}

func TestScenarioInboundPublishQoS1(t *testing.T) {
	wire := bytes.NewBuffer([]byte{0x32, 0x09, 0x00, 0x03, 'a', '/', 'b', 0x00, 0x05, 'h', 'i'})
	h := &FixedHeader{}
	if err := h.Unpack(wire); err != nil {
		t.Fatalf("Unpack header: %v", err)
	}
	pkt := &PUBLISH{FixedHeader: h}
	if err := pkt.Unpack(wire); err != nil {
		t.Fatalf("Unpack publish: %v", err)
	}
	if pkt.Message.Topic != "a/b" || string(pkt.Message.Payload) != "hi" || pkt.PacketID != 5 {
		t.Errorf("got topic=%q payload=%q packetID=%d", pkt.Message.Topic, pkt.Message.Payload, pkt.PacketID)
	}

	ack := &PUBACK{FixedHeader: &FixedHeader{}, PacketID: pkt.PacketID}
	buf := &bytes.Buffer{}
	if err := ack.Pack(buf); err != nil {
		t.Fatalf("Pack puback: %v", err)
	}
	want := []byte{0x40, 0x02, 0x00, 0x05}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got  % X\nwant % X", buf.Bytes(), want)
	}
}

func TestScenarioUnexpectedAck(t *testing.T) {
	// No request in flight; a stray puback arrives. Parsing the packet
	// itself still succeeds - the protocol error belongs to the caller
	// that notices there is nothing to correlate it against.
	wire := bytes.NewBuffer([]byte{0x40, 0x02, 0x00, 0x01})
	h := &FixedHeader{}
	if err := h.Unpack(wire); err != nil {
		t.Fatalf("Unpack header: %v", err)
	}
	ack := &PUBACK{FixedHeader: h}
	if err := ack.Unpack(wire); err != nil {
		t.Fatalf("Unpack puback: %v", err)
	}
	if ack.PacketID != 1 {
		t.Errorf("PacketID = %d, want 1", ack.PacketID)
	}
}
