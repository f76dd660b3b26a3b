package packet

import (
	"bytes"
	"testing"
)

func TestFixedHeaderIdempotence(t *testing.T) {
	cases := []struct {
		name            string
		kind            byte
		dup, qos, ret   uint8
		remainingLength uint32
	}{
		{"connect", CONNECT, 0, 0, 0, 18},
		{"publish-qos0", PUBLISH, 0, 0, 0, 7},
		{"publish-qos1-dup", PUBLISH, 1, 1, 0, 6},
		{"subscribe", SUBSCRIBE, 0, 1, 0, 6},
		{"pingreq", PINGREQ, 0, 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &FixedHeader{Kind: tc.kind, Dup: tc.dup, QoS: tc.qos, Retain: tc.ret, RemainingLength: tc.remainingLength}
			buf := &bytes.Buffer{}
			if err := h.Pack(buf); err != nil {
				t.Fatalf("Pack: %v", err)
			}
			got := &FixedHeader{}
			if err := got.Unpack(buf); err != nil {
				t.Fatalf("Unpack: %v", err)
			}
			if got.Kind != tc.kind || got.Dup != tc.dup || got.QoS != tc.qos || got.Retain != tc.ret || got.RemainingLength != tc.remainingLength {
				t.Errorf("got %+v, want kind=%d dup=%d qos=%d retain=%d len=%d", got, tc.kind, tc.dup, tc.qos, tc.ret, tc.remainingLength)
			}
		})
	}
}

func TestFixedHeaderUnpackRejectsBadFlags(t *testing.T) {
	// CONNACK must carry flags 0x0; here it carries 0x2.
	buf := bytes.NewBuffer([]byte{CONNACK<<4 | 0x2, 0x00})
	h := &FixedHeader{}
	if err := h.Unpack(buf); err == nil {
		t.Error("expected ErrMalformedFlags for non-zero CONNACK flags")
	}
}

func TestFixedHeaderUnpackRejectsPublishQoS3(t *testing.T) {
	buf := bytes.NewBuffer([]byte{PUBLISH<<4 | 0x6, 0x00})
	h := &FixedHeader{}
	if err := h.Unpack(buf); err == nil {
		t.Error("expected ErrMalformedFlags for PUBLISH QoS 3")
	}
}
