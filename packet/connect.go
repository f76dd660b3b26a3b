package packet

import (
	"bytes"
	"fmt"
	"io"
)

// DefaultClientID is substituted whenever a caller supplies an empty
// client identifier. MQTT-3.1.3-8 would let the server assign one
// instead, but this engine never sends a zero-length client ID.
const DefaultClientID = "simba_mqtt"

// KeepAlive is the keep-alive interval advertised in every CONNECT
// packet. The engine does not generate its own keepalive traffic; the
// application must invoke Ping to refresh the server-side timer.
const KeepAlive uint16 = 300

// ConnectFlags is the one-byte flags field of the CONNECT variable
// header, section 3.1.2.2.
type ConnectFlags uint8

func (f ConnectFlags) UserNameFlag() bool { return f&0x80 != 0 }
func (f ConnectFlags) PasswordFlag() bool { return f&0x40 != 0 }
func (f ConnectFlags) WillRetain() bool   { return f&0x20 != 0 }
func (f ConnectFlags) WillQoS() uint8     { return uint8(f&0x18) >> 3 }
func (f ConnectFlags) WillFlag() bool     { return f&0x04 != 0 }
func (f ConnectFlags) CleanSession() bool { return f&0x02 != 0 }

// CONNECT is the first packet a client sends, section 3.1. This engine
// always forces a clean session and never sets WillRetain.
type CONNECT struct {
	*FixedHeader

	ClientID    string
	WillTopic   string
	WillPayload []byte
	WillQoS     uint8
	Username    string
	Password    string
}

func (pkt *CONNECT) Kind() byte { return CONNECT }

// Pack validates argument symmetry, then writes the fixed 10-byte
// variable header followed by the client-id / will / username /
// password payload, in that order (section 3.1.3).
func (pkt *CONNECT) Pack(w io.Writer) error {
	clientID := pkt.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}

	hasWillTopic, hasWillPayload := pkt.WillTopic != "", len(pkt.WillPayload) != 0
	if hasWillTopic != hasWillPayload {
		return fmt.Errorf("%w: will topic and will payload must both be set or both empty", ErrInvalidArgument)
	}
	willFlag := hasWillTopic && hasWillPayload
	if willFlag && pkt.WillQoS > 2 {
		return fmt.Errorf("%w: will qos out of range", ErrInvalidArgument)
	}

	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.Write([]byte{0x00, 0x04, 'M', 'Q', 'T', 'T'})
	buf.WriteByte(Version311)

	var flags ConnectFlags
	flags |= 0x02 // clean session: always forced
	if willFlag {
		flags |= 0x04 | ConnectFlags(pkt.WillQoS)<<3
	}
	if pkt.Username != "" {
		flags |= 0x80
	}
	if pkt.Password != "" {
		flags |= 0x40
	}
	buf.WriteByte(byte(flags))
	buf.Write(i2b(KeepAlive))

	if err := writeString(buf, clientID); err != nil {
		return err
	}
	if willFlag {
		if err := writeString(buf, pkt.WillTopic); err != nil {
			return err
		}
		if err := writeString(buf, pkt.WillPayload); err != nil {
			return err
		}
	}
	if pkt.Username != "" {
		if err := writeString(buf, pkt.Username); err != nil {
			return err
		}
	}
	if pkt.Password != "" {
		if err := writeString(buf, pkt.Password); err != nil {
			return err
		}
	}

	pkt.FixedHeader.Kind = CONNECT
	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Unpack parses a CONNECT payload already stripped of its fixed header.
// The client engine never receives CONNECT (it only ever sends one);
// Unpack exists for symmetry and wire-level round-trip tests.
func (pkt *CONNECT) Unpack(buf *bytes.Buffer) error {
	name := buf.Next(6)
	if !bytes.Equal(name, []byte{0x00, 0x04, 'M', 'Q', 'T', 'T'}) {
		return ErrMalformedPacket
	}
	if buf.Len() < 4 {
		return ErrMalformedPacket
	}
	version := buf.Next(1)[0]
	if version != Version311 {
		return ErrUnsupportedProtocolVersion
	}
	flags := ConnectFlags(buf.Next(1)[0])
	_ = b2i(buf.Next(2)) // keep-alive: not retained, the engine doesn't act on it

	clientID, err := readString[string](buf)
	if err != nil {
		return err
	}
	pkt.ClientID = clientID

	if flags.WillFlag() {
		pkt.WillTopic, err = readString[string](buf)
		if err != nil {
			return err
		}
		payload, err := readString[[]byte](buf)
		if err != nil {
			return err
		}
		pkt.WillPayload = payload
		pkt.WillQoS = flags.WillQoS()
	}
	if flags.UserNameFlag() {
		pkt.Username, err = readString[string](buf)
		if err != nil {
			return err
		}
	}
	if flags.PasswordFlag() {
		pkt.Password, err = readString[string](buf)
		if err != nil {
			return err
		}
	}
	return nil
}
