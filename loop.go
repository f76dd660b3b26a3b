package mqtt

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/golang-io/simbamqtt/packet"
)

// forward is the only goroutine that ever reads a fixed header off the
// wire. It hands each header to the event loop and then blocks on
// resume before reading the next one, so the loop stays in exclusive
// control of how (or whether) the body gets consumed - this is the
// Go substitute for a single-threaded ready-wait over the transport.
func (c *Client) forward(ctx context.Context) error {
	for {
		h := &packet.FixedHeader{}
		err := h.Unpack(c.rwc)

		select {
		case c.frameCh <- frame{header: h, err: err}:
		case <-ctx.Done():
			return ctx.Err()
		}
		if err != nil {
			return err
		}

		select {
		case <-c.resume:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// loop owns the transport's write side and all request/ack bookkeeping.
// While a request is in flight it only accepts frames, never new
// requests: that is the single-in-flight discipline from section 5,
// made explicit instead of implicit.
func (c *Client) loop(ctx context.Context) error {
	for {
		if c.inFlight.kind == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case req := <-c.reqCh:
				if err := c.handleRequest(req); err != nil {
					return err
				}
			case f := <-c.frameCh:
				if err := c.handleFrame(f); err != nil {
					return err
				}
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-c.frameCh:
			if err := c.handleFrame(f); err != nil {
				return err
			}
		}
	}
}

// requestAllowed enforces spec section 3's state invariant: while
// disconnected, only CONNECT is acted upon; once connected, CONNECT is
// no longer (every other verb is). A disallowed verb is silently
// dropped by the loop, exactly as the modeled source's read_control_message
// does - the caller's doRequest blocks until ctx is cancelled, since no
// reply is ever posted for a dropped request.
func (c *Client) requestAllowed(kind byte) bool {
	if atomic.LoadInt32(&c.state) == stateDisconnected {
		return kind == packet.CONNECT
	}
	return kind != packet.CONNECT
}

func (c *Client) handleRequest(req request) error {
	if !c.requestAllowed(req.pkt.Kind()) {
		return nil
	}
	if err := req.pkt.Pack(c.rwc); err != nil {
		req.reply <- response{err: err}
		return err
	}
	c.stat.PacketsSent.Inc()

	if req.awaitsAck == 0 {
		req.reply <- response{}
		return nil
	}
	c.inFlight = inFlightEntry{kind: req.awaitsAck, reply: req.reply}
	c.stat.InFlight.Set(1)
	return nil
}

func (c *Client) handleFrame(f frame) error {
	if f.err != nil {
		return f.err
	}
	h := f.header

	if h.Kind == packet.PUBLISH {
		err := c.handlePublish(h)
		c.resume <- struct{}{}
		if err != nil {
			return err
		}
		return nil
	}

	if !isAckKind(h.Kind) {
		_, _ = io.CopyN(io.Discard, c.rwc, int64(h.RemainingLength))
		c.resume <- struct{}{}
		c.options.onError(fmt.Errorf("%w: unexpected inbound packet type %s", packet.ErrProtocolViolation, packet.Kind[h.Kind]))
		return nil
	}

	body := make([]byte, h.RemainingLength)
	_, err := io.ReadFull(c.rwc, body)
	c.resume <- struct{}{}
	if err != nil {
		return err
	}
	c.stat.PacketsReceived.Inc()

	ack, err := parseAck(h, body)
	c.dispatchAck(h.Kind, ack, err)
	return nil
}

func isAckKind(kind byte) bool {
	switch kind {
	case packet.CONNACK, packet.PUBACK, packet.SUBACK, packet.UNSUBACK, packet.PINGRESP:
		return true
	default:
		return false
	}
}

func parseAck(h *packet.FixedHeader, body []byte) (packet.Packet, error) {
	buf := bytes.NewBuffer(body)
	switch h.Kind {
	case packet.CONNACK:
		pkt := &packet.CONNACK{FixedHeader: h}
		return pkt, pkt.Unpack(buf)
	case packet.PUBACK:
		pkt := &packet.PUBACK{FixedHeader: h}
		return pkt, pkt.Unpack(buf)
	case packet.SUBACK:
		pkt := &packet.SUBACK{FixedHeader: h}
		return pkt, pkt.Unpack(buf)
	case packet.UNSUBACK:
		pkt := &packet.UNSUBACK{FixedHeader: h}
		return pkt, pkt.Unpack(buf)
	case packet.PINGRESP:
		return &packet.PINGRESP{FixedHeader: h}, nil
	}
	return nil, packet.ErrProtocolViolation
}

// dispatchAck matches an inbound ack against the single in-flight
// request. An ack that doesn't match - including every ack arriving
// with nothing in flight - is reported through onError and otherwise
// ignored; the loop keeps running (scenario 6).
func (c *Client) dispatchAck(kind byte, pkt packet.Packet, err error) {
	if c.inFlight.kind == kind {
		reply := c.inFlight.reply
		c.inFlight = inFlightEntry{}
		c.stat.InFlight.Set(0)
		reply <- response{pkt: pkt, err: err}
		return
	}
	if err == nil {
		err = packet.ErrProtocolViolation
	}
	c.options.onError(fmt.Errorf("unexpected %s: %w", packet.Kind[kind], err))
}

// readTopic reads an MQTT string capped at max bytes, section 9's
// "topic scratch buffer" note.
func readTopic(r io.Reader, max int) (string, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := int(binary.BigEndian.Uint16(lenBuf[:]))
	if n == 0 || n > max {
		return "", packet.ErrMessageSize
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// handlePublish streams an inbound PUBLISH payload straight from the
// transport into the application callback instead of buffering it;
// see InboundMessage and OnPublishFunc. QoS 1 gets a PUBACK, QoS 2 gets
// a PUBREC - and nothing past that, see packet.PUBREC's doc comment.
func (c *Client) handlePublish(h *packet.FixedHeader) error {
	topic, err := readTopic(c.rwc, c.options.topicBufferSize)
	if err != nil {
		return err
	}
	consumed := 2 + len(topic)

	var packetID uint16
	if h.QoS >= 1 {
		var idBuf [2]byte
		if _, err := io.ReadFull(c.rwc, idBuf[:]); err != nil {
			return err
		}
		packetID = binary.BigEndian.Uint16(idBuf[:])
		consumed += 2
	}

	payloadLen := int(h.RemainingLength) - consumed
	if payloadLen < 0 {
		return packet.ErrMalformedPacket
	}
	c.stat.PacketsReceived.Inc()

	msg := &InboundMessage{
		Topic:   topic,
		QoS:     h.QoS,
		Dup:     h.Dup != 0,
		Retain:  h.Retain != 0,
		Length:  payloadLen,
		Payload: io.LimitReader(c.rwc, int64(payloadLen)),
	}
	c.options.onPublish(msg)

	switch h.QoS {
	case 1:
		puback := &packet.PUBACK{FixedHeader: &packet.FixedHeader{}, PacketID: packetID}
		if err := puback.Pack(c.rwc); err != nil {
			return err
		}
		c.stat.PacketsSent.Inc()
	case 2:
		pubrec := &packet.PUBREC{FixedHeader: &packet.FixedHeader{}, PacketID: packetID}
		if err := pubrec.Pack(c.rwc); err != nil {
			return err
		}
		c.stat.PacketsSent.Inc()
	}
	return nil
}
