package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/url"
	"sync/atomic"

	"github.com/golang-io/simbamqtt/packet"
	"golang.org/x/net/websocket"
	"golang.org/x/sync/errgroup"
)

// state values for Client.state, section 2 of the connection model:
// disconnected -> connected -> disconnected, no other transitions.
const (
	stateDisconnected int32 = iota
	stateConnected
)

// A Client is a single-connection MQTT 3.1.1 client. Several goroutines
// may issue requests at once: the engine accepts at most one outstanding
// application request at a time (section 5) and callers rendezvous on
// the same request channel, so concurrent callers simply queue behind
// one another rather than racing.
type Client struct {
	options Options
	url     *url.URL

	rwc net.Conn

	state int32 // atomic, one of the state* constants

	reqCh   chan request
	frameCh chan frame
	resume  chan struct{}

	inFlight inFlightEntry

	stat *Stat
}

// request is one application verb handed to the event loop. awaitsAck
// is the control-packet type the loop should treat as this request's
// matching response, or 0 if the verb completes as soon as it is
// written (an outbound QoS 0 publish, or disconnect).
type request struct {
	pkt       packet.Packet
	awaitsAck byte
	reply     chan response
}

type response struct {
	pkt packet.Packet
	err error
}

// inFlightEntry tracks the single outstanding request, section 9's
// "Connected state carries an optional InFlight component".
type inFlightEntry struct {
	kind  byte
	reply chan response
}

// frame is one parsed fixed header handed from the forwarder goroutine
// to the event loop. The loop reads the body itself; see loop.go.
type frame struct {
	header *packet.FixedHeader
	err    error
}

// New constructs a Client. It does not dial; dialing happens in Run.
func New(opts ...Option) *Client {
	o := newOptions(opts...)
	u, err := url.Parse(o.url)
	if err != nil {
		panic(fmt.Errorf("mqtt: invalid url %q: %w", o.url, err))
	}
	c := &Client{
		options: o,
		url:     u,
		reqCh:   make(chan request),
		frameCh: make(chan frame),
		resume:  make(chan struct{}),
		stat:    newStat(),
	}
	log.Printf("[CLIENT_CREATED] name=%s client_id=%s server=%s", o.name, o.clientID, o.url)
	return c
}

// Name is this Client's human-readable identity, distinct from the
// MQTT ClientID carried on the wire.
func (c *Client) Name() string { return c.options.name }

func (c *Client) setState(s int32) {
	atomic.StoreInt32(&c.state, s)
	c.stat.ConnectionState.Set(float64(s))
}

// Connected reports whether the last Connect succeeded and no
// Disconnect has since completed.
func (c *Client) Connected() bool {
	return atomic.LoadInt32(&c.state) == stateConnected
}

func (c *Client) dial(ctx context.Context, scheme, addr string) (net.Conn, error) {
	switch scheme {
	case "mqtt", "tcp", "":
		return (&net.Dialer{Timeout: c.options.dialTimeout}).DialContext(ctx, "tcp", addr)
	case "mqtts", "tls":
		d := &net.Dialer{Timeout: c.options.dialTimeout}
		return tls.DialWithDialer(d, "tcp", addr, c.options.tlsConfig)
	case "ws", "wss":
		path := c.url.Path
		if path == "" {
			path = "/mqtt"
		}
		loc := &url.URL{Scheme: scheme, Host: addr, Path: path}
		originScheme := "http"
		if scheme == "wss" {
			originScheme = "https"
		}
		origin := &url.URL{Scheme: originScheme, Host: addr}

		cfg, err := websocket.NewConfig(loc.String(), origin.String())
		if err != nil {
			return nil, err
		}
		cfg.Protocol = []string{"mqtt"}
		if scheme == "wss" {
			cfg.TlsConfig = c.options.tlsConfig
		}
		ws, err := websocket.DialConfig(cfg)
		if err != nil {
			return nil, err
		}
		ws.PayloadType = websocket.BinaryFrame
		return ws, nil
	default:
		return (&net.Dialer{Timeout: c.options.dialTimeout}).DialContext(ctx, "tcp", addr)
	}
}

// Run dials the broker and runs the event loop until ctx is cancelled
// or the loop hits a fatal transport/protocol error. Call it from its
// own goroutine; Connect, Publish, Subscribe, Unsubscribe, Ping, and
// Disconnect all communicate with the goroutine running Run and block
// until it replies.
func (c *Client) Run(ctx context.Context) error {
	con, err := c.dial(ctx, c.url.Scheme, c.url.Host)
	if err != nil {
		log.Printf("[DIAL_ERROR] name=%s server=%s error=%v", c.options.name, c.url.Host, err)
		return err
	}
	c.rwc = &countingConn{Conn: con, stat: c.stat}
	log.Printf("[DIALED] name=%s server=%s", c.options.name, c.url.Host)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return c.forward(ctx) })
	group.Go(func() error { return c.loop(ctx) })
	group.Go(func() error {
		<-ctx.Done()
		_ = c.rwc.Close()
		return ctx.Err()
	})
	return group.Wait()
}

// doRequest is the shared plumbing behind every application verb: hand
// the loop a packet plus the ack kind (if any) it should wait for, then
// block on the reply. The loop enforces the single-in-flight rule; this
// call just queues behind whatever is already in flight.
func (c *Client) doRequest(ctx context.Context, pkt packet.Packet, awaitsAck byte) (packet.Packet, error) {
	reply := make(chan response, 1)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case c.reqCh <- request{pkt: pkt, awaitsAck: awaitsAck, reply: reply}:
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-reply:
		return resp.pkt, resp.err
	}
}

// Connect sends CONNECT and waits for CONNACK. On success the client's
// state becomes connected.
func (c *Client) Connect(ctx context.Context) error {
	clientID := c.options.clientID
	connect := &packet.CONNECT{
		FixedHeader: &packet.FixedHeader{},
		ClientID:    clientID,
		WillTopic:   c.options.willTopic,
		WillPayload: c.options.willPayload,
		WillQoS:     c.options.willQoS,
		Username:    c.options.username,
		Password:    c.options.password,
	}
	pkt, err := c.doRequest(ctx, connect, packet.CONNACK)
	if err != nil {
		log.Printf("[CONNECT_ERROR] name=%s client_id=%s error=%v", c.options.name, clientID, err)
		return err
	}
	ack := pkt.(*packet.CONNACK)
	if ack.ReturnCode.Code != 0 {
		return fmt.Errorf("mqtt: connect refused: %w", ack.ReturnCode)
	}
	c.setState(stateConnected)
	log.Printf("[CONNECTED] name=%s client_id=%s server=%s", c.options.name, clientID, c.url.Host)
	return nil
}

// Disconnect sends DISCONNECT. The broker never acknowledges it; the
// client's state becomes disconnected as soon as the packet is on the
// wire.
func (c *Client) Disconnect(ctx context.Context) error {
	_, err := c.doRequest(ctx, &packet.DISCONNECT{FixedHeader: &packet.FixedHeader{}}, 0)
	if err != nil {
		return err
	}
	c.setState(stateDisconnected)
	log.Printf("[DISCONNECTED] name=%s client_id=%s", c.options.name, c.options.clientID)
	return nil
}

// Ping sends PINGREQ and waits for PINGRESP.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, &packet.PINGREQ{FixedHeader: &packet.FixedHeader{}}, packet.PINGRESP)
	return err
}

// Publish sends a PUBLISH at msg.QoS, which must be 0 or 1. A QoS 1
// publish waits for PUBACK; a QoS 0 publish returns as soon as the
// packet is written, since the broker sends no ack for it.
func (c *Client) Publish(ctx context.Context, msg *packet.Message) error {
	if msg.QoS > 1 {
		return fmt.Errorf("%w: publish supports qos 0 or 1 only", packet.ErrInvalidArgument)
	}
	pub := &packet.PUBLISH{FixedHeader: &packet.FixedHeader{}, Message: msg}
	awaits := byte(0)
	if msg.QoS == 1 {
		pub.PacketID = packet.FixedPublishPacketID
		awaits = packet.PUBACK
	}
	_, err := c.doRequest(ctx, pub, awaits)
	if err != nil {
		log.Printf("[PUBLISH_ERROR] name=%s topic=%s error=%v", c.options.name, msg.Topic, err)
		return err
	}
	return nil
}

// Subscribe requests one topic filter at requestedQoS and waits for
// SUBACK. A granted-QoS byte of 0x80 surfaces as a non-nil error.
func (c *Client) Subscribe(ctx context.Context, topicFilter string, requestedQoS byte) error {
	sub := &packet.SUBSCRIBE{
		FixedHeader:  &packet.FixedHeader{},
		PacketID:     packet.FixedSubscribePacketID,
		TopicFilter:  topicFilter,
		RequestedQoS: requestedQoS,
	}
	pkt, err := c.doRequest(ctx, sub, packet.SUBACK)
	if err != nil {
		return err
	}
	ack := pkt.(*packet.SUBACK)
	log.Printf("[SUBSCRIBED] name=%s topic=%s granted_qos=%d", c.options.name, topicFilter, ack.ReturnCode.Code)
	return nil
}

// Unsubscribe removes one topic filter and waits for UNSUBACK.
func (c *Client) Unsubscribe(ctx context.Context, topicFilter string) error {
	unsub := &packet.UNSUBSCRIBE{
		FixedHeader: &packet.FixedHeader{},
		PacketID:    packet.FixedUnsubscribePacketID,
		TopicFilter: topicFilter,
	}
	_, err := c.doRequest(ctx, unsub, packet.UNSUBACK)
	return err
}
