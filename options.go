package mqtt

import (
	"crypto/tls"
	"time"

	"github.com/golang-io/requests"
)

// defaultTopicBufferSize bounds an inbound PUBLISH topic name. The
// modeled source used a fixed 128-byte scratch buffer; this engine
// keeps the same ceiling but makes it configurable via WithTopicBufferSize.
const defaultTopicBufferSize = 128

// Options configures a Client. Build one with New and a list of Option
// values; there is no exported zero-value-usable Options, construction
// always goes through New.
type Options struct {
	name     string // human-readable identity, distinct from ClientID
	url      string
	clientID string
	username string
	password string

	willTopic   string
	willPayload []byte
	willQoS     byte

	dialTimeout time.Duration
	tlsConfig   *tls.Config

	topicBufferSize int

	onPublish OnPublishFunc
	onError   OnErrorFunc
}

type Option func(*Options)

func newOptions(opts ...Option) Options {
	o := Options{
		name:            "mqtt-" + requests.GenId(),
		url:             "mqtt://127.0.0.1:1883",
		clientID:        "",
		dialTimeout:     10 * time.Second,
		topicBufferSize: defaultTopicBufferSize,
		onPublish:       defaultOnPublish,
		onError:         defaultOnError,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithURL sets the broker endpoint. Scheme selects the transport:
// mqtt/tcp, mqtts/tls, ws, or wss.
func WithURL(url string) Option {
	return func(o *Options) { o.url = url }
}

// WithClientID sets the MQTT client identifier. An empty value (the
// default) is replaced by packet.DefaultClientID at CONNECT time.
func WithClientID(id string) Option {
	return func(o *Options) { o.clientID = id }
}

// WithCredentials sets the CONNECT username/password fields.
func WithCredentials(username, password string) Option {
	return func(o *Options) { o.username, o.password = username, password }
}

// WithWill sets the CONNECT last-will fields. qos must be 0, 1, or 2.
func WithWill(topic string, payload []byte, qos byte) Option {
	return func(o *Options) { o.willTopic, o.willPayload, o.willQoS = topic, payload, qos }
}

// WithDialTimeout bounds the initial transport dial.
func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) { o.dialTimeout = d }
}

// WithTLSConfig supplies the *tls.Config used for mqtts/wss transports.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *Options) { o.tlsConfig = cfg }
}

// WithTopicBufferSize bounds the topic name accepted on an inbound
// PUBLISH. Exceeding it fails the frame with packet.ErrMessageSize.
func WithTopicBufferSize(n int) Option {
	return func(o *Options) { o.topicBufferSize = n }
}

// WithOnPublish installs the callback invoked for every inbound
// PUBLISH. See InboundMessage and OnPublishFunc for the streaming
// contract; passing nil restores the draining default.
func WithOnPublish(fn OnPublishFunc) Option {
	return func(o *Options) {
		if fn == nil {
			fn = defaultOnPublish
		}
		o.onPublish = fn
	}
}

// WithOnError installs the callback invoked for faults the event loop
// survives: unexpected acks, malformed frames. Passing nil restores a
// no-op default.
func WithOnError(fn OnErrorFunc) Option {
	return func(o *Options) {
		if fn == nil {
			fn = defaultOnError
		}
		o.onError = fn
	}
}
