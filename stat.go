package mqtt

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/golang-io/requests"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stat holds one Client's Prometheus collectors. Each Client owns a
// private registry rather than registering into the global default,
// so more than one Client can live in the same process without a
// duplicate-collector panic.
type Stat struct {
	registry *prometheus.Registry

	Uptime          prometheus.Counter
	ConnectionState prometheus.Gauge
	InFlight        prometheus.Gauge
	PacketsSent     prometheus.Counter
	PacketsReceived prometheus.Counter
	BytesSent       prometheus.Counter
	BytesReceived   prometheus.Counter
}

func newStat() *Stat {
	s := &Stat{
		registry:        prometheus.NewRegistry(),
		Uptime:          prometheus.NewCounter(prometheus.CounterOpts{Name: "mqtt_client_uptime_seconds", Help: "Seconds since this client was constructed"}),
		ConnectionState: prometheus.NewGauge(prometheus.GaugeOpts{Name: "mqtt_client_connection_state", Help: "0 = disconnected, 1 = connected"}),
		InFlight:        prometheus.NewGauge(prometheus.GaugeOpts{Name: "mqtt_client_in_flight", Help: "1 while a request awaits its ack, else 0"}),
		PacketsSent:     prometheus.NewCounter(prometheus.CounterOpts{Name: "mqtt_client_packets_sent_total", Help: "Control packets written to the transport"}),
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{Name: "mqtt_client_packets_received_total", Help: "Control packets parsed from the transport"}),
		BytesSent:       prometheus.NewCounter(prometheus.CounterOpts{Name: "mqtt_client_bytes_sent_total", Help: "Bytes written to the transport"}),
		BytesReceived:   prometheus.NewCounter(prometheus.CounterOpts{Name: "mqtt_client_bytes_received_total", Help: "Bytes read from the transport"}),
	}
	s.registry.MustRegister(s.Uptime, s.ConnectionState, s.InFlight, s.PacketsSent, s.PacketsReceived, s.BytesSent, s.BytesReceived)
	go s.refreshUptime()
	return s
}

func (s *Stat) refreshUptime() {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for range tick.C {
		s.Uptime.Inc()
	}
}

// Stat returns this Client's metrics collectors, for tests or for
// wiring into an application's own metrics server.
func (c *Client) Stat() *Stat { return c.stat }

// countingConn wraps the dialed transport so BytesSent/BytesReceived
// reflect the actual bytes crossing the wire, independent of how many
// Pack/Unpack calls or fixed-header reads produced them.
type countingConn struct {
	net.Conn
	stat *Stat
}

func (c *countingConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	c.stat.BytesReceived.Add(float64(n))
	return n, err
}

func (c *countingConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	c.stat.BytesSent.Add(float64(n))
	return n, err
}

// serveLog is the Logf hook the metrics mux calls for each /metrics
// scrape. It ignores the scrape's stat and logs nothing.
func serveLog(_ context.Context, stat *requests.Stat) {
	_ = stat
}

// ServeMetrics exposes this client's Prometheus collectors over HTTP
// at addr until ctx is cancelled. It is optional: nothing else in the
// engine depends on it running.
func (c *Client) ServeMetrics(ctx context.Context, addr string) error {
	mux := requests.NewServeMux(requests.URL(addr), requests.Logf(serveLog))
	mux.Route("/metrics", promhttp.HandlerFor(c.stat.registry, promhttp.HandlerOpts{}))
	s := requests.NewServer(ctx, mux, requests.OnStart(func(srv *http.Server) {
		_ = srv // server is already logged by requests' own startup path
	}))
	return s.ListenAndServe()
}
