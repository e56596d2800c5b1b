// Package metrics owns the Prometheus registry and the game collectors.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sniperrun"

type Metrics struct {
	reg *prometheus.Registry

	rooms      prometheus.Gauge
	clients    prometheus.Gauge
	joins      *prometheus.CounterVec
	rejections *prometheus.CounterVec
	deaths     prometheus.Counter
	revives    prometheus.Counter
	outcomes   *prometheus.CounterVec
	clips      *prometheus.CounterVec
	frameTime  prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewPedanticRegistry(),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Number of open rooms.",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clients_connected",
			Help:      "Number of connected play clients across rooms.",
		}),
		joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "player_joins_total",
			Help:      "Accepted player joins by role.",
		}, []string{"role"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "player_join_rejections_total",
			Help:      "Rejected player joins by reason.",
		}, []string{"reason"}),
		deaths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runner_deaths_total",
			Help:      "Runner deaths.",
		}),
		revives: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runner_revives_total",
			Help:      "Runner revivals.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_outcomes_total",
			Help:      "Finished matches by outcome.",
		}, []string{"outcome"}),
		clips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sfx_played_total",
			Help:      "One-shot clips sent to clients.",
		}, []string{"clip"}),
		frameTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_seconds",
			Help:      "Wall time spent simulating one variable frame.",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		}),
	}
	m.reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		m.rooms,
		m.clients,
		m.joins,
		m.rejections,
		m.deaths,
		m.revives,
		m.outcomes,
		m.clips,
		m.frameTime,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) RoomOpened() {
	if m != nil {
		m.rooms.Inc()
	}
}

func (m *Metrics) RoomClosed() {
	if m != nil {
		m.rooms.Dec()
	}
}

func (m *Metrics) ClientConnected() {
	if m != nil {
		m.clients.Inc()
	}
}

func (m *Metrics) ClientDisconnected() {
	if m != nil {
		m.clients.Dec()
	}
}

func (m *Metrics) PlayerJoined(role string) {
	if m != nil {
		m.joins.WithLabelValues(role).Inc()
	}
}

func (m *Metrics) JoinRejected(reason string) {
	if m != nil {
		m.rejections.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) RunnerDied() {
	if m != nil {
		m.deaths.Inc()
	}
}

func (m *Metrics) RunnerRevived() {
	if m != nil {
		m.revives.Inc()
	}
}

func (m *Metrics) MatchFinished(outcome string) {
	if m != nil {
		m.outcomes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ClipPlayed(clip string) {
	if m != nil {
		m.clips.WithLabelValues(clip).Inc()
	}
}

func (m *Metrics) ObserveFrame(seconds float64) {
	if m != nil {
		m.frameTime.Observe(seconds)
	}
}
