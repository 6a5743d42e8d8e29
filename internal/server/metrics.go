package server

import (
	"github.com/lox/rockpaperscissors/internal/game"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes game counters to Prometheus. It subscribes to every
// session the server creates.
type Metrics struct {
	rounds         *prometheus.CounterVec
	computerPicks  *prometheus.CounterVec
	resets         prometheus.Counter
	sessionsActive prometheus.Gauge
	connections    prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rounds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rps_rounds_total",
				Help: "Rounds decided, by mode and result.",
			},
			[]string{"mode", "result"},
		),
		computerPicks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rps_computer_picks_total",
				Help: "Signs drawn by the computer.",
			},
			[]string{"choice"},
		),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rps_score_resets_total",
			Help: "Explicit score resets.",
		}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rps_sessions_active",
			Help: "Game sessions currently connected.",
		}),
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rps_connections_total",
			Help: "WebSocket connections accepted.",
		}),
	}
	reg.MustRegister(m.rounds, m.computerPicks, m.resets, m.sessionsActive, m.connections)
	return m
}

// OnEvent implements game.EventSubscriber
func (m *Metrics) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.RoundRevealedEvent:
		m.rounds.WithLabelValues(e.Snapshot().Mode.String(), e.Result.String()).Inc()
		m.computerPicks.WithLabelValues(e.Computer.String()).Inc()
	case game.ScoreResetEvent:
		m.resets.Inc()
	}
}

func (m *Metrics) sessionOpened() {
	m.connections.Inc()
	m.sessionsActive.Inc()
}

func (m *Metrics) sessionClosed() {
	m.sessionsActive.Dec()
}
