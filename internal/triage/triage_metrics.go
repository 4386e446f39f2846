package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	PollsTotal     *prometheus.CounterVec
	PollDuration   *prometheus.HistogramVec
	PollsSkipped   *prometheus.CounterVec
	NoveltyFires   *prometheus.CounterVec
	AcksTotal      *prometheus.CounterVec
	RecordsDropped *prometheus.CounterVec
	OpenAlerts     prometheus.Gauge
	ActiveSessions prometheus.Gauge
	CuesTotal      *prometheus.CounterVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_polls_total",
			Help: "Total feed polls by feed and outcome.",
		}, []string{"feed", "outcome"}),
		PollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "warden_poll_duration_seconds",
			Help:    "Duration of feed polls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}, []string{"feed"}),
		PollsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_polls_skipped_total",
			Help: "Ticks skipped because the previous poll of the same feed was still in flight.",
		}, []string{"feed"}),
		NoveltyFires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_novelty_fires_total",
			Help: "Novelty signals fired, by trigger severity.",
		}, []string{"severity"}),
		AcksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_acks_total",
			Help: "Upstream acknowledge attempts by outcome.",
		}, []string{"outcome"}),
		RecordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_records_dropped_total",
			Help: "Malformed feed records dropped, by feed.",
		}, []string{"feed"}),
		OpenAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "warden_open_alerts",
			Help: "Open alerts in the last good triage pass (before dismissal filtering).",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "warden_active_sessions",
			Help: "ACTIVE presence sessions in the last reconstruction.",
		}),
		CuesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_cues_total",
			Help: "Audio cue emissions by severity and outcome.",
		}, []string{"severity", "outcome"}),
	}

	reg.MustRegister(
		m.PollsTotal,
		m.PollDuration,
		m.PollsSkipped,
		m.NoveltyFires,
		m.AcksTotal,
		m.RecordsDropped,
		m.OpenAlerts,
		m.ActiveSessions,
		m.CuesTotal,
	)

	return m
}
