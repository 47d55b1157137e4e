package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agentload/internal/stats"
)

var (
	// Scan metrics
	ScansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agentload_scans_total",
			Help: "Total completed scans",
		},
	)

	ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agentload_scan_duration_seconds",
			Help:    "Scan duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	CandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentload_candidates_total",
			Help: "Session files discovered",
		},
		[]string{"role"},
	)

	SessionsAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentload_sessions_accepted_total",
			Help: "Session files that passed validation",
		},
		[]string{"role"},
	)

	SessionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentload_sessions_rejected_total",
			Help: "Session files excluded by validation",
		},
		[]string{"reason"},
	)

	// Report metrics, from the latest scan
	Hours = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agentload_hours",
			Help: "Total session hours by role",
		},
		[]string{"role"},
	)

	AutonomyRatio = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agentload_autonomy_ratio",
			Help: "Sub-agent hours divided by main-session hours",
		},
	)

	GhostDays = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agentload_ghost_days",
			Help: "Days with sub-agent activity and no main-session activity",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ScansTotal,
		ScanDuration,
		CandidatesTotal,
		SessionsAccepted,
		SessionsRejected,
		Hours,
		AutonomyRatio,
		GhostDays,
	)
}

// Observe records one completed scan.
func Observe(res *stats.Result) {
	if res == nil {
		return
	}

	ScansTotal.Inc()
	ScanDuration.Observe(res.Stats.Duration.Seconds())

	for role, n := range res.Stats.Candidates {
		CandidatesTotal.WithLabelValues(string(role)).Add(float64(n))
	}
	for role, n := range res.Stats.Accepted {
		SessionsAccepted.WithLabelValues(string(role)).Add(float64(n))
	}
	for reason, n := range res.Stats.Rejected {
		SessionsRejected.WithLabelValues(reason.String()).Add(float64(n))
	}

	Hours.WithLabelValues(string(stats.RoleMain)).Set(res.Report.MainHours)
	Hours.WithLabelValues(string(stats.RoleSub)).Set(res.Report.SubagentHours)
	AutonomyRatio.Set(res.Report.AutonomyRatio)
	GhostDays.Set(float64(res.Report.GhostDays))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
