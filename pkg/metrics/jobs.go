package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics times background work: scheduler jobs and event handlers alike.
type JobMetrics struct {
	duration    *prometheus.HistogramVec
	runs        *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
	now         func() time.Time
}

// NewJobMetrics registers the job metrics. A nil registerer yields a no-op recorder.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	m := &JobMetrics{now: time.Now}
	if reg == nil {
		return m
	}
	m.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "okestore_job_duration_seconds",
		Help:    "Duration of background jobs in seconds.",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 15, 60},
	}, []string{"job"})
	m.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "okestore_job_runs_total",
		Help: "Background job executions by result.",
	}, []string{"job", "result"})
	m.lastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "okestore_job_last_success_timestamp_seconds",
		Help: "Unix time of the last successful run of each job.",
	}, []string{"job"})
	reg.MustRegister(m.duration, m.runs, m.lastSuccess)
	return m
}

// Track starts timing job. The returned func records the outcome and must be called once.
func (m *JobMetrics) Track(job string) func(error) {
	if m == nil || m.runs == nil {
		return func(error) {}
	}
	if job == "" {
		job = "unknown"
	}
	started := m.now()
	return func(err error) {
		finished := m.now()
		m.duration.WithLabelValues(job).Observe(finished.Sub(started).Seconds())
		if err != nil {
			m.runs.WithLabelValues(job, ResultError).Inc()
			return
		}
		m.runs.WithLabelValues(job, ResultOK).Inc()
		m.lastSuccess.WithLabelValues(job).Set(float64(finished.Unix()))
	}
}
