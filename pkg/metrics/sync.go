package metrics

import "github.com/prometheus/client_golang/prometheus"

// SyncMetrics counts what the session engine does with snapshots, remote writes and approvals.
type SyncMetrics struct {
	snapshots  *prometheus.CounterVec
	stale      *prometheus.CounterVec
	writes     *prometheus.CounterVec
	suppressed *prometheus.CounterVec
	approvals  *prometheus.CounterVec
}

// Remote write results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// NewSyncMetrics registers the sync metrics. A nil registerer yields a no-op recorder.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	m := &SyncMetrics{
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "okestore_sync_snapshots_applied_total",
			Help: "Remote snapshots applied to session state.",
		}, []string{"stream"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "okestore_sync_snapshots_stale_total",
			Help: "Snapshots dropped because they belonged to an ended session.",
		}, []string{"stream"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "okestore_sync_remote_writes_total",
			Help: "Remote writes issued by reconciliation.",
		}, []string{"collection", "result"}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "okestore_sync_remote_writes_suppressed_total",
			Help: "Remote writes skipped because the remote value already matched.",
		}, []string{"collection"}),
		approvals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "okestore_verification_approvals_total",
			Help: "Verification approvals by request type and outcome.",
		}, []string{"type", "outcome"}),
	}
	reg.MustRegister(m.snapshots, m.stale, m.writes, m.suppressed, m.approvals)
	return m
}

func (m *SyncMetrics) SnapshotApplied(stream string) {
	if m == nil || m.snapshots == nil {
		return
	}
	m.snapshots.WithLabelValues(normalizeLabel(stream)).Inc()
}

func (m *SyncMetrics) SnapshotStale(stream string) {
	if m == nil || m.stale == nil {
		return
	}
	m.stale.WithLabelValues(normalizeLabel(stream)).Inc()
}

func (m *SyncMetrics) RemoteWrite(collection, result string) {
	if m == nil || m.writes == nil {
		return
	}
	m.writes.WithLabelValues(normalizeLabel(collection), normalizeLabel(result)).Inc()
}

func (m *SyncMetrics) WriteSuppressed(collection string) {
	if m == nil || m.suppressed == nil {
		return
	}
	m.suppressed.WithLabelValues(normalizeLabel(collection)).Inc()
}

func (m *SyncMetrics) Approval(requestType, outcome string) {
	if m == nil || m.approvals == nil {
		return
	}
	m.approvals.WithLabelValues(normalizeLabel(requestType), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
