package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PatientsUpserted     prometheus.Counter
	PatientsRemoved      prometheus.Counter
	RecordsAdded         prometheus.Counter
	RecordsCascaded      prometheus.Counter
	ScreeningsCommitted  prometheus.Counter
	CollaboratorFailures *prometheus.CounterVec
	SnapshotDecodeErrors prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PatientsUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinela_patients_upserted_total",
			Help: "Total number of patient profiles created or replaced",
		}),
		PatientsRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinela_patients_removed_total",
			Help: "Total number of patient profiles removed",
		}),
		RecordsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinela_records_added_total",
			Help: "Total number of medical records appended",
		}),
		RecordsCascaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinela_records_cascade_deleted_total",
			Help: "Total number of medical records removed by patient cascade",
		}),
		ScreeningsCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinela_screenings_committed_total",
			Help: "Total number of endemic screening reports committed",
		}),
		CollaboratorFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinela_collaborator_failures_total",
			Help: "Collaborator call failures by collaborator name",
		}, []string{"collaborator"}),
		SnapshotDecodeErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinela_snapshot_decode_errors_total",
			Help: "Persisted snapshots that failed to decode and degraded to defaults",
		}),
	}
}

// The increment helpers below are nil-safe so tests can run services without
// registering collectors.

func (m *Metrics) IncPatientsUpserted() {
	if m != nil {
		m.PatientsUpserted.Inc()
	}
}

func (m *Metrics) IncPatientsRemoved() {
	if m != nil {
		m.PatientsRemoved.Inc()
	}
}

func (m *Metrics) IncRecordsAdded() {
	if m != nil {
		m.RecordsAdded.Inc()
	}
}

func (m *Metrics) AddRecordsCascaded(n int) {
	if m != nil {
		m.RecordsCascaded.Add(float64(n))
	}
}

func (m *Metrics) IncScreeningsCommitted() {
	if m != nil {
		m.ScreeningsCommitted.Inc()
	}
}

func (m *Metrics) IncCollaboratorFailure(name string) {
	if m != nil {
		m.CollaboratorFailures.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) IncSnapshotDecodeErrors() {
	if m != nil {
		m.SnapshotDecodeErrors.Inc()
	}
}
