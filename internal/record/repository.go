package record

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"sentinela/internal/platform/metrics"
	"sentinela/internal/storage"
	dErrors "sentinela/pkg/domain-errors"
)

// Repository owns the medical-record collection. Records live in memory in
// insertion order; every committed mutation writes the full collection back
// to the snapshot store synchronously before returning.
type Repository struct {
	mu      sync.RWMutex
	records []MedicalRecord
	store   *storage.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Repository)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repository) { r.metrics = m }
}

// WithClock overrides the creation-timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// NewRepository loads the persisted record collection. A missing or corrupt
// snapshot degrades to an empty collection; it never fails startup.
func NewRepository(ctx context.Context, store *storage.Store, opts ...Option) (*Repository, error) {
	r := &Repository{
		store:  store,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	records := []MedicalRecord{}
	if err := store.Load(ctx, storage.KeyMedicalRecords, &records); err != nil {
		return nil, err
	}
	r.records = records
	return r, nil
}

// Add appends one immutable record. The id and creation timestamp are
// assigned here when unset; DocumentDate defaults to the creation time unless
// the caller backdated it (e.g. from extracted document metadata).
func (r *Repository) Add(ctx context.Context, rec MedicalRecord) (MedicalRecord, error) {
	if err := rec.Validate(); err != nil {
		return MedicalRecord{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	if rec.DocumentDate == nil {
		d := rec.CreatedAt
		rec.DocumentDate = &d
	}

	next := append(append([]MedicalRecord{}, r.records...), rec)
	if err := r.store.Save(ctx, storage.KeyMedicalRecords, next); err != nil {
		return MedicalRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist records")
	}
	r.records = next
	r.metrics.IncRecordsAdded()
	return rec, nil
}

// Query returns the records for one patient, newest first: DocumentDate
// descending, creation timestamp descending as tiebreak.
func (r *Repository) Query(_ context.Context, patientID string) []MedicalRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]MedicalRecord, 0, 8)
	for _, rec := range r.records {
		if rec.PatientID == patientID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].EffectiveDate(), out[j].EffectiveDate()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// CascadeDeleteByPatient removes every record belonging to the patient and
// only those. It is invoked by the patient repository during removal; the
// presentation layer never calls it directly.
func (r *Repository) CascadeDeleteByPatient(ctx context.Context, patientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]MedicalRecord, 0, len(r.records))
	removed := 0
	for _, rec := range r.records {
		if rec.PatientID == patientID {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := r.store.Save(ctx, storage.KeyMedicalRecords, kept); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist records after cascade")
	}
	r.records = kept
	r.metrics.AddRecordsCascaded(removed)
	r.logger.InfoContext(ctx, "cascade deleted records",
		"patient_id", patientID,
		"removed", removed,
	)
	return removed, nil
}

// Count reports the total number of records across all patients.
func (r *Repository) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
