package patient

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"sentinela/internal/platform/metrics"
	"sentinela/internal/storage"
	dErrors "sentinela/pkg/domain-errors"
)

// RecordPurger removes all medical records belonging to one patient. It is
// satisfied by record.Repository; the indirection keeps this package from
// importing the record domain.
type RecordPurger interface {
	CascadeDeleteByPatient(ctx context.Context, patientID string) (int, error)
}

// Repository holds every patient profile plus the active-patient pointer.
// All reads hand out copies; the canonical slices never escape the lock.
type Repository struct {
	mu       sync.RWMutex
	patients []Patient
	activeID string

	store   *storage.Store
	purger  RecordPurger
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Repository)

func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repository) { r.metrics = m }
}

func WithRecordPurger(p RecordPurger) Option {
	return func(r *Repository) { r.purger = p }
}

func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepository loads the patient roster and active pointer from the store.
// A missing or unreadable snapshot yields an empty roster.
func NewRepository(ctx context.Context, store *storage.Store, opts ...Option) (*Repository, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "patient repository requires a store")
	}
	r := &Repository{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := store.Load(ctx, storage.KeyPatients, &r.patients); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load patients")
	}
	if err := store.Load(ctx, storage.KeyActivePatient, &r.activeID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load active patient pointer")
	}

	// A dangling pointer can only come from a snapshot written by a newer or
	// corrupted build. Repair it on load so the invariant holds from the start.
	if r.activeID != "" && r.indexOf(r.activeID) < 0 {
		r.logger.WarnContext(ctx, "active patient pointer dangling, repairing", "patient_id", r.activeID)
		if len(r.patients) > 0 {
			r.activeID = r.patients[0].ID
		} else {
			r.activeID = ""
		}
	}
	return r, nil
}

// Upsert replaces the profile with the same ID, or appends a new one when the
// ID is unknown or blank. The upserted patient always becomes active.
func (r *Repository) Upsert(ctx context.Context, p Patient) (Patient, error) {
	if err := p.Validate(); err != nil {
		return Patient{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	p.UpdatedAt = now

	next := make([]Patient, len(r.patients))
	copy(next, r.patients)

	idx := -1
	if p.ID != "" {
		for i := range next {
			if next[i].ID == p.ID {
				idx = i
				break
			}
		}
	}
	if idx >= 0 {
		p.CreatedAt = next[idx].CreatedAt
		next[idx] = p
	} else {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		next = append(next, p)
	}

	if err := r.persist(ctx, next, p.ID); err != nil {
		return Patient{}, err
	}
	r.patients = next
	r.activeID = p.ID
	r.metrics.IncPatientsUpserted()
	r.logger.InfoContext(ctx, "patient upserted", "patient_id", p.ID, "roster_size", len(next))
	return p, nil
}

// Remove deletes the profile, cascades its medical records, and reassigns the
// active pointer to the first remaining patient, or clears it.
func (r *Repository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return dErrors.New(dErrors.CodeNotFound, "patient not found")
	}

	next := make([]Patient, 0, len(r.patients)-1)
	next = append(next, r.patients[:idx]...)
	next = append(next, r.patients[idx+1:]...)

	nextActive := r.activeID
	if nextActive == id {
		if len(next) > 0 {
			nextActive = next[0].ID
		} else {
			nextActive = ""
		}
	}

	// Cascade before touching the roster: if the record snapshot cannot be
	// written the removal aborts with the patient intact, so no record can
	// outlive its patient.
	recordsCascaded := 0
	if r.purger != nil {
		removed, err := r.purger.CascadeDeleteByPatient(ctx, id)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "cascade medical records")
		}
		recordsCascaded = removed
	}

	if err := r.persist(ctx, next, nextActive); err != nil {
		return err
	}
	r.patients = next
	r.activeID = nextActive

	r.logger.InfoContext(ctx, "patient removed", "patient_id", id, "records_cascaded", recordsCascaded)
	r.metrics.IncPatientsRemoved()
	return nil
}

// SwitchActive points the active-patient pointer at an existing profile.
func (r *Repository) SwitchActive(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(id) < 0 {
		return dErrors.New(dErrors.CodeNotFound, "patient not found")
	}
	if r.activeID == id {
		return nil
	}
	if err := r.store.Save(ctx, storage.KeyActivePatient, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist active patient pointer")
	}
	r.activeID = id
	return nil
}

// Get returns the profile with the given ID.
func (r *Repository) Get(ctx context.Context, id string) (Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return Patient{}, dErrors.New(dErrors.CodeNotFound, "patient not found")
	}
	return r.patients[idx], nil
}

// Active returns the active profile, or CodeNotFound when the roster is empty.
func (r *Repository) Active(ctx context.Context) (Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.activeID == "" {
		return Patient{}, dErrors.New(dErrors.CodeNotFound, "no active patient")
	}
	idx := r.indexOf(r.activeID)
	if idx < 0 {
		return Patient{}, dErrors.New(dErrors.CodeNotFound, "no active patient")
	}
	return r.patients[idx], nil
}

// List returns all profiles in insertion order.
func (r *Repository) List(ctx context.Context) []Patient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Patient, len(r.patients))
	copy(out, r.patients)
	return out
}

// persist writes the roster and pointer snapshots while the lock is held.
func (r *Repository) persist(ctx context.Context, patients []Patient, activeID string) error {
	if err := r.store.Save(ctx, storage.KeyPatients, patients); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist patients")
	}
	if err := r.store.Save(ctx, storage.KeyActivePatient, activeID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist active patient pointer")
	}
	return nil
}

func (r *Repository) indexOf(id string) int {
	for i := range r.patients {
		if r.patients[i].ID == id {
			return i
		}
	}
	return -1
}
