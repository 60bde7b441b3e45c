// Package storage implements the persistent snapshot store for the clinical
// core. Each logical collection (patients, medical records, active-patient
// pointer, language preference) is persisted under its own key; every
// committed mutation at the repository layer triggers an immediate,
// synchronous, full-collection save.
//
// Keys degrade independently: a missing or corrupt blob for one key never
// blocks loading the others, and never prevents startup. Corruption is
// logged and counted, then absorbed into the key's default value.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"

	"sentinela/internal/platform/metrics"
	"sentinela/pkg/platform/sentinel"
)

// Persisted logical keys. Implementation-independent: every backend stores
// the same opaque blob under the same name.
const (
	KeyPatients       = "patients"
	KeyActivePatient  = "active_patient"
	KeyMedicalRecords = "medical_records"
	KeyLanguage       = "language"
)

// Backend is a flat blob store. Implementations: FileBackend (default,
// local-first), MemoryBackend (tests), RedisBackend, PostgresBackend.
//
// Get returns sentinel.ErrNotFound when the key has never been written.
type Backend interface {
	Put(ctx context.Context, key string, blob []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Store persists typed collections through a Codec and a Backend.
type Store struct {
	backend Backend
	codec   Codec
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New builds a store over the given backend and codec.
func New(backend Backend, codec Codec, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("storage backend is required")
	}
	if codec == nil {
		return nil, errors.New("storage codec is required")
	}
	s := &Store{
		backend: backend,
		codec:   codec,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save marshals v and writes it under key. The write is synchronous; when
// Save returns nil the snapshot is durable at the backend.
func (s *Store) Save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	blob, err := s.codec.Encode(raw)
	if err != nil {
		return err
	}
	return s.backend.Put(ctx, key, blob)
}

// Load reads key into dst. A missing key leaves dst untouched and returns
// nil: callers initialize dst to the key's default before calling. A corrupt
// or foreign-shaped blob is treated the same way, with a log line and a
// metrics tick; it is never fatal.
func (s *Store) Load(ctx context.Context, key string, dst any) error {
	blob, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return err
	}
	raw, err := s.codec.Decode(blob)
	if err != nil {
		s.absorbCorrupt(ctx, key, err)
		return nil
	}
	// Decode into a scratch value so a failed decode cannot half-fill dst.
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return errors.New("load destination must be a non-nil pointer")
	}
	tmp := reflect.New(dv.Elem().Type())
	if err := json.Unmarshal(raw, tmp.Interface()); err != nil {
		s.absorbCorrupt(ctx, key, err)
		return nil
	}
	dv.Elem().Set(tmp.Elem())
	return nil
}

func (s *Store) absorbCorrupt(ctx context.Context, key string, err error) {
	s.logger.WarnContext(ctx, "persisted snapshot unreadable, using default",
		"key", key,
		"error", errors.Join(sentinel.ErrCorrupt, err),
	)
	s.metrics.IncSnapshotDecodeErrors()
}
