// Package archive ingests uploaded medical documents (photos, PDFs) for the
// active patient: the external extractor summarizes the document, then the
// attachment plus summary are saved as one immutable record, backdated to the
// document's own date when one was found.
package archive

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"sentinela/internal/patient"
	"sentinela/internal/platform/metrics"
	"sentinela/internal/ports"
	"sentinela/internal/record"
	dErrors "sentinela/pkg/domain-errors"
	"sentinela/pkg/platform/sentinel"
)

// FallbackSummary is stored when the extractor fails or returns something
// unusable. The attachment is kept either way; a bad analysis never loses
// the document.
const FallbackSummary = "Document archived. Automatic analysis was not available for this file."

// Draft is an ingested document awaiting confirmation.
type Draft struct {
	Summary      string            `json:"summary"`
	DocumentDate *time.Time        `json:"document_date,omitempty"`
	Attachment   record.Attachment `json:"attachment"`
}

// Service drives document ingest for the active patient.
type Service struct {
	mu       sync.Mutex
	inFlight bool

	patients  *patient.Repository
	records   *record.Repository
	extractor ports.DocumentExtractor
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(patients *patient.Repository, records *record.Repository, extractor ports.DocumentExtractor, opts ...Option) (*Service, error) {
	if patients == nil || records == nil || extractor == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "archive service requires patients, records and an extractor")
	}
	s := &Service{
		patients:  patients,
		records:   records,
		extractor: extractor,
		logger:    slog.Default(),
		tracer:    otel.Tracer("sentinela/archive"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ingest runs the extractor over the uploaded bytes and returns a draft. An
// extractor failure degrades to the fallback summary instead of failing the
// ingest; only one extraction runs at a time.
func (s *Service) Ingest(ctx context.Context, name, mimeType string, data []byte) (Draft, error) {
	if len(data) == 0 {
		return Draft{}, dErrors.New(dErrors.CodeValidation, "document payload is empty")
	}
	if _, err := s.patients.Active(ctx); err != nil {
		return Draft{}, dErrors.Wrap(err, dErrors.CodeNotFound, "archiving requires an active patient")
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return Draft{}, dErrors.Wrap(sentinel.ErrBusy, dErrors.CodeUnavailable, "a document analysis is already in progress")
	}
	s.inFlight = true
	s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "archive.ingest")
	extraction, err := s.extractor.Extract(ctx, data, mimeType)
	span.End()

	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()

	draft := Draft{
		Summary: FallbackSummary,
		Attachment: record.Attachment{
			ID:       uuid.NewString(),
			Name:     name,
			MimeType: mimeType,
			Data:     data,
		},
	}
	switch {
	case err != nil:
		s.metrics.IncCollaboratorFailure("document_extractor")
		s.logger.WarnContext(ctx, "document extraction failed, archiving without analysis", "error", err)
	case extraction == nil || extraction.Summary == "":
		s.metrics.IncCollaboratorFailure("document_extractor")
		s.logger.WarnContext(ctx, "document extraction returned no summary, archiving without analysis")
	default:
		draft.Summary = extraction.Summary
		draft.DocumentDate = extraction.DocumentDate
	}
	return draft, nil
}

// Save writes the draft as one record on the active patient, backdated to the
// extracted document date when present.
func (s *Service) Save(ctx context.Context, draft Draft) (record.MedicalRecord, error) {
	active, err := s.patients.Active(ctx)
	if err != nil {
		return record.MedicalRecord{}, dErrors.Wrap(err, dErrors.CodeNotFound, "archiving requires an active patient")
	}

	rec, err := s.records.Add(ctx, record.MedicalRecord{
		PatientID:    active.ID,
		Content:      draft.Summary,
		DocumentDate: draft.DocumentDate,
		Attachments:  []record.Attachment{draft.Attachment},
	})
	if err != nil {
		return record.MedicalRecord{}, err
	}
	s.logger.InfoContext(ctx, "document archived", "patient_id", active.ID, "record_id", rec.ID, "mime_type", draft.Attachment.MimeType)
	return rec, nil
}
