// Package assist turns a free-text symptom narrative into a structured triage
// assessment through the external risk assessor, and produces the emergency
// call script for the active patient.
package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"sentinela/internal/patient"
	"sentinela/internal/platform/metrics"
	"sentinela/internal/ports"
	"sentinela/internal/record"
	dErrors "sentinela/pkg/domain-errors"
	"sentinela/pkg/platform/sentinel"
)

// recentHistoryLimit caps how many prior record entries travel with a
// triage request.
const recentHistoryLimit = 5

const emergencyScriptTemplate = "I am calling to report a medical emergency for a patient. " +
	"Name: [NAME], Age: [AGE]. They are currently experiencing [SYMPTOMS]. Our location is [LOCATION]."

// Service runs triage assessments for the active patient. At most one
// assessor call is in flight at a time; the latest successful result is
// cached until SaveSummary or the next Run.
type Service struct {
	mu        sync.Mutex
	inFlight  bool
	result    *ports.TriageResult
	subject   string
	narrative string

	patients *patient.Repository
	records  *record.Repository
	assessor ports.RiskAssessor
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
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

func NewService(patients *patient.Repository, records *record.Repository, assessor ports.RiskAssessor, opts ...Option) (*Service, error) {
	if patients == nil || records == nil || assessor == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "assist service requires patients, records and an assessor")
	}
	s := &Service{
		patients: patients,
		records:  records,
		assessor: assessor,
		logger:   slog.Default(),
		tracer:   otel.Tracer("sentinela/assist"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run assesses the narrative against the active patient's profile and recent
// record history. A second Run while one is pending is rejected; a failed
// call leaves the previously cached result untouched.
func (s *Service) Run(ctx context.Context, narrative string) (*ports.TriageResult, error) {
	if strings.TrimSpace(narrative) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "symptom narrative is required")
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, dErrors.Wrap(sentinel.ErrBusy, dErrors.CodeUnavailable, "a triage assessment is already in progress")
	}
	s.mu.Unlock()

	active, err := s.patients.Active(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "triage requires an active patient")
	}

	profile := ports.PatientProfile{
		FullName:        active.FullName,
		Age:             active.Age,
		Sex:             string(active.Sex),
		KnownConditions: active.KnownConditions,
		Pregnant:        active.IsPregnantOrBreastfeeding,
	}
	history := s.recentHistory(ctx, active.ID)

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, dErrors.Wrap(sentinel.ErrBusy, dErrors.CodeUnavailable, "a triage assessment is already in progress")
	}
	s.inFlight = true
	s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "assist.run")
	result, err := s.assessor.Assess(ctx, profile, narrative, history)
	span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if err != nil {
		s.metrics.IncCollaboratorFailure("risk_assessor")
		s.logger.WarnContext(ctx, "triage assessment failed", "error", err)
		return nil, wrapCollaborator(err, "triage assessment")
	}
	if result == nil {
		s.metrics.IncCollaboratorFailure("risk_assessor")
		return nil, dErrors.Wrap(sentinel.ErrMalformedResponse, dErrors.CodeMalformedResponse, "triage assessment")
	}

	s.result = result
	s.subject = active.ID
	s.narrative = narrative
	s.logger.InfoContext(ctx, "triage assessed", "patient_id", active.ID, "risk_level", result.RiskLevel)
	return result, nil
}

// SaveSummary writes the cached assessment as one clinician record on the
// patient it was run for, then clears the cache.
func (s *Service) SaveSummary(ctx context.Context) (record.MedicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return record.MedicalRecord{}, dErrors.New(dErrors.CodeValidation, "no assessment to save")
	}
	if _, err := s.patients.Get(ctx, s.subject); err != nil {
		// The patient was removed since the assessment ran; drop the cache
		// rather than write a record nobody can reach.
		s.logger.WarnContext(ctx, "assessment subject removed before save", "patient_id", s.subject)
		s.result = nil
		s.subject = ""
		s.narrative = ""
		return record.MedicalRecord{}, dErrors.Wrap(err, dErrors.CodeNotFound, "assessed patient no longer exists")
	}

	rec, err := s.records.Add(ctx, record.MedicalRecord{
		PatientID:    s.subject,
		OperatorRole: record.RoleClinician,
		Content:      summaryContent(s.narrative, *s.result),
	})
	if err != nil {
		return record.MedicalRecord{}, err
	}
	s.result = nil
	s.subject = ""
	s.narrative = ""
	return rec, nil
}

// Result returns the cached assessment, if any.
func (s *Service) Result() (ports.TriageResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return ports.TriageResult{}, false
	}
	return *s.result, true
}

// EmergencyScript fills the call script read to the emergency operator.
// Missing pieces fall back to generic phrasing rather than leaving holes.
func EmergencyScript(p patient.Patient, narrative string) string {
	symptoms := strings.TrimSpace(narrative)
	if symptoms == "" {
		symptoms = "severe health complications"
	}
	location := "our current location"
	if p.Location != (patient.Location{}) {
		location = fmt.Sprintf("%s, %s, %s", p.Location.Street, p.Location.Bairro, p.Location.Cidade)
	}

	r := strings.NewReplacer(
		"[NAME]", p.FullName,
		"[AGE]", fmt.Sprintf("%d", p.Age),
		"[SYMPTOMS]", symptoms,
		"[LOCATION]", location,
	)
	return r.Replace(emergencyScriptTemplate)
}

func (s *Service) recentHistory(ctx context.Context, patientID string) []string {
	recs := s.records.Query(ctx, patientID)
	if len(recs) > recentHistoryLimit {
		recs = recs[:recentHistoryLimit]
	}
	history := make([]string, 0, len(recs))
	for _, r := range recs {
		if r.Content != "" {
			history = append(history, r.Content)
		}
	}
	return history
}

func summaryContent(narrative string, r ports.TriageResult) string {
	var b strings.Builder
	b.WriteString("[AI TRIAGE ASSESSMENT]\n")
	fmt.Fprintf(&b, "Risk: %s\n", r.RiskLevel)
	fmt.Fprintf(&b, "Reason: %s\n\n", r.Reason)
	fmt.Fprintf(&b, "Symptoms reported:\n%s", narrative)
	return b.String()
}

func wrapCollaborator(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrRateLimited):
		return dErrors.Wrap(err, dErrors.CodeRateLimited, msg)
	case errors.Is(err, sentinel.ErrMalformedResponse):
		return dErrors.Wrap(err, dErrors.CodeMalformedResponse, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	}
}
