// Package screening drives the four-phase endemic-disease questionnaire.
// The phases are strictly linear; classification of the finished answer set
// is delegated to an external assessor, but the danger-sign override in this
// package has the final word on what gets recorded.
package screening

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

// Phase is one of the four questionnaire phases.
type Phase int

const (
	PhasePrimary       Phase = 1
	PhaseFeverSymptoms Phase = 2
	PhaseDangerSigns   Phase = 3
	PhaseResults       Phase = 4
)

// RiskCriticalEmergency is the most severe classification tier. Any danger
// sign forces it, regardless of what the assessor answered.
const RiskCriticalEmergency = "CRITICAL/EMERGENCY"

// RecommendationEmergencyReferral accompanies an overridden classification.
const RecommendationEmergencyReferral = "Referral to Hospital"

// Wizard is the screening state machine for one questionnaire session.
type Wizard struct {
	mu       sync.Mutex
	phase    Phase
	answers  ports.EndemicAnswers
	result   *ports.EndemicAssessment
	subject  string
	inFlight bool
	gen      uint64

	patients *patient.Repository
	records  *record.Repository
	assessor ports.EndemicAssessor
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Wizard)

func WithLogger(l *slog.Logger) Option {
	return func(w *Wizard) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Wizard) { w.metrics = m }
}

func NewWizard(patients *patient.Repository, records *record.Repository, assessor ports.EndemicAssessor, opts ...Option) (*Wizard, error) {
	if patients == nil || records == nil || assessor == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "screening wizard requires patients, records and an assessor")
	}
	w := &Wizard{
		phase:    PhasePrimary,
		patients: patients,
		records:  records,
		assessor: assessor,
		logger:   slog.Default(),
		tracer:   otel.Tracer("sentinela/screening"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Update replaces the answer set. Gated sub-fields travel with their gate;
// the wizard does not second-guess which ones are currently meaningful.
func (w *Wizard) Update(a ports.EndemicAnswers) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.answers = a
}

// Next advances through the data-entry phases. RESULTS is only reachable
// through a successful Analyze.
func (w *Wizard) Next() (Phase, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.phase {
	case PhasePrimary, PhaseFeverSymptoms:
		w.phase++
		return w.phase, nil
	case PhaseDangerSigns:
		return w.phase, dErrors.New(dErrors.CodeValidation, "run the analysis to reach the results phase")
	default:
		return w.phase, dErrors.New(dErrors.CodeValidation, "already at the results phase")
	}
}

// Back retreats one data-entry phase. From RESULTS the only ways out are
// Commit and Reset.
func (w *Wizard) Back() (Phase, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.phase {
	case PhaseFeverSymptoms, PhaseDangerSigns:
		w.phase--
		return w.phase, nil
	case PhaseResults:
		return w.phase, dErrors.New(dErrors.CodeValidation, "commit or reset to leave the results phase")
	default:
		return w.phase, dErrors.New(dErrors.CodeValidation, "already at the first phase")
	}
}

// Analyze sends the answer set plus the active patient's age and sex to the
// assessor. On success the danger-sign override is applied and the wizard
// moves to RESULTS; on failure it stays on DANGER_SIGNS with the answers
// intact. A second call while one is pending is rejected.
func (w *Wizard) Analyze(ctx context.Context) (*ports.EndemicAssessment, error) {
	w.mu.Lock()
	if w.phase != PhaseDangerSigns {
		w.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeValidation, "analysis is only available from the danger signs phase")
	}
	if w.inFlight {
		w.mu.Unlock()
		return nil, dErrors.Wrap(sentinel.ErrBusy, dErrors.CodeUnavailable, "an analysis is already in progress")
	}

	active, err := w.patients.Active(ctx)
	if err != nil {
		w.mu.Unlock()
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "screening requires an active patient")
	}

	answers := w.answers
	gen := w.gen
	w.inFlight = true
	w.mu.Unlock()

	ctx, span := w.tracer.Start(ctx, "screening.analyze")
	assessment, err := w.assessor.Assess(ctx, answers, ports.AgeSex{Age: active.Age, Sex: string(active.Sex)})
	span.End()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false

	if w.gen != gen {
		// The session was reset while the call was out; drop the response.
		return nil, dErrors.New(dErrors.CodeValidation, "screening session was reset during analysis")
	}
	if err != nil {
		w.metrics.IncCollaboratorFailure("endemic_assessor")
		w.logger.WarnContext(ctx, "endemic assessment failed", "error", err)
		return nil, wrapCollaborator(err, "endemic assessment")
	}
	if assessment == nil {
		w.metrics.IncCollaboratorFailure("endemic_assessor")
		return nil, dErrors.Wrap(sentinel.ErrMalformedResponse, dErrors.CodeMalformedResponse, "endemic assessment")
	}

	final := *assessment
	if dangerSignPresent(answers) {
		final.RiskLevel = RiskCriticalEmergency
		final.Recommendation = RecommendationEmergencyReferral
	}

	w.result = &final
	w.subject = active.ID
	w.phase = PhaseResults
	return &final, nil
}

// Commit writes one immutable clinician record summarizing the answers and
// the final classification, then resets the session.
func (w *Wizard) Commit(ctx context.Context) (record.MedicalRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase != PhaseResults || w.result == nil {
		return record.MedicalRecord{}, dErrors.New(dErrors.CodeValidation, "nothing to commit before the results phase")
	}
	if _, err := w.patients.Get(ctx, w.subject); err != nil {
		// The patient was removed while the result was on screen; the
		// session is bound to a profile that no longer exists.
		w.logger.WarnContext(ctx, "screening subject removed before commit", "patient_id", w.subject)
		w.resetLocked()
		return record.MedicalRecord{}, dErrors.Wrap(err, dErrors.CodeNotFound, "screening subject no longer exists")
	}

	rec, err := w.records.Add(ctx, record.MedicalRecord{
		PatientID:    w.subject,
		OperatorRole: record.RoleClinician,
		Content:      reportContent(w.answers, *w.result),
	})
	if err != nil {
		return record.MedicalRecord{}, err
	}
	w.metrics.IncScreeningsCommitted()
	w.logger.InfoContext(ctx, "screening committed", "patient_id", w.subject, "risk_level", w.result.RiskLevel)
	w.resetLocked()
	return rec, nil
}

// Reset discards all answers and returns to the first phase. Nothing is
// persisted; an in-flight analysis response will be dropped on arrival.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

// CurrentPhase returns the phase the wizard sits on.
func (w *Wizard) CurrentPhase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Progress reports completion as a fraction of the four phases.
func (w *Wizard) Progress() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return float64(w.phase) / float64(PhaseResults)
}

// Answers returns a copy of the current answer set.
func (w *Wizard) Answers() ports.EndemicAnswers {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.answers
}

// Result returns the final classification once the wizard reached RESULTS.
func (w *Wizard) Result() (ports.EndemicAssessment, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return ports.EndemicAssessment{}, false
	}
	return *w.result, true
}

func (w *Wizard) resetLocked() {
	w.answers = ports.EndemicAnswers{}
	w.result = nil
	w.subject = ""
	w.phase = PhasePrimary
	w.gen++
}

// dangerSignPresent reports whether any danger flag is set.
func dangerSignPresent(a ports.EndemicAnswers) bool {
	return a.Confusion || a.Breathing || a.DarkUrine || a.Jaundice ||
		a.CantStand || a.Seizures || a.SevereAbdominalPain
}

func reportContent(a ports.EndemicAnswers, r ports.EndemicAssessment) string {
	fever := "No"
	if a.FeverNow {
		fever = fmt.Sprintf("%s°C, %sd", a.FeverTemp, a.FeverDays)
	}
	danger := "NONE"
	if dangerSignPresent(a) {
		danger = "PRESENT"
	}

	var b strings.Builder
	b.WriteString("[ENDEMIC TRIAGE REPORT]\n")
	fmt.Fprintf(&b, "Risk: %s\n", r.RiskLevel)
	fmt.Fprintf(&b, "Recommendation: %s\n", r.Recommendation)
	fmt.Fprintf(&b, "Clinical Summary: %s\n\n", r.Summary)
	b.WriteString("Questionnaire Data:\n")
	fmt.Fprintf(&b, "- Fever: %s\n", fever)
	fmt.Fprintf(&b, "- Danger Signs: %s", danger)
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
