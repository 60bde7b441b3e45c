// Package onboarding drives the multi-step patient intake wizard. The wizard
// owns a draft profile that repositories never see until Finalize.
package onboarding

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"sentinela/internal/patient"
	"sentinela/internal/ports"
	dErrors "sentinela/pkg/domain-errors"
)

// AddressSuggester is the slice of the address client the wizard needs for
// the location step.
type AddressSuggester interface {
	Suggest(ctx context.Context, partial string) ([]ports.Suggestion, error)
}

// Wizard is the intake state machine. One instance serves one intake session
// at a time; Start or Cancel resets it.
type Wizard struct {
	mu    sync.Mutex
	step  Step
	draft patient.Patient

	patients  *patient.Repository
	addresses AddressSuggester
	logger    *slog.Logger
}

type Option func(*Wizard)

func WithLogger(l *slog.Logger) Option {
	return func(w *Wizard) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithAddressSuggester(a AddressSuggester) Option {
	return func(w *Wizard) { w.addresses = a }
}

func NewWizard(patients *patient.Repository, opts ...Option) (*Wizard, error) {
	if patients == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "onboarding wizard requires a patient repository")
	}
	w := &Wizard{
		step:     StepIdentity,
		patients: patients,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins a fresh intake, discarding any draft in progress.
func (w *Wizard) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
}

// StartEdit loads an existing profile into the draft so it can be walked and
// amended. Finalize will replace the stored profile wholesale.
func (w *Wizard) StartEdit(ctx context.Context, patientID string) error {
	p, err := w.patients.Get(ctx, patientID)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = p
	w.step = StepIdentity
	return nil
}

// Next advances one step. From IDENTITY it refuses to move while the name is
// blank; from PHYSICALS a male draft lands directly on BACKGROUND.
func (w *Wizard) Next() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepIdentity && strings.TrimSpace(w.draft.FullName) == "" {
		return w.step, dErrors.New(dErrors.CodeValidation, "full name is required before continuing")
	}
	next, ok := nextStep(w.step, w.draft.Sex)
	if !ok {
		return w.step, dErrors.New(dErrors.CodeValidation, "already at the review step")
	}
	w.step = next
	return w.step, nil
}

// Back retreats one step along the same path Next walks.
func (w *Wizard) Back() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, ok := prevStep(w.step, w.draft.Sex)
	if !ok {
		return w.step, dErrors.New(dErrors.CodeValidation, "already at the first step")
	}
	w.step = prev
	return w.step, nil
}

// JumpTo navigates from REVIEW directly to an earlier step for editing.
// Entered fields elsewhere are untouched.
func (w *Wizard) JumpTo(target Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepReview {
		return dErrors.New(dErrors.CodeValidation, "jumping is only allowed from the review step")
	}
	path := pathFor(w.draft.Sex)
	i := indexOn(path, target)
	if i < 0 {
		return dErrors.New(dErrors.CodeValidation, "step is not part of this intake")
	}
	if target == StepReview {
		return dErrors.New(dErrors.CodeValidation, "already at the review step")
	}
	w.step = target
	return nil
}

// SetIdentity fills the first step. Switching the draft to male clears the
// pregnancy fields immediately, on every such transition.
func (w *Wizard) SetIdentity(fullName string, age int, sex patient.Sex) error {
	if !sex.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown sex value")
	}
	if age < 0 {
		return dErrors.New(dErrors.CodeValidation, "age cannot be negative")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.draft.FullName = fullName
	w.draft.Age = age
	w.draft.Sex = sex
	if sex == patient.SexMale {
		w.draft.IsPregnantOrBreastfeeding = false
		w.draft.PregnancyWeeks = 0
		// The clinical context step just left the path; collapse forward.
		if w.step == StepClinicalContext {
			w.step = StepBackground
		}
	}
	return nil
}

func (w *Wizard) SetEmergencyContact(ec patient.EmergencyContact) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.EmergencyContact = ec
}

func (w *Wizard) SetPhysicals(heightCm, weightKg int, blood patient.BloodType) error {
	if !blood.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown blood type")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.HeightCm = heightCm
	w.draft.WeightKg = weightKg
	w.draft.BloodType = blood
	return nil
}

// SetClinicalContext records pregnancy status. A male draft has no clinical
// context step, so writes against one are rejected.
func (w *Wizard) SetClinicalContext(isPregnantOrBreastfeeding bool, pregnancyWeeks int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft.Sex == patient.SexMale {
		return dErrors.New(dErrors.CodeValidation, "clinical context does not apply to a male profile")
	}
	if pregnancyWeeks < 0 || pregnancyWeeks > 45 {
		return dErrors.New(dErrors.CodeValidation, "pregnancy weeks out of range")
	}
	w.draft.IsPregnantOrBreastfeeding = isPregnantOrBreastfeeding
	if !isPregnantOrBreastfeeding {
		pregnancyWeeks = 0
	}
	w.draft.PregnancyWeeks = pregnancyWeeks
	return nil
}

func (w *Wizard) SetBackground(allergies, medications string, conditions []string, history string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Allergies = allergies
	w.draft.CurrentMedications = medications
	w.draft.KnownConditions = append([]string(nil), conditions...)
	w.draft.MedicalHistory = history
}

func (w *Wizard) SetAdmin(hospitalRecords []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.HospitalRecords = append([]string(nil), hospitalRecords...)
}

func (w *Wizard) SetLocation(loc patient.Location) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Location = loc
}

// SuggestAddress delegates to the address client while the wizard sits on the
// location step. Wired optionally; without a suggester it returns nothing.
func (w *Wizard) SuggestAddress(ctx context.Context, partial string) ([]ports.Suggestion, error) {
	w.mu.Lock()
	suggester := w.addresses
	w.mu.Unlock()

	if suggester == nil {
		return nil, nil
	}
	return suggester.Suggest(ctx, partial)
}

// Finalize turns the draft into a stored profile and resets the wizard. Only
// the review step may finalize.
func (w *Wizard) Finalize(ctx context.Context) (patient.Patient, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepReview {
		return patient.Patient{}, dErrors.New(dErrors.CodeValidation, "intake is not at the review step")
	}
	saved, err := w.patients.Upsert(ctx, w.draft)
	if err != nil {
		return patient.Patient{}, err
	}
	w.logger.InfoContext(ctx, "intake finalized", "patient_id", saved.ID)
	w.reset()
	return saved, nil
}

// Cancel discards the draft without touching any repository.
func (w *Wizard) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
}

// Current returns the step the wizard sits on.
func (w *Wizard) Current() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the draft profile.
func (w *Wizard) Draft() patient.Patient {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Progress reports how far along the path the wizard is, as a fraction over
// the steps this draft actually visits.
func (w *Wizard) Progress() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	path := pathFor(w.draft.Sex)
	i := indexOn(path, w.step)
	if i < 0 {
		return 0
	}
	return float64(i+1) / float64(len(path))
}

func (w *Wizard) reset() {
	w.draft = patient.Patient{}
	w.step = StepIdentity
}
