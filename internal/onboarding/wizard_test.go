package onboarding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"sentinela/internal/patient"
	"sentinela/internal/ports"
	"sentinela/internal/storage"
	dErrors "sentinela/pkg/domain-errors"
)

type WizardSuite struct {
	suite.Suite
	ctx      context.Context
	patients *patient.Repository
	wizard   *Wizard
}

func TestWizardSuite(t *testing.T) {
	suite.Run(t, new(WizardSuite))
}

func (s *WizardSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := storage.New(storage.NewMemoryBackend(), storage.NewObfuscatingCodec())
	s.Require().NoError(err)

	s.patients, err = patient.NewRepository(s.ctx, store)
	s.Require().NoError(err)

	s.wizard, err = NewWizard(s.patients)
	s.Require().NoError(err)
}

func (s *WizardSuite) mustNext() Step {
	s.T().Helper()
	step, err := s.wizard.Next()
	s.Require().NoError(err)
	return step
}

func (s *WizardSuite) advanceTo(target Step) {
	s.T().Helper()
	for i := 0; i < len(stepOrder); i++ {
		if s.wizard.Current() == target {
			return
		}
		s.mustNext()
	}
	s.Require().Equal(target, s.wizard.Current())
}

func (s *WizardSuite) TestNextBlockedWithoutName() {
	_, err := s.wizard.Next()
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal(StepIdentity, s.wizard.Current())
}

func (s *WizardSuite) TestFemalePathVisitsClinicalContext() {
	s.Require().NoError(s.wizard.SetIdentity("Ana Macamo", 30, patient.SexFemale))

	s.Equal(StepEmergencyContact, s.mustNext())
	s.Equal(StepPhysicals, s.mustNext())
	s.Equal(StepClinicalContext, s.mustNext())
	s.Equal(StepBackground, s.mustNext())
	s.Equal(StepAdmin, s.mustNext())
	s.Equal(StepLocation, s.mustNext())
	s.Equal(StepReview, s.mustNext())

	_, err := s.wizard.Next()
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *WizardSuite) TestMalePathSkipsClinicalContext() {
	s.Require().NoError(s.wizard.SetIdentity("Berto Sitoe", 41, patient.SexMale))
	s.advanceTo(StepPhysicals)

	s.Equal(StepBackground, s.mustNext())

	s.Run("back mirrors the skip", func() {
		step, err := s.wizard.Back()
		s.Require().NoError(err)
		s.Equal(StepPhysicals, step)
	})
}

func (s *WizardSuite) TestBackStopsAtIdentity() {
	s.Require().NoError(s.wizard.SetIdentity("Ana Macamo", 30, patient.SexFemale))
	s.advanceTo(StepEmergencyContact)

	step, err := s.wizard.Back()
	s.Require().NoError(err)
	s.Equal(StepIdentity, step)

	_, err = s.wizard.Back()
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *WizardSuite) TestSexSwitchClearsPregnancyFields() {
	// Ana walks as female, fills the clinical context step, then her sex is
	// corrected to male from the review step.
	s.Require().NoError(s.wizard.SetIdentity("Ana Macamo", 30, patient.SexFemale))
	s.advanceTo(StepClinicalContext)
	s.Require().NoError(s.wizard.SetClinicalContext(true, 24))
	s.advanceTo(StepReview)

	s.Require().NoError(s.wizard.JumpTo(StepIdentity))
	s.Require().NoError(s.wizard.SetIdentity("Ana Macamo", 30, patient.SexMale))

	draft := s.wizard.Draft()
	s.False(draft.IsPregnantOrBreastfeeding)
	s.Zero(draft.PregnancyWeeks)

	s.Run("back from background now lands on physicals", func() {
		s.advanceTo(StepBackground)
		step, err := s.wizard.Back()
		s.Require().NoError(err)
		s.Equal(StepPhysicals, step)
	})

	s.Run("clears again on every later flip", func() {
		s.Require().NoError(s.wizard.SetIdentity("Ana Macamo", 30, patient.SexFemale))
		s.Require().NoError(s.wizard.SetClinicalContext(true, 24))
		s.Require().NoError(s.wizard.SetIdentity("Ana Macamo", 30, patient.SexMale))
		s.False(s.wizard.Draft().IsPregnantOrBreastfeeding)
		s.Zero(s.wizard.Draft().PregnancyWeeks)
	})
}

func (s *WizardSuite) TestSexSwitchWhileOnClinicalContext() {
	s.Require().NoError(s.wizard.SetIdentity("Ana Macamo", 30, patient.SexFemale))
	s.advanceTo(StepClinicalContext)

	s.Require().NoError(s.wizard.SetIdentity("Ana Macamo", 30, patient.SexMale))
	s.Equal(StepBackground, s.wizard.Current())
}

func (s *WizardSuite) TestClinicalContextRejectedForMale() {
	s.Require().NoError(s.wizard.SetIdentity("Berto Sitoe", 41, patient.SexMale))
	err := s.wizard.SetClinicalContext(true, 12)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *WizardSuite) TestJumpTo() {
	s.Require().NoError(s.wizard.SetIdentity("Ana Macamo", 30, patient.SexFemale))

	s.Run("only allowed from review", func() {
		err := s.wizard.JumpTo(StepLocation)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.advanceTo(StepReview)
	s.wizard.SetLocation(patient.Location{Cidade: "Maputo"})

	s.Require().NoError(s.wizard.JumpTo(StepPhysicals))
	s.Equal(StepPhysicals, s.wizard.Current())

	s.Run("fields entered elsewhere survive the jump", func() {
		s.Equal("Maputo", s.wizard.Draft().Location.Cidade)
	})
}

func (s *WizardSuite) TestFinalize() {
	s.Require().NoError(s.wizard.SetIdentity("Ana Macamo", 30, patient.SexFemale))
	s.wizard.SetEmergencyContact(patient.EmergencyContact{Name: "Carlos", Phone: "+258 84 000 0000", Relationship: "Irmão"})
	s.Require().NoError(s.wizard.SetPhysicals(165, 58, "O+"))
	s.advanceTo(StepReview)

	saved, err := s.wizard.Finalize(s.ctx)
	s.Require().NoError(err)
	s.NotEmpty(saved.ID)

	s.Run("finalized patient is active", func() {
		active, err := s.patients.Active(s.ctx)
		s.Require().NoError(err)
		s.Equal(saved.ID, active.ID)
	})

	s.Run("wizard resets after finalize", func() {
		s.Equal(StepIdentity, s.wizard.Current())
		s.Empty(s.wizard.Draft().FullName)
	})

	s.Run("only review may finalize", func() {
		_, err := s.wizard.Finalize(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *WizardSuite) TestCancelLeavesRepositoryUntouched() {
	s.Require().NoError(s.wizard.SetIdentity("Ana Macamo", 30, patient.SexFemale))
	s.advanceTo(StepReview)
	s.wizard.Cancel()

	s.Empty(s.patients.List(s.ctx))
	s.Equal(StepIdentity, s.wizard.Current())
}

func (s *WizardSuite) TestStartEditLoadsExistingProfile() {
	seeded, err := s.patients.Upsert(s.ctx, patient.Patient{FullName: "Ana Macamo", Age: 30, Sex: patient.SexFemale})
	s.Require().NoError(err)

	s.Require().NoError(s.wizard.StartEdit(s.ctx, seeded.ID))
	s.Equal("Ana Macamo", s.wizard.Draft().FullName)
	s.Equal(StepIdentity, s.wizard.Current())

	s.advanceTo(StepReview)
	saved, err := s.wizard.Finalize(s.ctx)
	s.Require().NoError(err)
	s.Equal(seeded.ID, saved.ID)
	s.Len(s.patients.List(s.ctx), 1)

	s.Run("unknown id is not found", func() {
		err := s.wizard.StartEdit(s.ctx, "missing")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *WizardSuite) TestProgress() {
	s.Require().NoError(s.wizard.SetIdentity("Ana Macamo", 30, patient.SexFemale))
	s.InDelta(1.0/8.0, s.wizard.Progress(), 1e-9)
	s.advanceTo(StepReview)
	s.InDelta(1.0, s.wizard.Progress(), 1e-9)

	s.Run("male path has seven steps", func() {
		s.wizard.Cancel()
		s.Require().NoError(s.wizard.SetIdentity("Berto Sitoe", 41, patient.SexMale))
		s.InDelta(1.0/7.0, s.wizard.Progress(), 1e-9)
	})
}

func (s *WizardSuite) TestSuggestAddressWithoutSuggester() {
	got, err := s.wizard.SuggestAddress(s.ctx, "Av. Julius")
	s.Require().NoError(err)
	s.Nil(got)
}

type staticSuggester struct{ out []ports.Suggestion }

func (s staticSuggester) Suggest(context.Context, string) ([]ports.Suggestion, error) {
	return s.out, nil
}

func (s *WizardSuite) TestSuggestAddressDelegates() {
	want := []ports.Suggestion{{Street: "Av. Julius Nyerere", Cidade: "Maputo", Country: "Moçambique"}}
	w, err := NewWizard(s.patients, WithAddressSuggester(staticSuggester{out: want}))
	s.Require().NoError(err)

	got, err := w.SuggestAddress(s.ctx, "Av. Julius")
	s.Require().NoError(err)
	s.Equal(want, got)
}
