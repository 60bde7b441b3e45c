package screening

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sentinela/internal/patient"
	"sentinela/internal/ports"
	"sentinela/internal/ports/mocks"
	"sentinela/internal/record"
	"sentinela/internal/storage"
	dErrors "sentinela/pkg/domain-errors"
	"sentinela/pkg/platform/sentinel"
)

type WizardSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	assessor *mocks.MockEndemicAssessor
	patients *patient.Repository
	records  *record.Repository
	wizard   *Wizard
}

func TestWizardSuite(t *testing.T) {
	suite.Run(t, new(WizardSuite))
}

func (s *WizardSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.assessor = mocks.NewMockEndemicAssessor(s.ctrl)

	store, err := storage.New(storage.NewMemoryBackend(), storage.NewObfuscatingCodec())
	s.Require().NoError(err)
	s.records, err = record.NewRepository(s.ctx, store)
	s.Require().NoError(err)
	s.patients, err = patient.NewRepository(s.ctx, store)
	s.Require().NoError(err)

	_, err = s.patients.Upsert(s.ctx, patient.Patient{FullName: "Ana Macamo", Age: 30, Sex: patient.SexFemale})
	s.Require().NoError(err)

	s.wizard, err = NewWizard(s.patients, s.records, s.assessor)
	s.Require().NoError(err)
}

func (s *WizardSuite) toDangerSigns() {
	s.T().Helper()
	_, err := s.wizard.Next()
	s.Require().NoError(err)
	_, err = s.wizard.Next()
	s.Require().NoError(err)
	s.Require().Equal(PhaseDangerSigns, s.wizard.CurrentPhase())
}

func (s *WizardSuite) TestLinearNavigation() {
	s.Equal(PhasePrimary, s.wizard.CurrentPhase())

	phase, err := s.wizard.Next()
	s.Require().NoError(err)
	s.Equal(PhaseFeverSymptoms, phase)

	phase, err = s.wizard.Next()
	s.Require().NoError(err)
	s.Equal(PhaseDangerSigns, phase)

	s.Run("results is only reachable through analyze", func() {
		_, err := s.wizard.Next()
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(PhaseDangerSigns, s.wizard.CurrentPhase())
	})

	s.Run("back walks the same path", func() {
		phase, err := s.wizard.Back()
		s.Require().NoError(err)
		s.Equal(PhaseFeverSymptoms, phase)

		phase, err = s.wizard.Back()
		s.Require().NoError(err)
		s.Equal(PhasePrimary, phase)

		_, err = s.wizard.Back()
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *WizardSuite) TestAnalyzeOnlyFromDangerSigns() {
	_, err := s.wizard.Analyze(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *WizardSuite) TestAnalyzeHappyPath() {
	s.toDangerSigns()
	answers := ports.EndemicAnswers{FeverNow: true, FeverTemp: "38.5", FeverDays: "3", Chills: true}
	s.wizard.Update(answers)

	s.assessor.EXPECT().
		Assess(gomock.Any(), answers, ports.AgeSex{Age: 30, Sex: string(patient.SexFemale)}).
		Return(&ports.EndemicAssessment{
			RiskLevel:      "Non-severe disease Suspected",
			Recommendation: "Lab Test",
			Summary:        "Febre há três dias, sem sinais de perigo.",
		}, nil)

	got, err := s.wizard.Analyze(s.ctx)
	s.Require().NoError(err)
	s.Equal("Non-severe disease Suspected", got.RiskLevel)
	s.Equal(PhaseResults, s.wizard.CurrentPhase())
}

func (s *WizardSuite) TestDangerSignOverride() {
	// Seizures alone must force the most severe tier, whatever the external
	// assessor answers.
	s.toDangerSigns()
	s.wizard.Update(ports.EndemicAnswers{Seizures: true})

	s.assessor.EXPECT().
		Assess(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&ports.EndemicAssessment{
			RiskLevel:      "Non-severe disease Suspected",
			Recommendation: "Managed Self-medication",
			Summary:        "Sem febre no momento.",
		}, nil)

	got, err := s.wizard.Analyze(s.ctx)
	s.Require().NoError(err)
	s.Equal(RiskCriticalEmergency, got.RiskLevel)
	s.Equal(RecommendationEmergencyReferral, got.Recommendation)

	s.Run("committed record carries the overridden tier", func() {
		rec, err := s.wizard.Commit(s.ctx)
		s.Require().NoError(err)
		s.Contains(rec.Content, "Risk: "+RiskCriticalEmergency)
		s.Contains(rec.Content, "Danger Signs: PRESENT")
	})
}

func (s *WizardSuite) TestAnalyzeFailureKeepsAnswers() {
	s.toDangerSigns()
	answers := ports.EndemicAnswers{FeverNow: true, FeverTemp: "39.0", Vomiting: true}
	s.wizard.Update(answers)

	s.assessor.EXPECT().
		Assess(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, sentinel.ErrRateLimited)

	_, err := s.wizard.Analyze(s.ctx)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
	s.True(dErrors.Retryable(err))

	s.Equal(PhaseDangerSigns, s.wizard.CurrentPhase())
	s.Equal(answers, s.wizard.Answers())
	s.Zero(s.records.Count(s.ctx))

	s.Run("retry succeeds with the retained answers", func() {
		s.assessor.EXPECT().
			Assess(gomock.Any(), answers, gomock.Any()).
			Return(&ports.EndemicAssessment{RiskLevel: "Severe Endemic Disease Suspected", Recommendation: "Referral to Hospital"}, nil)

		_, err := s.wizard.Analyze(s.ctx)
		s.Require().NoError(err)
		s.Equal(PhaseResults, s.wizard.CurrentPhase())
	})
}

func (s *WizardSuite) TestAnalyzeRejectsConcurrentRequest() {
	s.toDangerSigns()

	entered := make(chan struct{})
	release := make(chan struct{})
	s.assessor.EXPECT().
		Assess(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, ports.EndemicAnswers, ports.AgeSex) (*ports.EndemicAssessment, error) {
			close(entered)
			<-release
			return &ports.EndemicAssessment{RiskLevel: "Other"}, nil
		})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.wizard.Analyze(s.ctx)
		s.NoError(err)
	}()

	<-entered
	_, err := s.wizard.Analyze(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.ErrorIs(err, sentinel.ErrBusy)

	close(release)
	wg.Wait()
	s.Equal(PhaseResults, s.wizard.CurrentPhase())
}

func (s *WizardSuite) TestResetDropsInFlightResponse() {
	s.toDangerSigns()

	entered := make(chan struct{})
	release := make(chan struct{})
	s.assessor.EXPECT().
		Assess(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, ports.EndemicAnswers, ports.AgeSex) (*ports.EndemicAssessment, error) {
			close(entered)
			<-release
			return &ports.EndemicAssessment{RiskLevel: "Other"}, nil
		})

	done := make(chan error, 1)
	go func() {
		_, err := s.wizard.Analyze(s.ctx)
		done <- err
	}()

	<-entered
	s.wizard.Reset()
	close(release)

	s.Error(<-done)
	s.Equal(PhasePrimary, s.wizard.CurrentPhase())
	_, ok := s.wizard.Result()
	s.False(ok)
}

func (s *WizardSuite) TestCommit() {
	s.toDangerSigns()
	s.wizard.Update(ports.EndemicAnswers{FeverNow: true, FeverTemp: "38.2", FeverDays: "2"})

	s.assessor.EXPECT().
		Assess(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&ports.EndemicAssessment{
			RiskLevel:      "Non-severe disease Suspected",
			Recommendation: "Lab Test",
			Summary:        "Quadro febril sem sinais de perigo.",
		}, nil)

	_, err := s.wizard.Analyze(s.ctx)
	s.Require().NoError(err)

	rec, err := s.wizard.Commit(s.ctx)
	s.Require().NoError(err)
	s.Equal(record.RoleClinician, rec.OperatorRole)
	s.True(strings.HasPrefix(rec.Content, "[ENDEMIC TRIAGE REPORT]"))
	s.Contains(rec.Content, "Fever: 38.2°C, 2d")

	active, err := s.patients.Active(s.ctx)
	s.Require().NoError(err)
	s.Len(s.records.Query(s.ctx, active.ID), 1)

	s.Run("wizard resets after commit", func() {
		s.Equal(PhasePrimary, s.wizard.CurrentPhase())
		s.Equal(ports.EndemicAnswers{}, s.wizard.Answers())

		_, err := s.wizard.Commit(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *WizardSuite) TestCommitRejectsRemovedSubject() {
	// Removing the patient between analyze and commit must not leave a
	// record pointing at a profile that no longer exists.
	s.toDangerSigns()
	s.wizard.Update(ports.EndemicAnswers{FeverNow: true, FeverTemp: "39.0", FeverDays: "1"})

	s.assessor.EXPECT().
		Assess(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&ports.EndemicAssessment{
			RiskLevel:      "Non-severe disease Suspected",
			Recommendation: "Lab Test",
			Summary:        "Febre recente.",
		}, nil)

	_, err := s.wizard.Analyze(s.ctx)
	s.Require().NoError(err)

	subject, err := s.patients.Active(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.patients.Remove(s.ctx, subject.ID))

	_, err = s.wizard.Commit(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Zero(s.records.Count(s.ctx))

	s.Run("session resets to the first phase", func() {
		s.Equal(PhasePrimary, s.wizard.CurrentPhase())
		_, ok := s.wizard.Result()
		s.False(ok)
	})
}

func (s *WizardSuite) TestResetDiscardsWithoutPersisting() {
	s.toDangerSigns()
	s.wizard.Update(ports.EndemicAnswers{Travel: true, TravelWhere: "Zambézia"})
	s.wizard.Reset()

	s.Equal(PhasePrimary, s.wizard.CurrentPhase())
	s.Equal(ports.EndemicAnswers{}, s.wizard.Answers())
	s.Zero(s.records.Count(s.ctx))
}
