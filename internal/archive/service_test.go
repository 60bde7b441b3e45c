package archive

import (
	"context"
	"testing"
	"time"

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

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	extractor *mocks.MockDocumentExtractor
	patients  *patient.Repository
	records   *record.Repository
	svc       *Service
	ana       patient.Patient
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.extractor = mocks.NewMockDocumentExtractor(s.ctrl)

	store, err := storage.New(storage.NewMemoryBackend(), storage.NewObfuscatingCodec())
	s.Require().NoError(err)
	s.records, err = record.NewRepository(s.ctx, store)
	s.Require().NoError(err)
	s.patients, err = patient.NewRepository(s.ctx, store)
	s.Require().NoError(err)

	s.ana, err = s.patients.Upsert(s.ctx, patient.Patient{FullName: "Ana Macamo", Age: 30, Sex: patient.SexFemale})
	s.Require().NoError(err)

	s.svc, err = NewService(s.patients, s.records, s.extractor)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestIngest() {
	payload := []byte{0xFF, 0xD8, 0x01}
	docDate := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	s.Run("uses the extracted summary and date", func() {
		s.extractor.EXPECT().
			Extract(gomock.Any(), payload, "image/jpeg").
			Return(&ports.Extraction{Summary: "Resultado de teste rápido de malária: positivo.", DocumentDate: &docDate}, nil)

		draft, err := s.svc.Ingest(s.ctx, "teste-rapido.jpg", "image/jpeg", payload)
		s.Require().NoError(err)
		s.Equal("Resultado de teste rápido de malária: positivo.", draft.Summary)
		s.Require().NotNil(draft.DocumentDate)
		s.True(draft.DocumentDate.Equal(docDate))
		s.Equal(payload, draft.Attachment.Data)
		s.NotEmpty(draft.Attachment.ID)
	})

	s.Run("extractor failure degrades to the fallback summary", func() {
		s.extractor.EXPECT().
			Extract(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, sentinel.ErrMalformedResponse)

		draft, err := s.svc.Ingest(s.ctx, "receita.pdf", "application/pdf", payload)
		s.Require().NoError(err)
		s.Equal(FallbackSummary, draft.Summary)
		s.Nil(draft.DocumentDate)
		s.Equal(payload, draft.Attachment.Data, "attachment must survive a failed analysis")
	})

	s.Run("empty summary degrades too", func() {
		s.extractor.EXPECT().
			Extract(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&ports.Extraction{}, nil)

		draft, err := s.svc.Ingest(s.ctx, "foto.jpg", "image/jpeg", payload)
		s.Require().NoError(err)
		s.Equal(FallbackSummary, draft.Summary)
	})

	s.Run("rejects an empty payload", func() {
		_, err := s.svc.Ingest(s.ctx, "vazio.jpg", "image/jpeg", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestSaveBackdatesToDocumentDate() {
	docDate := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	rec, err := s.svc.Save(s.ctx, Draft{
		Summary:      "Relatório de internamento.",
		DocumentDate: &docDate,
		Attachment:   record.Attachment{ID: "a1", Name: "relatorio.pdf", MimeType: "application/pdf", Data: []byte{1}},
	})
	s.Require().NoError(err)
	s.Equal(s.ana.ID, rec.PatientID)
	s.True(rec.DocumentDate.Equal(docDate))

	s.Run("backdated record sorts behind newer entries", func() {
		newer, err := s.records.Add(s.ctx, record.MedicalRecord{PatientID: s.ana.ID, Content: "consulta de hoje"})
		s.Require().NoError(err)

		got := s.records.Query(s.ctx, s.ana.ID)
		s.Require().Len(got, 2)
		s.Equal(newer.ID, got[0].ID)
		s.Equal(rec.ID, got[1].ID)
	})
}

func (s *ServiceSuite) TestSaveWithoutDocumentDate() {
	rec, err := s.svc.Save(s.ctx, Draft{
		Summary:    FallbackSummary,
		Attachment: record.Attachment{ID: "a1", Name: "foto.jpg", MimeType: "image/jpeg", Data: []byte{1}},
	})
	s.Require().NoError(err)
	s.Require().NotNil(rec.DocumentDate)
	s.True(rec.DocumentDate.Equal(rec.CreatedAt))
}
