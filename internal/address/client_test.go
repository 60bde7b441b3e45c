package address

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sentinela/internal/ports"
	"sentinela/internal/ports/mocks"
	dErrors "sentinela/pkg/domain-errors"
	"sentinela/pkg/platform/sentinel"
)

type ClientSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	suggester *mocks.MockAddressSuggester
	client    *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.suggester = mocks.NewMockAddressSuggester(s.ctrl)

	client, err := NewClient(s.suggester)
	s.Require().NoError(err)
	s.client = client
}

func (s *ClientSuite) TestShortInputSkipsTheSuggester() {
	got, err := s.client.Suggest(s.ctx, "Av")
	s.Require().NoError(err)
	s.Empty(got)

	s.Run("and clears previous candidates", func() {
		s.suggester.EXPECT().
			Suggest(gomock.Any(), "Avenida").
			Return([]ports.Suggestion{{Street: "Avenida Julius Nyerere", Cidade: "Maputo"}}, nil)

		_, err := s.client.Suggest(s.ctx, "Avenida")
		s.Require().NoError(err)
		s.Len(s.client.Latest(), 1)

		_, err = s.client.Suggest(s.ctx, "Av")
		s.Require().NoError(err)
		s.Empty(s.client.Latest())
	})
}

func (s *ClientSuite) TestCapsAtFiveCandidates() {
	many := make([]ports.Suggestion, 8)
	for i := range many {
		many[i] = ports.Suggestion{Cidade: "Maputo"}
	}
	s.suggester.EXPECT().Suggest(gomock.Any(), "Rua").Return(many, nil)

	got, err := s.client.Suggest(s.ctx, "Rua")
	s.Require().NoError(err)
	s.Len(got, 5)
	s.Len(s.client.Latest(), 5)
}

func (s *ClientSuite) TestStaleResponseNeverOverwritesNewer() {
	slowEntered := make(chan struct{})
	release := make(chan struct{})

	s.suggester.EXPECT().
		Suggest(gomock.Any(), "Bairro Central").
		DoAndReturn(func(context.Context, string) ([]ports.Suggestion, error) {
			close(slowEntered)
			<-release
			return []ports.Suggestion{{Bairro: "Central", Cidade: "Maputo"}}, nil
		})
	s.suggester.EXPECT().
		Suggest(gomock.Any(), "Bairro Polana").
		Return([]ports.Suggestion{{Bairro: "Polana", Cidade: "Maputo"}}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.client.Suggest(s.ctx, "Bairro Central")
		s.NoError(err)
	}()

	// The older request is in flight; a newer one completes first.
	<-slowEntered
	_, err := s.client.Suggest(s.ctx, "Bairro Polana")
	s.Require().NoError(err)
	s.Equal("Polana", s.client.Latest()[0].Bairro)

	// The stale response lands afterwards and must be discarded.
	close(release)
	wg.Wait()

	latest := s.client.Latest()
	s.Require().Len(latest, 1)
	s.Equal("Polana", latest[0].Bairro)
}

func (s *ClientSuite) TestIdenticalInFlightLookupsCollapse() {
	entered := make(chan struct{})
	release := make(chan struct{})

	s.suggester.EXPECT().
		Suggest(gomock.Any(), "Matola").
		DoAndReturn(func(context.Context, string) ([]ports.Suggestion, error) {
			close(entered)
			<-release
			return []ports.Suggestion{{Cidade: "Matola"}}, nil
		}).
		Times(1)

	var wg sync.WaitGroup
	results := make([][]ports.Suggestion, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := s.client.Suggest(s.ctx, "Matola")
			s.NoError(err)
			results[i] = got
		}(i)
		if i == 0 {
			<-entered
		}
	}

	close(release)
	wg.Wait()
	s.Equal(results[0], results[1])
}

func (s *ClientSuite) TestFailureSurfacesRetryable() {
	s.suggester.EXPECT().
		Suggest(gomock.Any(), "Beira").
		Return(nil, sentinel.ErrRateLimited)

	_, err := s.client.Suggest(s.ctx, "Beira")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
	s.True(dErrors.Retryable(err))
	s.Empty(s.client.Latest())
}
