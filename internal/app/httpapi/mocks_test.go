package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/auth"
)

type MockVotingService struct {
	mock.Mock
}

func (m *MockVotingService) CastVote(ctx context.Context, who domain.Identity, electionID domain.ElectionID, candidateID domain.CandidateID) (domain.Ballot, error) {
	args := m.Called(ctx, who, electionID, candidateID)
	return args.Get(0).(domain.Ballot), args.Error(1)
}

func (m *MockVotingService) CountFor(ctx context.Context, electionID domain.ElectionID) ([]domain.CandidateCount, error) {
	args := m.Called(ctx, electionID)
	return args.Get(0).([]domain.CandidateCount), args.Error(1)
}

func (m *MockVotingService) ElectionsFor(ctx context.Context, who domain.Identity) ([]domain.Election, error) {
	args := m.Called(ctx, who)
	return args.Get(0).([]domain.Election), args.Error(1)
}

func (m *MockVotingService) Turnout(ctx context.Context, electionID domain.ElectionID) (domain.Turnout, error) {
	args := m.Called(ctx, electionID)
	return args.Get(0).(domain.Turnout), args.Error(1)
}

type MockTabulationService struct {
	mock.Mock
}

func (m *MockTabulationService) Generate(ctx context.Context, electionID domain.ElectionID) (domain.Result, error) {
	args := m.Called(ctx, electionID)
	return args.Get(0).(domain.Result), args.Error(1)
}

type MockResultService struct {
	mock.Mock
}

func (m *MockResultService) List(ctx context.Context) ([]domain.Result, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Result), args.Error(1)
}

func (m *MockResultService) ListPublished(ctx context.Context) ([]domain.Result, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Result), args.Error(1)
}

func (m *MockResultService) SetPublished(ctx context.Context, id domain.ResultID, published bool) (domain.Result, error) {
	args := m.Called(ctx, id, published)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *MockResultService) Delete(ctx context.Context, id domain.ResultID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockResultService) PublishedCounts(ctx context.Context, electionID domain.ElectionID) ([]domain.CandidateTally, error) {
	args := m.Called(ctx, electionID)
	return args.Get(0).([]domain.CandidateTally), args.Error(1)
}

type MockRegistryService struct {
	mock.Mock
}

func (m *MockRegistryService) RegisterElection(ctx context.Context, e domain.Election) (domain.Election, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(domain.Election), args.Error(1)
}

func (m *MockRegistryService) RegisterVoter(ctx context.Context, v domain.Voter) (domain.Voter, error) {
	args := m.Called(ctx, v)
	return args.Get(0).(domain.Voter), args.Error(1)
}

func (m *MockRegistryService) RegisterCandidate(ctx context.Context, c domain.Candidate) (domain.Candidate, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.Candidate), args.Error(1)
}

func (m *MockRegistryService) SetCandidateStatus(ctx context.Context, id domain.CandidateID, status domain.CandidateStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockRegistryService) SetVoterStatus(ctx context.Context, id domain.VoterID, status domain.VoterStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockRegistryService) SetElectionStatus(ctx context.Context, id domain.ElectionID, status domain.ElectionStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockRegistryService) ListElections(ctx context.Context) ([]domain.Election, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Election), args.Error(1)
}

func (m *MockRegistryService) ListCandidates(ctx context.Context, electionID domain.ElectionID) ([]domain.Candidate, error) {
	args := m.Called(ctx, electionID)
	return args.Get(0).([]domain.Candidate), args.Error(1)
}

type MockHierarchyService struct {
	mock.Mock
}

func (m *MockHierarchyService) Reload(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockHierarchyService) Children(parentID domain.GeoNodeID, level domain.Level) []domain.GeoNode {
	args := m.Called(parentID, level)
	return args.Get(0).([]domain.GeoNode)
}

// tokensFake resolve tokens fixos para identidades conhecidas.
type tokensFake map[string]domain.Identity

func (f tokensFake) Authenticate(r *http.Request) (domain.Identity, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return domain.Identity{}, auth.ErrMissingToken
	}
	who, ok := f[strings.TrimPrefix(h, "Bearer ")]
	if !ok {
		return domain.Identity{}, auth.ErrInvalidToken
	}
	return who, nil
}
