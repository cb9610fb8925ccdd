// Pacote registry é a porta de escrita do subsistema administrativo: eleições, eleitores e candidatos.
package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcelojr/evoto/internal/app/hierarchy"
	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/ids"
)

type Service struct {
	elections  domain.ElectionRepository
	voters     domain.VoterRepository
	candidates domain.CandidateRepository
	tree       hierarchy.Source
	ids        *ids.Generator
}

func NewService(
	elections domain.ElectionRepository,
	voters domain.VoterRepository,
	candidates domain.CandidateRepository,
	tree hierarchy.Source,
	idsGen *ids.Generator,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Service{
		elections:  elections,
		voters:     voters,
		candidates: candidates,
		tree:       tree,
		ids:        idsGen,
	}
}

// RegisterElection rejeita alvo cujo nível não bate com o tipo.
func (s *Service) RegisterElection(ctx context.Context, e domain.Election) (domain.Election, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return domain.Election{}, fmt.Errorf("%w: nome obrigatorio", domain.ErrInvalidElection)
	}
	if err := s.tree.Current().ValidateElectionTarget(e); err != nil {
		return domain.Election{}, err
	}
	if !e.ApplicationStart.IsZero() && !e.ApplicationEnd.IsZero() && e.ApplicationEnd.Before(e.ApplicationStart) {
		return domain.Election{}, fmt.Errorf("%w: janela de inscricao invertida", domain.ErrInvalidElection)
	}
	if !e.Date.IsZero() && !e.ResultDate.IsZero() && e.ResultDate.Before(e.Date) {
		return domain.Election{}, fmt.Errorf("%w: resultado antes da votacao", domain.ErrInvalidElection)
	}
	if e.ID == "" {
		e.ID = domain.ElectionID(s.ids.New())
	}
	if e.Status == "" {
		e.Status = domain.ElectionPreparation
	}
	if !validElectionStatus(e.Status) {
		return domain.Election{}, fmt.Errorf("%w: status %q", domain.ErrInvalidElection, e.Status)
	}

	if err := s.elections.Create(ctx, e); err != nil {
		return domain.Election{}, err
	}
	return e, nil
}

// RegisterVoter exige cadeia consistente com a hierarquia carregada.
func (s *Service) RegisterVoter(ctx context.Context, v domain.Voter) (domain.Voter, error) {
	if v.ID == "" {
		v.ID = domain.VoterID(s.ids.New())
	}
	if v.Status == "" {
		v.Status = domain.VoterActive
	}
	if !validVoterStatus(v.Status) {
		return domain.Voter{}, fmt.Errorf("%w: status de eleitor %q", domain.ErrInvalidInput, v.Status)
	}
	if err := s.tree.Current().ValidateVoter(v); err != nil {
		return domain.Voter{}, err
	}
	if err := s.voters.Create(ctx, v); err != nil {
		return domain.Voter{}, err
	}
	return v, nil
}

// RegisterCandidate sempre nasce pendente; aprovação é uma transição separada.
func (s *Service) RegisterCandidate(ctx context.Context, c domain.Candidate) (domain.Candidate, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return domain.Candidate{}, fmt.Errorf("%w: nome do candidato obrigatorio", domain.ErrInvalidInput)
	}
	if _, err := s.elections.FindByID(ctx, c.ElectionID); err != nil {
		return domain.Candidate{}, fmt.Errorf("eleicao %s: %w", c.ElectionID, err)
	}
	if c.ID == "" {
		c.ID = domain.CandidateID(s.ids.New())
	}
	c.Status = domain.CandidatePending

	if err := s.candidates.Create(ctx, c); err != nil {
		return domain.Candidate{}, err
	}
	return c, nil
}

func (s *Service) SetCandidateStatus(ctx context.Context, id domain.CandidateID, status domain.CandidateStatus) error {
	switch status {
	case domain.CandidatePending, domain.CandidateApproved, domain.CandidateRejected:
	default:
		return fmt.Errorf("%w: status de candidato %q", domain.ErrInvalidInput, status)
	}
	return s.candidates.UpdateStatus(ctx, id, status)
}

func (s *Service) SetVoterStatus(ctx context.Context, id domain.VoterID, status domain.VoterStatus) error {
	if !validVoterStatus(status) {
		return fmt.Errorf("%w: status de eleitor %q", domain.ErrInvalidInput, status)
	}
	return s.voters.UpdateStatus(ctx, id, status)
}

func (s *Service) SetElectionStatus(ctx context.Context, id domain.ElectionID, status domain.ElectionStatus) error {
	if !validElectionStatus(status) {
		return fmt.Errorf("%w: status %q", domain.ErrInvalidElection, status)
	}
	return s.elections.UpdateStatus(ctx, id, status)
}

func (s *Service) ListElections(ctx context.Context) ([]domain.Election, error) {
	return s.elections.List(ctx)
}

func (s *Service) ListCandidates(ctx context.Context, electionID domain.ElectionID) ([]domain.Candidate, error) {
	if _, err := s.elections.FindByID(ctx, electionID); err != nil {
		return nil, fmt.Errorf("eleicao %s: %w", electionID, err)
	}
	return s.candidates.ListByElection(ctx, electionID)
}

func validVoterStatus(s domain.VoterStatus) bool {
	return s == domain.VoterActive || s == domain.VoterInactive
}

func validElectionStatus(s domain.ElectionStatus) bool {
	switch s {
	case domain.ElectionPreparation, domain.ElectionScheduled, domain.ElectionActive, domain.ElectionCompleted:
		return true
	}
	return false
}

var _ domain.RegistryService = (*Service)(nil)
