// Pacote voting implementa o ledger de cédulas: registro do voto com todas as
// pré-condições, contagem crua e a listagem de eleições do eleitor.
package voting

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/marcelojr/evoto/internal/app/eligibility"
	"github.com/marcelojr/evoto/internal/app/hierarchy"
	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/ids"
	"github.com/marcelojr/evoto/internal/platform/logger"
	"github.com/marcelojr/evoto/internal/platform/metrics"
)

// Service concentra as regras de votação e delega persistência, fila e contadores.
type Service struct {
	elections  domain.ElectionRepository
	voters     domain.VoterRepository
	candidates domain.CandidateRepository
	ballots    domain.BallotRepository
	contador   domain.Contador
	fila       domain.Fila
	antifraude domain.Antifraude
	tree       hierarchy.Source
	clock      domain.Clock
	ids        *ids.Generator
}

// Deps agrupa as dependências; Contador, Fila e Antifraude são opcionais.
type Deps struct {
	Elections  domain.ElectionRepository
	Voters     domain.VoterRepository
	Candidates domain.CandidateRepository
	Ballots    domain.BallotRepository
	Contador   domain.Contador
	Fila       domain.Fila
	Antifraude domain.Antifraude
	Tree       hierarchy.Source
	Clock      domain.Clock
	IDs        *ids.Generator
}

func NewService(d Deps) *Service {
	if d.IDs == nil {
		d.IDs = ids.DefaultGenerator()
	}
	return &Service{
		elections:  d.Elections,
		voters:     d.Voters,
		candidates: d.Candidates,
		ballots:    d.Ballots,
		contador:   d.Contador,
		fila:       d.Fila,
		antifraude: d.Antifraude,
		tree:       d.Tree,
		clock:      d.Clock,
		ids:        d.IDs,
	}
}

// CastVote grava no máximo uma cédula por (eleição, eleitor). A checagem de
// duplicidade fica no índice único do banco; nada é escrito se alguma regra falhar.
func (s *Service) CastVote(ctx context.Context, who domain.Identity, electionID domain.ElectionID, candidateID domain.CandidateID) (ballot domain.Ballot, err error) {
	defer func() {
		err = s.registrarRecusa(ctx, electionID, who.VoterID, err)
		metrics.ObserveVoteRequest(statusLabel(err))
	}()

	if who.VoterID == "" {
		return domain.Ballot{}, fmt.Errorf("%w: identidade sem eleitor", domain.ErrIneligible)
	}

	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		return domain.Ballot{}, fmt.Errorf("eleicao %s: %w", electionID, err)
	}
	if election.Status != domain.ElectionActive {
		return domain.Ballot{}, fmt.Errorf("%w: eleicao %s em %s", domain.ErrElectionNotActive, electionID, election.Status)
	}

	voter, err := s.voters.FindByID(ctx, who.VoterID)
	if err != nil {
		return domain.Ballot{}, fmt.Errorf("eleitor %s: %w", who.VoterID, err)
	}

	if err := s.tree.Current().ValidateVoter(voter); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Ballot{}, fmt.Errorf("%w: %v", domain.ErrInconsistentHierarchy, err)
		}
		return domain.Ballot{}, err
	}

	if !eligibility.IsEligible(voter, election) {
		return domain.Ballot{}, fmt.Errorf("%w: eleitor %s, eleicao %s", domain.ErrIneligible, voter.ID, electionID)
	}

	candidate, err := s.candidates.FindByID(ctx, candidateID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.Ballot{}, fmt.Errorf("%w: candidato %s inexistente", domain.ErrInvalidCandidate, candidateID)
	case err != nil:
		return domain.Ballot{}, err
	case candidate.ElectionID != electionID:
		return domain.Ballot{}, fmt.Errorf("%w: candidato %s nao pertence a eleicao %s", domain.ErrInvalidCandidate, candidateID, electionID)
	case candidate.Status != domain.CandidateApproved:
		return domain.Ballot{}, fmt.Errorf("%w: candidato %s com status %s", domain.ErrInvalidCandidate, candidateID, candidate.Status)
	}

	agora := s.clock.Agora()
	ballot = domain.Ballot{
		ID:          domain.BallotID(s.ids.NewAt(agora)),
		ElectionID:  electionID,
		VoterID:     voter.ID,
		CandidateID: candidateID,
		CastAt:      agora,
	}
	if err := s.ballots.Insert(ctx, ballot); err != nil {
		return domain.Ballot{}, err
	}

	if s.fila != nil {
		// A cédula já está gravada; a fila só alimenta as parciais ao vivo.
		evento := domain.BallotCast{
			BallotID:    ballot.ID,
			ElectionID:  ballot.ElectionID,
			CandidateID: ballot.CandidateID,
			CastAt:      ballot.CastAt,
		}
		if pubErr := s.fila.Publicar(ctx, evento); pubErr != nil {
			logger.Warn("falha ao publicar evento de cedula", "ballot_id", ballot.ID, "err", pubErr)
		}
	}

	return ballot, nil
}

// registrarRecusa passa pelo limitador só as tentativas recusadas por regra.
// Voto gravado e voto duplicado não contam: quem perde a corrida pelo índice
// único sempre recebe DuplicateVote.
func (s *Service) registrarRecusa(ctx context.Context, electionID domain.ElectionID, voterID domain.VoterID, causa error) error {
	if causa == nil || s.antifraude == nil || voterID == "" {
		return causa
	}
	switch domain.Kind(causa) {
	case "DuplicateVote", "Internal":
		return causa
	}

	err := s.antifraude.Validar(ctx, electionID, voterID)
	switch {
	case err == nil:
		return causa
	case errors.Is(err, domain.ErrRateLimited):
		return fmt.Errorf("%w (ultima recusa: %v)", err, causa)
	default:
		logger.Warn("falha no limitador de tentativas", "election_id", electionID, "err", err)
		return causa
	}
}

// CountFor lê o ledger; candidatos sem votos aparecem com zero, ordenados por id.
func (s *Service) CountFor(ctx context.Context, electionID domain.ElectionID) ([]domain.CandidateCount, error) {
	if _, err := s.elections.FindByID(ctx, electionID); err != nil {
		return nil, fmt.Errorf("eleicao %s: %w", electionID, err)
	}

	candidates, err := s.candidates.ListByElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	counts, err := s.ballots.CountByCandidate(ctx, electionID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.CandidateCount, 0, len(candidates))
	vistos := make(map[domain.CandidateID]bool, len(candidates))
	for _, c := range candidates {
		vistos[c.ID] = true
		out = append(out, domain.CandidateCount{CandidateID: c.ID, Count: counts[c.ID]})
	}
	for id, n := range counts {
		if !vistos[id] {
			out = append(out, domain.CandidateCount{CandidateID: id, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CandidateID < out[j].CandidateID })
	return out, nil
}

// ElectionsFor aplica o mesmo predicado de elegibilidade usado em CastVote.
func (s *Service) ElectionsFor(ctx context.Context, who domain.Identity) ([]domain.Election, error) {
	elections, err := s.elections.List(ctx)
	if err != nil {
		return nil, err
	}
	if who.Admin {
		return elections, nil
	}

	voter, err := s.voters.FindByID(ctx, who.VoterID)
	if err != nil {
		return nil, fmt.Errorf("eleitor %s: %w", who.VoterID, err)
	}
	return eligibility.Filter(voter, elections), nil
}

// Turnout lê os contadores mantidos pelo worker, que podem ficar atrás do ledger,
// e o total gravado no ledger para comparação.
func (s *Service) Turnout(ctx context.Context, electionID domain.ElectionID) (domain.Turnout, error) {
	if _, err := s.elections.FindByID(ctx, electionID); err != nil {
		return domain.Turnout{}, fmt.Errorf("eleicao %s: %w", electionID, err)
	}
	registradas, err := s.ballots.TotalByElection(ctx, electionID)
	if err != nil {
		return domain.Turnout{}, err
	}
	turnout := domain.Turnout{ElectionID: electionID, PorCandidato: map[domain.CandidateID]int64{}, Ledger: registradas}
	if s.contador == nil {
		return turnout, nil
	}

	candidates, err := s.candidates.ListByElection(ctx, electionID)
	if err != nil {
		return domain.Turnout{}, err
	}

	chaves := make([]string, 0, len(candidates)+1)
	chaves = append(chaves, CounterKeyTotalEleicao(electionID))
	for _, c := range candidates {
		chaves = append(chaves, CounterKeyCandidato(electionID, c.ID))
	}

	valores, err := s.contador.ObterTodos(ctx, chaves)
	if err != nil {
		return domain.Turnout{}, err
	}

	turnout.Total = valores[CounterKeyTotalEleicao(electionID)]
	for _, c := range candidates {
		turnout.PorCandidato[c.ID] = valores[CounterKeyCandidato(electionID, c.ID)]
	}
	return turnout, nil
}

func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.Kind(err)
}

var _ domain.VotingService = (*Service)(nil)
