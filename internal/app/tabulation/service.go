package tabulation

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/ids"
	"github.com/marcelojr/evoto/internal/platform/logger"
	"github.com/marcelojr/evoto/internal/platform/metrics"
)

// tempoMaximoApuracao limita a execução compartilhada, que não herda o cancelamento de quem chamou.
const tempoMaximoApuracao = 2 * time.Minute

// Service grava a apuração como o único resultado da eleição.
type Service struct {
	elections domain.ElectionRepository
	ballots   domain.BallotRepository
	results   domain.ResultRepository
	clock     domain.Clock
	ids       *ids.Generator

	group singleflight.Group
}

func NewService(
	elections domain.ElectionRepository,
	ballots domain.BallotRepository,
	results domain.ResultRepository,
	clock domain.Clock,
	idsGen *ids.Generator,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Service{
		elections: elections,
		ballots:   ballots,
		results:   results,
		clock:     clock,
		ids:       idsGen,
	}
}

// Generate reapura do zero e devolve o resultado em rascunho. Chamadas
// simultâneas para a mesma eleição compartilham a mesma execução; quem desiste
// recebe o erro do próprio contexto sem derrubar os demais.
func (s *Service) Generate(ctx context.Context, electionID domain.ElectionID) (domain.Result, error) {
	if _, err := s.elections.FindByID(ctx, electionID); err != nil {
		return domain.Result{}, fmt.Errorf("eleicao %s: %w", electionID, err)
	}

	ch := s.group.DoChan(string(electionID), func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tempoMaximoApuracao)
		defer cancel()
		return s.generate(runCtx, electionID)
	})

	select {
	case <-ctx.Done():
		return domain.Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Result{}, res.Err
		}
		return res.Val.(domain.Result), nil
	}
}

func (s *Service) generate(ctx context.Context, electionID domain.ElectionID) (domain.Result, error) {
	start := time.Now()

	snap, err := s.ballots.Snapshot(ctx, electionID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("apuracao %s: %w", electionID, err)
	}
	outcome := Tabulate(electionID, snap.Candidates, snap.Counts)

	agora := s.clock.Agora()
	result := domain.Result{
		ID:                domain.ResultID(s.ids.NewAt(agora)),
		ElectionID:        electionID,
		ComputedAt:        agora,
		TotalVotes:        outcome.TotalVotes,
		WinnerCandidateID: outcome.Winner,
		WinningMargin:     outcome.WinningMargin,
		Published:         false,
	}
	if err := result.EncodeTallies(outcome.Tallies); err != nil {
		return domain.Result{}, err
	}

	saved, err := s.results.Upsert(ctx, result)
	if err != nil {
		return domain.Result{}, fmt.Errorf("apuracao %s: %w", electionID, err)
	}

	metrics.ObserveTabulation(time.Since(start).Seconds())
	metrics.IncResultTransition("generated")
	logger.Info("eleicao apurada",
		"election_id", electionID,
		"result_id", saved.ID,
		"total_votes", saved.TotalVotes,
		"margin", saved.WinningMargin,
	)
	return saved, nil
}

var _ domain.TabulationService = (*Service)(nil)
