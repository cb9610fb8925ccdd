package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/logger"
)

type completedElections interface {
	ListByStatus(ctx context.Context, status domain.ElectionStatus) ([]domain.Election, error)
}

type resultLookup interface {
	FindByElection(ctx context.Context, electionID domain.ElectionID) (domain.Result, error)
}

// ResultsRefresher reapura periodicamente as eleições encerradas cujo resultado ainda é rascunho.
// Resultados publicados não são tocados: reapurar voltaria o resultado para rascunho.
type ResultsRefresher struct {
	elections  completedElections
	results    resultLookup
	tabulation domain.TabulationService
}

func NewResultsRefresher(elections completedElections, results resultLookup, tabulation domain.TabulationService) *ResultsRefresher {
	return &ResultsRefresher{
		elections:  elections,
		results:    results,
		tabulation: tabulation,
	}
}

// Refresh devolve quantas eleições foram reapuradas. Falha em uma eleição não interrompe as demais.
func (r *ResultsRefresher) Refresh(ctx context.Context) (int, error) {
	eleicoes, err := r.elections.ListByStatus(ctx, domain.ElectionCompleted)
	if err != nil {
		return 0, fmt.Errorf("worker: listar eleicoes encerradas: %w", err)
	}

	var (
		geradas int
		falhas  []error
	)
	for _, e := range eleicoes {
		if ctx.Err() != nil {
			return geradas, ctx.Err()
		}

		atual, err := r.results.FindByElection(ctx, e.ID)
		switch {
		case err == nil && atual.Published:
			continue
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			falhas = append(falhas, fmt.Errorf("eleicao %s: %w", e.ID, err))
			continue
		}

		if _, err := r.tabulation.Generate(ctx, e.ID); err != nil {
			logger.Error("erro ao reapurar eleicao", "err", err, "election_id", e.ID)
			falhas = append(falhas, fmt.Errorf("eleicao %s: %w", e.ID, err))
			continue
		}
		geradas++
	}

	return geradas, errors.Join(falhas...)
}

// Schedule registra Refresh no cron com a expressão informada (aceita descritores como "@every 5m").
func (r *ResultsRefresher) Schedule(ctx context.Context, c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		n, err := r.Refresh(ctx)
		if err != nil {
			logger.Warn("reapuracao agendada com falhas", "err", err, "reapuradas", n)
			return
		}
		logger.Info("reapuracao agendada concluida", "reapuradas", n)
	})
	if err != nil {
		return 0, fmt.Errorf("worker: agendar reapuracao %q: %w", spec, err)
	}
	return id, nil
}
