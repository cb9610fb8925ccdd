// Pacote results controla o ciclo de publicação: rascunho → publicado ⇄ despublicado, e exclusão.
package results

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/logger"
	"github.com/marcelojr/evoto/internal/platform/metrics"
)

type Service struct {
	repo  domain.ResultRepository
	clock domain.Clock
}

func NewService(repo domain.ResultRepository, clock domain.Clock) *Service {
	return &Service{repo: repo, clock: clock}
}

func (s *Service) Publish(ctx context.Context, id domain.ResultID) (domain.Result, error) {
	agora := s.clock.Agora()
	if err := s.repo.SetPublished(ctx, id, true, &agora); err != nil {
		return domain.Result{}, fmt.Errorf("publicar resultado %s: %w", id, err)
	}
	metrics.IncResultTransition("published")
	logger.Info("resultado publicado", "result_id", id)
	return s.repo.FindByID(ctx, id)
}

// Unpublish mantém published_at como a última publicação.
func (s *Service) Unpublish(ctx context.Context, id domain.ResultID) (domain.Result, error) {
	if err := s.repo.SetPublished(ctx, id, false, nil); err != nil {
		return domain.Result{}, fmt.Errorf("despublicar resultado %s: %w", id, err)
	}
	metrics.IncResultTransition("unpublished")
	logger.Info("resultado despublicado", "result_id", id)
	return s.repo.FindByID(ctx, id)
}

func (s *Service) SetPublished(ctx context.Context, id domain.ResultID, published bool) (domain.Result, error) {
	if published {
		return s.Publish(ctx, id)
	}
	return s.Unpublish(ctx, id)
}

// Delete é terminal: depois dele o id responde NotFound.
func (s *Service) Delete(ctx context.Context, id domain.ResultID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("remover resultado %s: %w", id, err)
	}
	metrics.IncResultTransition("deleted")
	logger.Info("resultado removido", "result_id", id)
	return nil
}

// List inclui rascunhos; só para admin.
func (s *Service) List(ctx context.Context) ([]domain.Result, error) {
	return s.repo.List(ctx, false)
}

func (s *Service) ListPublished(ctx context.Context) ([]domain.Result, error) {
	return s.repo.List(ctx, true)
}

// PublishedCounts trata resultado não publicado como inexistente para o eleitor.
func (s *Service) PublishedCounts(ctx context.Context, electionID domain.ElectionID) ([]domain.CandidateTally, error) {
	res, err := s.repo.FindByElection(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("resultado da eleicao %s: %w", electionID, err)
	}
	if !res.Published {
		return nil, fmt.Errorf("resultado da eleicao %s: %w", electionID, domain.ErrNotFound)
	}
	tallies, err := res.DecodeTallies()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("resultado %s corrompido", res.ID), err)
	}
	return tallies, nil
}

var _ domain.ResultService = (*Service)(nil)
