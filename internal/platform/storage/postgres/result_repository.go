package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/evoto/internal/domain"
)

// ResultRepository guarda um resultado por eleição e o seu estado de publicação.
type ResultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Upsert recalcula os números do resultado existente; published_at guarda a última publicação.
func (r *ResultRepository) Upsert(ctx context.Context, res domain.Result) (domain.Result, error) {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "election_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"computed_at",
				"total_votes",
				"winner_candidate_id",
				"winning_margin",
				"published",
				"tallies",
			}),
		}).
		Create(&res).Error; err != nil {
		return domain.Result{}, fmt.Errorf("gorm results: upsert: %w", err)
	}
	return r.FindByElection(ctx, res.ElectionID)
}

func (r *ResultRepository) FindByID(ctx context.Context, id domain.ResultID) (domain.Result, error) {
	var res domain.Result
	if err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Result{}, domain.ErrNotFound
		}
		return domain.Result{}, fmt.Errorf("gorm results: buscar id: %w", err)
	}
	return res, nil
}

func (r *ResultRepository) FindByElection(ctx context.Context, electionID domain.ElectionID) (domain.Result, error) {
	var res domain.Result
	if err := r.db.WithContext(ctx).First(&res, "election_id = ?", electionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Result{}, domain.ErrNotFound
		}
		return domain.Result{}, fmt.Errorf("gorm results: buscar eleicao: %w", err)
	}
	return res, nil
}

func (r *ResultRepository) List(ctx context.Context, onlyPublished bool) ([]domain.Result, error) {
	query := r.db.WithContext(ctx).Model(&domain.Result{})
	if onlyPublished {
		query = query.Where("published = ?", true)
	}
	var results []domain.Result
	if err := query.Order("computed_at DESC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("gorm results: listar: %w", err)
	}
	return results, nil
}

func (r *ResultRepository) SetPublished(ctx context.Context, id domain.ResultID, published bool, at *time.Time) error {
	campos := map[string]any{"published": published}
	if at != nil {
		campos["published_at"] = *at
	}
	res := r.db.WithContext(ctx).
		Model(&domain.Result{}).
		Where("id = ?", id).
		Updates(campos)
	if res.Error != nil {
		return fmt.Errorf("gorm results: atualizar publicacao: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ResultRepository) Delete(ctx context.Context, id domain.ResultID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Result{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("gorm results: remover: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.ResultRepository = (*ResultRepository)(nil)
