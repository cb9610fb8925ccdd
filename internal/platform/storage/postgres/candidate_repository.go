package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/marcelojr/evoto/internal/domain"
)

// CandidateRepository persiste candidatos vinculados a uma eleição.
type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

func (r *CandidateRepository) Create(ctx context.Context, c domain.Candidate) error {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("gorm candidates: inserir: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("gorm candidates: inserir: %w", err)
	}
	return nil
}

func (r *CandidateRepository) FindByID(ctx context.Context, id domain.CandidateID) (domain.Candidate, error) {
	var c domain.Candidate
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Candidate{}, domain.ErrNotFound
		}
		return domain.Candidate{}, fmt.Errorf("gorm candidates: buscar id: %w", err)
	}
	return c, nil
}

func (r *CandidateRepository) ListByElection(ctx context.Context, electionID domain.ElectionID) ([]domain.Candidate, error) {
	var candidates []domain.Candidate
	if err := r.db.WithContext(ctx).
		// Ordem por id mantém a apuração e o desempate determinísticos.
		Where("election_id = ?", electionID).
		Order("id ASC").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("gorm candidates: listar: %w", err)
	}
	return candidates, nil
}

func (r *CandidateRepository) UpdateStatus(ctx context.Context, id domain.CandidateID, status domain.CandidateStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("gorm candidates: atualizar status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.CandidateRepository = (*CandidateRepository)(nil)
