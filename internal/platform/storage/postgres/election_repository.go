package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/marcelojr/evoto/internal/domain"
)

// ElectionRepository mapeia eleições; escrita só ocorre pelo registro administrativo.
type ElectionRepository struct {
	db *gorm.DB
}

func NewElectionRepository(db *gorm.DB) *ElectionRepository {
	return &ElectionRepository{db: db}
}

func (r *ElectionRepository) Create(ctx context.Context, e domain.Election) error {
	if err := r.db.WithContext(ctx).Create(&e).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("gorm elections: inserir: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("gorm elections: inserir: %w", err)
	}
	return nil
}

func (r *ElectionRepository) FindByID(ctx context.Context, id domain.ElectionID) (domain.Election, error) {
	var e domain.Election
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Election{}, domain.ErrNotFound
		}
		return domain.Election{}, fmt.Errorf("gorm elections: buscar id: %w", err)
	}
	return e, nil
}

func (r *ElectionRepository) List(ctx context.Context) ([]domain.Election, error) {
	var elections []domain.Election
	if err := r.db.WithContext(ctx).
		Order("date ASC").
		Order("id ASC").
		Find(&elections).Error; err != nil {
		return nil, fmt.Errorf("gorm elections: listar: %w", err)
	}
	return elections, nil
}

func (r *ElectionRepository) ListByStatus(ctx context.Context, status domain.ElectionStatus) ([]domain.Election, error) {
	var elections []domain.Election
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("date ASC").
		Order("id ASC").
		Find(&elections).Error; err != nil {
		return nil, fmt.Errorf("gorm elections: listar por status: %w", err)
	}
	return elections, nil
}

func (r *ElectionRepository) UpdateStatus(ctx context.Context, id domain.ElectionID, status domain.ElectionStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Election{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("gorm elections: atualizar status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.ElectionRepository = (*ElectionRepository)(nil)
