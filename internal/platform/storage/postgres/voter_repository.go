package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/marcelojr/evoto/internal/domain"
)

// VoterRepository persiste eleitores; exclusão é sempre lógica (deleted_at).
type VoterRepository struct {
	db *gorm.DB
}

func NewVoterRepository(db *gorm.DB) *VoterRepository {
	return &VoterRepository{db: db}
}

func (r *VoterRepository) Create(ctx context.Context, v domain.Voter) error {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("gorm voters: inserir: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("gorm voters: inserir: %w", err)
	}
	return nil
}

func (r *VoterRepository) FindByID(ctx context.Context, id domain.VoterID) (domain.Voter, error) {
	var v domain.Voter
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Voter{}, domain.ErrNotFound
		}
		return domain.Voter{}, fmt.Errorf("gorm voters: buscar id: %w", err)
	}
	return v, nil
}

func (r *VoterRepository) UpdateStatus(ctx context.Context, id domain.VoterID, status domain.VoterStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Voter{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("gorm voters: atualizar status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.VoterRepository = (*VoterRepository)(nil)
