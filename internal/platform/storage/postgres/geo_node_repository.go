package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/evoto/internal/domain"
)

// GeoNodeRepository lê e grava a hierarquia administrativa.
type GeoNodeRepository struct {
	db *gorm.DB
}

func NewGeoNodeRepository(db *gorm.DB) *GeoNodeRepository {
	return &GeoNodeRepository{db: db}
}

func (r *GeoNodeRepository) ListAll(ctx context.Context) ([]domain.GeoNode, error) {
	var nodes []domain.GeoNode
	if err := r.db.WithContext(ctx).
		Order("level ASC").
		Order("name ASC").
		Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("gorm geo_nodes: listar: %w", err)
	}
	return nodes, nil
}

func (r *GeoNodeRepository) Upsert(ctx context.Context, nodes []domain.GeoNode) error {
	if len(nodes) == 0 {
		return nil
	}
	// Reimportar o mesmo arquivo atualiza nome/pai sem duplicar nós.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"level", "name", "parent_id"}),
		}).
		CreateInBatches(nodes, 200).Error; err != nil {
		return fmt.Errorf("gorm geo_nodes: upsert: %w", err)
	}
	return nil
}

var _ domain.GeoNodeRepository = (*GeoNodeRepository)(nil)
