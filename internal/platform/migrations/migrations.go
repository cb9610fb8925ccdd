// Pacote migrations centraliza as versões gormigrate aplicadas na inicialização.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/marcelojr/evoto/internal/domain"
)

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			// Tabelas de referência mantidas pelo subsistema administrativo.
			ID: "202501150001_hierarquia_e_cadastro",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.GeoNode{}, &domain.Voter{}, &domain.Election{}, &domain.Candidate{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("candidates", "elections", "voters", "geo_nodes")
			},
		},
		{
			// Cédulas e resultados pertencem ao núcleo; o índice único (election_id, voter_id) nasce aqui.
			ID: "202501150002_cedulas_e_resultados",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.Ballot{}, &domain.Result{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("results", "ballots")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: falha ao aplicar: %w", err)
	}

	return nil
}
