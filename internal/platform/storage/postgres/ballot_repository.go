package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"github.com/marcelojr/evoto/internal/domain"
)

// BallotRepository é o livro de cédulas: só insere e agrega, nunca atualiza ou remove.
type BallotRepository struct {
	db *gorm.DB
}

func NewBallotRepository(db *gorm.DB) *BallotRepository {
	return &BallotRepository{db: db}
}

// Insert é um único INSERT; a unicidade (election_id, voter_id) é decidida pelo índice do banco,
// então de duas requisições concorrentes exatamente uma recebe ErrDuplicateVote.
func (r *BallotRepository) Insert(ctx context.Context, b domain.Ballot) error {
	if err := r.db.WithContext(ctx).Create(&b).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateVote
		}
		return fmt.Errorf("gorm ballots: inserir: %w", err)
	}
	return nil
}

func (r *BallotRepository) TotalByElection(ctx context.Context, electionID domain.ElectionID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Ballot{}).
		Where("election_id = ?", electionID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gorm ballots: total eleicao: %w", err)
	}
	return total, nil
}

func (r *BallotRepository) CountByCandidate(ctx context.Context, electionID domain.ElectionID) (map[domain.CandidateID]int64, error) {
	return countByCandidate(r.db.WithContext(ctx), electionID)
}

// Snapshot lê candidatos e contagens na mesma transação para a apuração não ver um estado rasgado.
func (r *BallotRepository) Snapshot(ctx context.Context, electionID domain.ElectionID) (domain.TallySnapshot, error) {
	var snap domain.TallySnapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("election_id = ?", electionID).
			Order("id ASC").
			Find(&snap.Candidates).Error; err != nil {
			return fmt.Errorf("gorm ballots: snapshot candidatos: %w", err)
		}
		counts, err := countByCandidate(tx, electionID)
		if err != nil {
			return err
		}
		snap.Counts = counts
		return nil
	}, snapshotTxOptions(r.db))
	if err != nil {
		return domain.TallySnapshot{}, err
	}
	return snap, nil
}

func countByCandidate(db *gorm.DB, electionID domain.ElectionID) (map[domain.CandidateID]int64, error) {
	type resultado struct {
		CandidateID string
		Total       int64
	}
	var res []resultado
	if err := db.
		Model(&domain.Ballot{}).
		Select("candidate_id AS candidate_id, COUNT(*) AS total").
		Where("election_id = ?", electionID).
		Group("candidate_id").
		Scan(&res).Error; err != nil {
		return nil, fmt.Errorf("gorm ballots: total por candidato: %w", err)
	}

	totais := make(map[domain.CandidateID]int64, len(res))
	for _, item := range res {
		totais[domain.CandidateID(item.CandidateID)] = item.Total
	}
	return totais, nil
}

// SQLite já serializa transações e recusa níveis de isolamento explícitos.
func snapshotTxOptions(db *gorm.DB) *sql.TxOptions {
	if db.Dialector.Name() == "postgres" {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}

var _ domain.BallotRepository = (*BallotRepository)(nil)
