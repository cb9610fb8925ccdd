package domain

import (
	"context"
	"time"
)

type GeoNodeRepository interface {
	ListAll(ctx context.Context) ([]GeoNode, error)
	Upsert(ctx context.Context, nodes []GeoNode) error
}

type VoterRepository interface {
	Create(ctx context.Context, v Voter) error
	FindByID(ctx context.Context, id VoterID) (Voter, error)
	UpdateStatus(ctx context.Context, id VoterID, status VoterStatus) error
}

type CandidateRepository interface {
	Create(ctx context.Context, c Candidate) error
	FindByID(ctx context.Context, id CandidateID) (Candidate, error)
	ListByElection(ctx context.Context, electionID ElectionID) ([]Candidate, error)
	UpdateStatus(ctx context.Context, id CandidateID, status CandidateStatus) error
}

type ElectionRepository interface {
	Create(ctx context.Context, e Election) error
	FindByID(ctx context.Context, id ElectionID) (Election, error)
	List(ctx context.Context) ([]Election, error)
	ListByStatus(ctx context.Context, status ElectionStatus) ([]Election, error)
	UpdateStatus(ctx context.Context, id ElectionID, status ElectionStatus) error
}

// TallySnapshot reúne candidatos e contagens lidos no mesmo instante.
type TallySnapshot struct {
	Candidates []Candidate
	Counts     map[CandidateID]int64
}

type BallotRepository interface {
	// Insert devolve ErrDuplicateVote quando (election_id, voter_id) já existe.
	Insert(ctx context.Context, b Ballot) error
	CountByCandidate(ctx context.Context, electionID ElectionID) (map[CandidateID]int64, error)
	TotalByElection(ctx context.Context, electionID ElectionID) (int64, error)
	Snapshot(ctx context.Context, electionID ElectionID) (TallySnapshot, error)
}

type ResultRepository interface {
	// Upsert mantém um único resultado por eleição.
	Upsert(ctx context.Context, r Result) (Result, error)
	FindByID(ctx context.Context, id ResultID) (Result, error)
	FindByElection(ctx context.Context, electionID ElectionID) (Result, error)
	List(ctx context.Context, onlyPublished bool) ([]Result, error)
	SetPublished(ctx context.Context, id ResultID, published bool, at *time.Time) error
	Delete(ctx context.Context, id ResultID) error
}

type Contador interface {
	Incrementar(ctx context.Context, chave string, delta int64) (int64, error)
	IncrementarLote(ctx context.Context, chaves []string, delta int64) error
	Obter(ctx context.Context, chave string) (int64, error)
	ObterTodos(ctx context.Context, chaves []string) (map[string]int64, error)
}

type Fila interface {
	Publicar(ctx context.Context, evento BallotCast) error
	Consumir(ctx context.Context, handler func(context.Context, BallotCast) error) error
}

type Antifraude interface {
	Validar(ctx context.Context, electionID ElectionID, voterID VoterID) error
}

type Clock interface {
	Agora() time.Time
}

type VotingService interface {
	CastVote(ctx context.Context, who Identity, electionID ElectionID, candidateID CandidateID) (Ballot, error)
	CountFor(ctx context.Context, electionID ElectionID) ([]CandidateCount, error)
	ElectionsFor(ctx context.Context, who Identity) ([]Election, error)
	Turnout(ctx context.Context, electionID ElectionID) (Turnout, error)
}

type TabulationService interface {
	Generate(ctx context.Context, electionID ElectionID) (Result, error)
}

type ResultService interface {
	List(ctx context.Context) ([]Result, error)
	ListPublished(ctx context.Context) ([]Result, error)
	SetPublished(ctx context.Context, id ResultID, published bool) (Result, error)
	Delete(ctx context.Context, id ResultID) error
	PublishedCounts(ctx context.Context, electionID ElectionID) ([]CandidateTally, error)
}

type RegistryService interface {
	RegisterElection(ctx context.Context, e Election) (Election, error)
	RegisterVoter(ctx context.Context, v Voter) (Voter, error)
	RegisterCandidate(ctx context.Context, c Candidate) (Candidate, error)
	SetCandidateStatus(ctx context.Context, id CandidateID, status CandidateStatus) error
	SetVoterStatus(ctx context.Context, id VoterID, status VoterStatus) error
	SetElectionStatus(ctx context.Context, id ElectionID, status ElectionStatus) error
	ListElections(ctx context.Context) ([]Election, error)
	ListCandidates(ctx context.Context, electionID ElectionID) ([]Candidate, error)
}

type HierarchyService interface {
	Reload(ctx context.Context) error
	Children(parentID GeoNodeID, level Level) []GeoNode
}

// Turnout é a leitura dos contadores ao vivo mantidos pelo worker.
// Turnout mistura os contadores ao vivo (Total, PorCandidato) com o total do ledger.
type Turnout struct {
	ElectionID   ElectionID            `json:"election_id"`
	Total        int64                 `json:"total"`
	PorCandidato map[CandidateID]int64 `json:"por_candidato"`
	Ledger       int64                 `json:"ledger"`
}
