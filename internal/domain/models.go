package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type (
	GeoNodeID   string
	VoterID     string
	CandidateID string
	ElectionID  string
	BallotID    string
	ResultID    string
)

// Level identifica o nível administrativo de um GeoNode.
type Level string

const (
	LevelState       Level = "State"
	LevelDistrict    Level = "District"
	LevelLokSabha    Level = "LokSabha"
	LevelVidhanSabha Level = "VidhanSabha"
	LevelLocalBody   Level = "LocalBody"
	LevelWard        Level = "Ward"
	LevelBooth       Level = "Booth"
)

// Levels lista os níveis na ordem de senioridade.
var Levels = []Level{
	LevelState,
	LevelDistrict,
	LevelLokSabha,
	LevelVidhanSabha,
	LevelLocalBody,
	LevelWard,
	LevelBooth,
}

// ParentLevel devolve o nível exigido do pai; State não tem pai.
func (l Level) ParentLevel() (Level, bool) {
	switch l {
	case LevelDistrict, LevelLokSabha:
		return LevelState, true
	case LevelVidhanSabha, LevelLocalBody:
		return LevelDistrict, true
	case LevelWard:
		return LevelLocalBody, true
	case LevelBooth:
		return LevelWard, true
	default:
		return "", false
	}
}

func (l Level) Valid() bool {
	for _, known := range Levels {
		if l == known {
			return true
		}
	}
	return false
}

type VoterStatus string

const (
	VoterActive   VoterStatus = "active"
	VoterInactive VoterStatus = "inactive"
)

type CandidateStatus string

const (
	CandidatePending  CandidateStatus = "pending"
	CandidateApproved CandidateStatus = "approved"
	CandidateRejected CandidateStatus = "rejected"
)

type ElectionType string

const (
	ElectionLokSabha    ElectionType = "LokSabha"
	ElectionVidhanSabha ElectionType = "VidhanSabha"
	ElectionLocalBody   ElectionType = "LocalBody"
	ElectionPanchayat   ElectionType = "Panchayat"
)

// TargetLevel devolve o nível de GeoNode ao qual uma eleição desse tipo se restringe.
func (t ElectionType) TargetLevel() (Level, bool) {
	switch t {
	case ElectionLokSabha:
		return LevelLokSabha, true
	case ElectionVidhanSabha:
		return LevelVidhanSabha, true
	case ElectionLocalBody, ElectionPanchayat:
		return LevelLocalBody, true
	default:
		return "", false
	}
}

type ElectionStatus string

const (
	ElectionPreparation ElectionStatus = "Preparation"
	ElectionScheduled   ElectionStatus = "Scheduled"
	ElectionActive      ElectionStatus = "Active"
	ElectionCompleted   ElectionStatus = "Completed"
)

type GeoNode struct {
	ID       GeoNodeID  `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	Level    Level      `gorm:"column:level;type:varchar(16);not null;index:idx_geo_nodes_parent_level,priority:2" json:"level"`
	Name     string     `gorm:"column:name;type:text;not null" json:"name"`
	ParentID *GeoNodeID `gorm:"column:parent_id;type:varchar(64);index:idx_geo_nodes_parent_level,priority:1" json:"parent_id,omitempty"`
}

type Voter struct {
	ID            VoterID        `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	Name          string         `gorm:"column:name;type:text" json:"name"`
	Email         string         `gorm:"column:email;type:text;index" json:"email"`
	BoothID       GeoNodeID      `gorm:"column:booth_id;type:varchar(64)" json:"booth_id"`
	WardID        GeoNodeID      `gorm:"column:ward_id;type:varchar(64)" json:"ward_id"`
	LocalBodyID   GeoNodeID      `gorm:"column:local_body_id;type:varchar(64);index" json:"local_body_id"`
	DistrictID    GeoNodeID      `gorm:"column:district_id;type:varchar(64)" json:"district_id"`
	StateID       GeoNodeID      `gorm:"column:state_id;type:varchar(64)" json:"state_id"`
	LokSabhaID    GeoNodeID      `gorm:"column:loksabha_id;type:varchar(64);index" json:"loksabha_id"`
	VidhanSabhaID GeoNodeID      `gorm:"column:vidhansabha_id;type:varchar(64);index" json:"vidhansabha_id"`
	Status        VoterStatus    `gorm:"column:status;type:varchar(16);not null;default:active" json:"status"`
	CriadoEm      time.Time      `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
	AtualizadoEm  time.Time      `gorm:"column:atualizado_em;autoUpdateTime" json:"atualizado_em"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

type Candidate struct {
	ID           CandidateID     `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	ElectionID   ElectionID      `gorm:"column:election_id;type:varchar(64);not null;index" json:"election_id"`
	Name         string          `gorm:"column:name;type:text;not null" json:"name"`
	Party        string          `gorm:"column:party;type:text" json:"party"`
	Status       CandidateStatus `gorm:"column:status;type:varchar(16);not null;default:pending" json:"status"`
	CriadoEm     time.Time       `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
	AtualizadoEm time.Time       `gorm:"column:atualizado_em;autoUpdateTime" json:"atualizado_em"`
}

type Election struct {
	ID               ElectionID     `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	Name             string         `gorm:"column:name;type:text;not null" json:"name"`
	Type             ElectionType   `gorm:"column:type;type:varchar(16);not null" json:"type"`
	TargetNodeID     GeoNodeID      `gorm:"column:target_node_id;type:varchar(64);not null;index" json:"target_node_id"`
	Date             time.Time      `gorm:"column:date" json:"date"`
	ApplicationStart time.Time      `gorm:"column:application_start" json:"application_start"`
	ApplicationEnd   time.Time      `gorm:"column:application_end" json:"application_end"`
	ResultDate       time.Time      `gorm:"column:result_date" json:"result_date"`
	Status           ElectionStatus `gorm:"column:status;type:varchar(16);not null;default:Preparation;index" json:"status"`
	CriadoEm         time.Time      `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
	AtualizadoEm     time.Time      `gorm:"column:atualizado_em;autoUpdateTime" json:"atualizado_em"`
}

// Ballot é append-only; o índice único (election_id, voter_id) garante um voto por eleitor.
type Ballot struct {
	ID          BallotID    `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	ElectionID  ElectionID  `gorm:"column:election_id;type:varchar(64);not null;uniqueIndex:idx_ballots_election_voter,priority:1" json:"election_id"`
	VoterID     VoterID     `gorm:"column:voter_id;type:varchar(64);not null;uniqueIndex:idx_ballots_election_voter,priority:2" json:"voter_id"`
	CandidateID CandidateID `gorm:"column:candidate_id;type:varchar(64);not null;index" json:"candidate_id"`
	CastAt      time.Time   `gorm:"column:cast_at;not null" json:"cast_at"`
}

type Result struct {
	ID                ResultID       `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	ElectionID        ElectionID     `gorm:"column:election_id;type:varchar(64);not null;uniqueIndex" json:"election_id"`
	ComputedAt        time.Time      `gorm:"column:computed_at;not null" json:"computed_at"`
	TotalVotes        int64          `gorm:"column:total_votes;not null" json:"total_votes"`
	WinnerCandidateID *CandidateID   `gorm:"column:winner_candidate_id;type:varchar(64)" json:"winner_candidate_id"`
	WinningMargin     int64          `gorm:"column:winning_margin;not null" json:"winning_margin"`
	Published         bool           `gorm:"column:published;not null;default:false" json:"published"`
	PublishedAt       *time.Time     `gorm:"column:published_at" json:"published_at,omitempty"`
	Tallies           datatypes.JSON `gorm:"column:tallies;type:jsonb" json:"-"`
}

// CandidateTally é a linha por candidato de um resultado.
type CandidateTally struct {
	CandidateID CandidateID     `json:"candidate_id"`
	Name        string          `json:"name"`
	Party       string          `json:"party"`
	Status      CandidateStatus `json:"status"`
	Votes       int64           `json:"votes"`
	Percentage  float64         `json:"percentage"`
}

// CandidateCount é a leitura crua do ledger por candidato.
type CandidateCount struct {
	CandidateID CandidateID `json:"candidate_id"`
	Count       int64       `json:"count"`
}

// BallotCast é o evento publicado na fila depois que um voto é gravado.
type BallotCast struct {
	BallotID    BallotID    `json:"ballot_id"`
	ElectionID  ElectionID  `json:"election_id"`
	CandidateID CandidateID `json:"candidate_id"`
	CastAt      time.Time   `json:"cast_at"`
}

// Identity é a identidade autenticada da requisição.
type Identity struct {
	Subject string
	VoterID VoterID
	Admin   bool
}

func (GeoNode) TableName() string { return "geo_nodes" }

func (Voter) TableName() string { return "voters" }

func (Candidate) TableName() string { return "candidates" }

func (Election) TableName() string { return "elections" }

func (Ballot) TableName() string { return "ballots" }

func (Result) TableName() string { return "results" }
