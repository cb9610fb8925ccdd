package voting

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/marcelojr/evoto/internal/app/hierarchy"
	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/clock"
	"github.com/marcelojr/evoto/internal/platform/ids"
)

type memElectionRepo struct {
	mu    sync.Mutex
	items map[domain.ElectionID]domain.Election
}

func (r *memElectionRepo) Create(_ context.Context, e domain.Election) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[e.ID] = e
	return nil
}

func (r *memElectionRepo) FindByID(_ context.Context, id domain.ElectionID) (domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return domain.Election{}, domain.ErrNotFound
	}
	return e, nil
}

func (r *memElectionRepo) List(context.Context) ([]domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Election, 0, len(r.items))
	for _, e := range r.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memElectionRepo) ListByStatus(ctx context.Context, status domain.ElectionStatus) ([]domain.Election, error) {
	all, _ := r.List(ctx)
	var out []domain.Election
	for _, e := range all {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memElectionRepo) UpdateStatus(_ context.Context, id domain.ElectionID, status domain.ElectionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = status
	r.items[id] = e
	return nil
}

type memVoterRepo struct {
	mu    sync.Mutex
	items map[domain.VoterID]domain.Voter
}

func (r *memVoterRepo) Create(_ context.Context, v domain.Voter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[v.ID] = v
	return nil
}

func (r *memVoterRepo) FindByID(_ context.Context, id domain.VoterID) (domain.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	if !ok {
		return domain.Voter{}, domain.ErrNotFound
	}
	return v, nil
}

func (r *memVoterRepo) UpdateStatus(_ context.Context, id domain.VoterID, status domain.VoterStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Status = status
	r.items[id] = v
	return nil
}

type memCandidateRepo struct {
	mu    sync.Mutex
	items map[domain.CandidateID]domain.Candidate
}

func (r *memCandidateRepo) Create(_ context.Context, c domain.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = c
	return nil
}

func (r *memCandidateRepo) FindByID(_ context.Context, id domain.CandidateID) (domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return domain.Candidate{}, domain.ErrNotFound
	}
	return c, nil
}

func (r *memCandidateRepo) ListByElection(_ context.Context, electionID domain.ElectionID) ([]domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Candidate
	for _, c := range r.items {
		if c.ElectionID == electionID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCandidateRepo) UpdateStatus(_ context.Context, id domain.CandidateID, status domain.CandidateStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	r.items[id] = c
	return nil
}

// memBallotRepo imita o índice único (election_id, voter_id) com um mutex.
type memBallotRepo struct {
	mu    sync.Mutex
	lista []domain.Ballot
	chave map[[2]string]bool
}

func (r *memBallotRepo) Insert(_ context.Context, b domain.Ballot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := [2]string{string(b.ElectionID), string(b.VoterID)}
	if r.chave[k] {
		return domain.ErrDuplicateVote
	}
	r.chave[k] = true
	r.lista = append(r.lista, b)
	return nil
}

func (r *memBallotRepo) CountByCandidate(_ context.Context, electionID domain.ElectionID) (map[domain.CandidateID]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.CandidateID]int64{}
	for _, b := range r.lista {
		if b.ElectionID == electionID {
			out[b.CandidateID]++
		}
	}
	return out, nil
}

func (r *memBallotRepo) TotalByElection(ctx context.Context, electionID domain.ElectionID) (int64, error) {
	counts, _ := r.CountByCandidate(ctx, electionID)
	var total int64
	for _, n := range counts {
		total += n
	}
	return total, nil
}

func (r *memBallotRepo) Snapshot(ctx context.Context, electionID domain.ElectionID) (domain.TallySnapshot, error) {
	counts, _ := r.CountByCandidate(ctx, electionID)
	return domain.TallySnapshot{Counts: counts}, nil
}

func (r *memBallotRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lista)
}

type recordingQueue struct {
	mu      sync.Mutex
	eventos []domain.BallotCast
	err     error
}

func (q *recordingQueue) Publicar(_ context.Context, ev domain.BallotCast) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.eventos = append(q.eventos, ev)
	return nil
}

func (q *recordingQueue) Consumir(context.Context, func(context.Context, domain.BallotCast) error) error {
	return nil
}

func (q *recordingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.eventos)
}

type memContador struct {
	mu      sync.Mutex
	valores map[string]int64
}

func (c *memContador) Incrementar(_ context.Context, chave string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valores[chave] += delta
	return c.valores[chave], nil
}

func (c *memContador) IncrementarLote(ctx context.Context, chaves []string, delta int64) error {
	for _, ch := range chaves {
		_, _ = c.Incrementar(ctx, ch, delta)
	}
	return nil
}

func (c *memContador) Obter(_ context.Context, chave string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valores[chave], nil
}

func (c *memContador) ObterTodos(_ context.Context, chaves []string) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(chaves))
	for _, ch := range chaves {
		out[ch] = c.valores[ch]
	}
	return out, nil
}

type antifraudeFunc func(domain.ElectionID, domain.VoterID) error

func (f antifraudeFunc) Validar(_ context.Context, e domain.ElectionID, v domain.VoterID) error {
	return f(e, v)
}

type staticTree struct{ tree *hierarchy.Tree }

func (s staticTree) Current() *hierarchy.Tree { return s.tree }

type serviceDeps struct {
	elections  *memElectionRepo
	voters     *memVoterRepo
	candidates *memCandidateRepo
	ballots    *memBallotRepo
	contador   *memContador
	queue      *recordingQueue
	antifraude antifraudeFunc
	tree       staticTree
	clock      *clock.FixedClock
	idGen      *ids.Generator
	baseTime   time.Time
}

func ptr(id domain.GeoNodeID) *domain.GeoNodeID { return &id }

// newServiceDeps monta Kerala com VS7/VS8 sob D1 e LS1/LS2 sob S1,
// eleições ativas em VS7 (E7), VS8 (E8) e LS1 (ELS1).
func newServiceDeps() *serviceDeps {
	base := time.Date(2026, 4, 19, 8, 0, 0, 0, time.UTC)
	tree, err := hierarchy.NewTree([]domain.GeoNode{
		{ID: "S1", Level: domain.LevelState, Name: "Kerala"},
		{ID: "D1", Level: domain.LevelDistrict, Name: "Ernakulam", ParentID: ptr("S1")},
		{ID: "LS1", Level: domain.LevelLokSabha, Name: "Chalakudy", ParentID: ptr("S1")},
		{ID: "LS2", Level: domain.LevelLokSabha, Name: "Ernakulam", ParentID: ptr("S1")},
		{ID: "VS7", Level: domain.LevelVidhanSabha, Name: "Kochi", ParentID: ptr("D1")},
		{ID: "VS8", Level: domain.LevelVidhanSabha, Name: "Vypin", ParentID: ptr("D1")},
		{ID: "LB1", Level: domain.LevelLocalBody, Name: "Kochi Corporation", ParentID: ptr("D1")},
	})
	if err != nil {
		panic(err)
	}

	d := &serviceDeps{
		elections:  &memElectionRepo{items: map[domain.ElectionID]domain.Election{}},
		voters:     &memVoterRepo{items: map[domain.VoterID]domain.Voter{}},
		candidates: &memCandidateRepo{items: map[domain.CandidateID]domain.Candidate{}},
		ballots:    &memBallotRepo{chave: map[[2]string]bool{}},
		contador:   &memContador{valores: map[string]int64{}},
		queue:      &recordingQueue{},
		antifraude: func(domain.ElectionID, domain.VoterID) error { return nil },
		tree:       staticTree{tree: tree},
		clock:      clock.NewFixedClock(base),
		idGen:      ids.NewGenerator(),
		baseTime:   base,
	}

	ctx := context.Background()
	for _, e := range []domain.Election{
		{ID: "E7", Name: "Kochi", Type: domain.ElectionVidhanSabha, TargetNodeID: "VS7", Status: domain.ElectionActive},
		{ID: "E8", Name: "Vypin", Type: domain.ElectionVidhanSabha, TargetNodeID: "VS8", Status: domain.ElectionActive},
		{ID: "ELS1", Name: "Chalakudy", Type: domain.ElectionLokSabha, TargetNodeID: "LS1", Status: domain.ElectionActive},
		{ID: "EPREP", Name: "Futura", Type: domain.ElectionVidhanSabha, TargetNodeID: "VS7", Status: domain.ElectionPreparation},
	} {
		_ = d.elections.Create(ctx, e)
	}
	for _, c := range []domain.Candidate{
		{ID: "C1", ElectionID: "E7", Name: "Asha", Status: domain.CandidateApproved},
		{ID: "C2", ElectionID: "E7", Name: "Ravi", Status: domain.CandidateApproved},
		{ID: "C3", ElectionID: "E7", Name: "Pendente", Status: domain.CandidatePending},
		{ID: "C8", ElectionID: "E8", Name: "Outro", Status: domain.CandidateApproved},
		{ID: "CL1", ElectionID: "ELS1", Name: "LS", Status: domain.CandidateApproved},
		{ID: "CP1", ElectionID: "EPREP", Name: "Prep", Status: domain.CandidateApproved},
	} {
		_ = d.candidates.Create(ctx, c)
	}
	_ = d.voters.Create(ctx, domain.Voter{
		ID: "V1", DistrictID: "D1", StateID: "S1", LokSabhaID: "LS2", VidhanSabhaID: "VS7", LocalBodyID: "LB1",
		Status: domain.VoterActive,
	})
	return d
}

func (d *serviceDeps) service() *Service {
	return NewService(Deps{
		Elections:  d.elections,
		Voters:     d.voters,
		Candidates: d.candidates,
		Ballots:    d.ballots,
		Contador:   d.contador,
		Fila:       d.queue,
		Antifraude: d.antifraude,
		Tree:       d.tree,
		Clock:      d.clock,
		IDs:        d.idGen,
	})
}
