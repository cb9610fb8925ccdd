// Pacote httpapi expõe os handlers REST e traduz requisições HTTP para os serviços do núcleo.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/metrics"
)

// Authenticator resolve a identidade do portador do token.
type Authenticator interface {
	Authenticate(r *http.Request) (domain.Identity, error)
}

// Services agrupa as portas usadas pelos handlers.
type Services struct {
	Voting     domain.VotingService
	Tabulation domain.TabulationService
	Results    domain.ResultService
	Registry   domain.RegistryService
	Hierarchy  domain.HierarchyService
}

type API struct {
	svc    Services
	auth   Authenticator
	logger *slog.Logger
}

func New(svc Services, auth Authenticator, logger *slog.Logger) *API {
	return &API{svc: svc, auth: auth, logger: logger}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /elections", a.autenticado(a.listarEleicoes))
	mux.HandleFunc("GET /elections/{id}/turnout", a.admin(a.obterComparecimento))
	mux.HandleFunc("POST /votes", a.autenticado(a.registrarVoto))
	mux.HandleFunc("GET /votes/counts", a.obterContagemPublicada)
	mux.HandleFunc("GET /candidates", a.listarCandidatos)
	mux.HandleFunc("GET /geo/nodes", a.listarNos)

	mux.HandleFunc("POST /results/generate", a.admin(a.gerarResultado))
	mux.HandleFunc("GET /results", a.listarResultados)
	mux.HandleFunc("PATCH /results/{id}", a.admin(a.alterarPublicacao))
	mux.HandleFunc("DELETE /results/{id}", a.admin(a.removerResultado))

	a.registerAdmin(mux)
}

// Handler devolve o mux com o middleware de request id aplicado.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.Register(mux)
	return a.WithRequestID(mux)
}

func (a *API) listarEleicoes(w http.ResponseWriter, r *http.Request, who domain.Identity) {
	eleicoes, err := a.svc.Voting.ElectionsFor(r.Context(), who)
	if err != nil {
		a.log(r).Error("erro ao listar eleicoes", "err", err, "subject", who.Subject)
		responderErro(w, err)
		return
	}
	if eleicoes == nil {
		eleicoes = []domain.Election{}
	}
	responderJSON(w, http.StatusOK, eleicoes)
}

type votoRequest struct {
	ElectionID  string `json:"election_id"`
	CandidateID string `json:"candidate_id"`
}

type votoResponse struct {
	BallotID    domain.BallotID    `json:"ballot_id"`
	ElectionID  domain.ElectionID  `json:"election_id"`
	CandidateID domain.CandidateID `json:"candidate_id"`
	CastAt      time.Time          `json:"cast_at"`
}

func (a *API) registrarVoto(w http.ResponseWriter, r *http.Request, who domain.Identity) {
	var req votoRequest
	if err := decodificar(r, &req); err != nil || req.ElectionID == "" || req.CandidateID == "" {
		metrics.ObserveVoteRequest("invalid_payload")
		a.log(r).Warn("payload invalido ao registrar voto", "err", err)
		responderErro(w, errPayload)
		return
	}

	ballot, err := a.svc.Voting.CastVote(r.Context(), who, domain.ElectionID(req.ElectionID), domain.CandidateID(req.CandidateID))
	if err != nil {
		a.log(r).Warn("voto recusado",
			"err", err,
			"kind", kindOf(err),
			"election_id", req.ElectionID,
			"voter_id", who.VoterID,
		)
		responderErro(w, err)
		return
	}

	a.log(r).Info("voto registrado", "ballot_id", ballot.ID, "election_id", ballot.ElectionID)
	responderJSON(w, http.StatusCreated, votoResponse{
		BallotID:    ballot.ID,
		ElectionID:  ballot.ElectionID,
		CandidateID: ballot.CandidateID,
		CastAt:      ballot.CastAt,
	})
}

// obterContagemPublicada é a leitura do eleitor: só resultados publicados aparecem.
func (a *API) obterContagemPublicada(w http.ResponseWriter, r *http.Request) {
	electionID := r.URL.Query().Get("election_id")
	if electionID == "" {
		responderErro(w, errParametro("election_id"))
		return
	}
	tallies, err := a.svc.Results.PublishedCounts(r.Context(), domain.ElectionID(electionID))
	if err != nil {
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, tallies)
}

func (a *API) listarCandidatos(w http.ResponseWriter, r *http.Request) {
	electionID := r.URL.Query().Get("election_id")
	if electionID == "" {
		responderErro(w, errParametro("election_id"))
		return
	}
	candidatos, err := a.svc.Registry.ListCandidates(r.Context(), domain.ElectionID(electionID))
	if err != nil {
		responderErro(w, err)
		return
	}
	if candidatos == nil {
		candidatos = []domain.Candidate{}
	}
	responderJSON(w, http.StatusOK, candidatos)
}

func (a *API) listarNos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	level := domain.Level(q.Get("level"))
	if !level.Valid() {
		responderErro(w, errParametro("level"))
		return
	}
	nos := a.svc.Hierarchy.Children(domain.GeoNodeID(q.Get("parent_id")), level)
	if nos == nil {
		nos = []domain.GeoNode{}
	}
	responderJSON(w, http.StatusOK, nos)
}

func (a *API) obterComparecimento(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	turnout, err := a.svc.Voting.Turnout(r.Context(), domain.ElectionID(r.PathValue("id")))
	if err != nil {
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, turnout)
}

type gerarRequest struct {
	ElectionID string `json:"election_id"`
}

// resultadoView expõe as linhas por candidato que o modelo guarda como JSON.
type resultadoView struct {
	domain.Result
	Tallies []domain.CandidateTally `json:"tallies"`
}

func novaView(res domain.Result) (resultadoView, error) {
	tallies, err := res.DecodeTallies()
	if err != nil {
		return resultadoView{}, err
	}
	return resultadoView{Result: res, Tallies: tallies}, nil
}

func (a *API) gerarResultado(w http.ResponseWriter, r *http.Request, who domain.Identity) {
	var req gerarRequest
	if err := decodificar(r, &req); err != nil || req.ElectionID == "" {
		responderErro(w, errPayload)
		return
	}
	res, err := a.svc.Tabulation.Generate(r.Context(), domain.ElectionID(req.ElectionID))
	if err != nil {
		a.log(r).Error("erro ao apurar eleicao", "err", err, "election_id", req.ElectionID)
		responderErro(w, err)
		return
	}
	a.log(r).Info("apuracao solicitada", "election_id", req.ElectionID, "subject", who.Subject)
	a.responderResultado(w, r, http.StatusOK, res)
}

// listarResultados devolve tudo para admin e apenas publicados para os demais.
func (a *API) listarResultados(w http.ResponseWriter, r *http.Request) {
	admin := false
	if r.Header.Get("Authorization") != "" {
		who, err := a.auth.Authenticate(r)
		if err != nil {
			responderErro(w, err)
			return
		}
		admin = who.Admin
	}

	listar := a.svc.Results.ListPublished
	if admin {
		listar = a.svc.Results.List
	}
	lista, err := listar(r.Context())
	if err != nil {
		a.log(r).Error("erro ao listar resultados", "err", err)
		responderErro(w, err)
		return
	}

	views := make([]resultadoView, 0, len(lista))
	for _, res := range lista {
		v, err := novaView(res)
		if err != nil {
			responderErro(w, err)
			return
		}
		views = append(views, v)
	}
	responderJSON(w, http.StatusOK, views)
}

type publicacaoRequest struct {
	Published *bool `json:"published"`
}

func (a *API) alterarPublicacao(w http.ResponseWriter, r *http.Request, who domain.Identity) {
	var req publicacaoRequest
	if err := decodificar(r, &req); err != nil || req.Published == nil {
		responderErro(w, errPayload)
		return
	}
	id := domain.ResultID(r.PathValue("id"))
	res, err := a.svc.Results.SetPublished(r.Context(), id, *req.Published)
	if err != nil {
		responderErro(w, err)
		return
	}
	a.log(r).Info("publicacao alterada", "result_id", id, "published", *req.Published, "subject", who.Subject)
	a.responderResultado(w, r, http.StatusOK, res)
}

func (a *API) removerResultado(w http.ResponseWriter, r *http.Request, who domain.Identity) {
	id := domain.ResultID(r.PathValue("id"))
	if err := a.svc.Results.Delete(r.Context(), id); err != nil {
		responderErro(w, err)
		return
	}
	a.log(r).Info("resultado removido", "result_id", id, "subject", who.Subject)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) responderResultado(w http.ResponseWriter, r *http.Request, status int, res domain.Result) {
	v, err := novaView(res)
	if err != nil {
		a.log(r).Error("resultado com parciais invalidas", "err", err, "result_id", res.ID)
		responderErro(w, err)
		return
	}
	responderJSON(w, status, v)
}

func decodificar(r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(dst)
}
