package httpapi

import (
	"net/http"
	"time"

	"github.com/marcelojr/evoto/internal/domain"
)

// Rotas usadas pelo subsistema administrativo externo para cadastro e moderação.
func (a *API) registerAdmin(mux *http.ServeMux) {
	mux.HandleFunc("POST /admin/hierarchy/reload", a.admin(a.recarregarHierarquia))
	mux.HandleFunc("GET /admin/counts", a.admin(a.contagemCrua))

	mux.HandleFunc("POST /admin/elections", a.admin(a.cadastrarEleicao))
	mux.HandleFunc("PATCH /admin/elections/{id}", a.admin(a.alterarStatusEleicao))
	mux.HandleFunc("POST /admin/voters", a.admin(a.cadastrarEleitor))
	mux.HandleFunc("PATCH /admin/voters/{id}", a.admin(a.alterarStatusEleitor))
	mux.HandleFunc("POST /admin/candidates", a.admin(a.cadastrarCandidato))
	mux.HandleFunc("PATCH /admin/candidates/{id}", a.admin(a.alterarStatusCandidato))
}

func (a *API) recarregarHierarquia(w http.ResponseWriter, r *http.Request, who domain.Identity) {
	if err := a.svc.Hierarchy.Reload(r.Context()); err != nil {
		a.log(r).Error("erro ao recarregar hierarquia", "err", err)
		responderErro(w, err)
		return
	}
	a.log(r).Info("hierarquia recarregada", "subject", who.Subject)
	responderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// contagemCrua lê o ledger direto, sem passar pela publicação.
func (a *API) contagemCrua(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	electionID := r.URL.Query().Get("election_id")
	if electionID == "" {
		responderErro(w, errParametro("election_id"))
		return
	}
	counts, err := a.svc.Voting.CountFor(r.Context(), domain.ElectionID(electionID))
	if err != nil {
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusOK, counts)
}

type eleicaoRequest struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	TargetNodeID     string    `json:"target_node_id"`
	Date             time.Time `json:"date"`
	ApplicationStart time.Time `json:"application_start"`
	ApplicationEnd   time.Time `json:"application_end"`
	ResultDate       time.Time `json:"result_date"`
	Status           string    `json:"status"`
}

func (a *API) cadastrarEleicao(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	var req eleicaoRequest
	if err := decodificar(r, &req); err != nil {
		responderErro(w, errPayload)
		return
	}
	e, err := a.svc.Registry.RegisterElection(r.Context(), domain.Election{
		ID:               domain.ElectionID(req.ID),
		Name:             req.Name,
		Type:             domain.ElectionType(req.Type),
		TargetNodeID:     domain.GeoNodeID(req.TargetNodeID),
		Date:             req.Date,
		ApplicationStart: req.ApplicationStart,
		ApplicationEnd:   req.ApplicationEnd,
		ResultDate:       req.ResultDate,
		Status:           domain.ElectionStatus(req.Status),
	})
	if err != nil {
		a.log(r).Warn("eleicao recusada", "err", err, "kind", kindOf(err))
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusCreated, e)
}

type eleitorRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	BoothID       string `json:"booth_id"`
	WardID        string `json:"ward_id"`
	LocalBodyID   string `json:"local_body_id"`
	DistrictID    string `json:"district_id"`
	StateID       string `json:"state_id"`
	LokSabhaID    string `json:"loksabha_id"`
	VidhanSabhaID string `json:"vidhansabha_id"`
	Status        string `json:"status"`
}

func (a *API) cadastrarEleitor(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	var req eleitorRequest
	if err := decodificar(r, &req); err != nil {
		responderErro(w, errPayload)
		return
	}
	v, err := a.svc.Registry.RegisterVoter(r.Context(), domain.Voter{
		ID:            domain.VoterID(req.ID),
		Name:          req.Name,
		Email:         req.Email,
		BoothID:       domain.GeoNodeID(req.BoothID),
		WardID:        domain.GeoNodeID(req.WardID),
		LocalBodyID:   domain.GeoNodeID(req.LocalBodyID),
		DistrictID:    domain.GeoNodeID(req.DistrictID),
		StateID:       domain.GeoNodeID(req.StateID),
		LokSabhaID:    domain.GeoNodeID(req.LokSabhaID),
		VidhanSabhaID: domain.GeoNodeID(req.VidhanSabhaID),
		Status:        domain.VoterStatus(req.Status),
	})
	if err != nil {
		a.log(r).Warn("eleitor recusado", "err", err, "kind", kindOf(err))
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusCreated, v)
}

type candidatoRequest struct {
	ID         string `json:"id"`
	ElectionID string `json:"election_id"`
	Name       string `json:"name"`
	Party      string `json:"party"`
}

func (a *API) cadastrarCandidato(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	var req candidatoRequest
	if err := decodificar(r, &req); err != nil {
		responderErro(w, errPayload)
		return
	}
	c, err := a.svc.Registry.RegisterCandidate(r.Context(), domain.Candidate{
		ID:         domain.CandidateID(req.ID),
		ElectionID: domain.ElectionID(req.ElectionID),
		Name:       req.Name,
		Party:      req.Party,
	})
	if err != nil {
		a.log(r).Warn("candidatura recusada", "err", err, "kind", kindOf(err))
		responderErro(w, err)
		return
	}
	responderJSON(w, http.StatusCreated, c)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (a *API) lerStatus(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req statusRequest
	if err := decodificar(r, &req); err != nil || req.Status == "" {
		responderErro(w, errPayload)
		return "", false
	}
	return req.Status, true
}

func (a *API) alterarStatusEleicao(w http.ResponseWriter, r *http.Request, who domain.Identity) {
	status, ok := a.lerStatus(w, r)
	if !ok {
		return
	}
	id := domain.ElectionID(r.PathValue("id"))
	if err := a.svc.Registry.SetElectionStatus(r.Context(), id, domain.ElectionStatus(status)); err != nil {
		responderErro(w, err)
		return
	}
	a.log(r).Info("status da eleicao alterado", "election_id", id, "status", status, "subject", who.Subject)
	responderJSON(w, http.StatusOK, map[string]string{"id": string(id), "status": status})
}

func (a *API) alterarStatusEleitor(w http.ResponseWriter, r *http.Request, who domain.Identity) {
	status, ok := a.lerStatus(w, r)
	if !ok {
		return
	}
	id := domain.VoterID(r.PathValue("id"))
	if err := a.svc.Registry.SetVoterStatus(r.Context(), id, domain.VoterStatus(status)); err != nil {
		responderErro(w, err)
		return
	}
	a.log(r).Info("status do eleitor alterado", "voter_id", id, "status", status, "subject", who.Subject)
	responderJSON(w, http.StatusOK, map[string]string{"id": string(id), "status": status})
}

func (a *API) alterarStatusCandidato(w http.ResponseWriter, r *http.Request, who domain.Identity) {
	status, ok := a.lerStatus(w, r)
	if !ok {
		return
	}
	id := domain.CandidateID(r.PathValue("id"))
	if err := a.svc.Registry.SetCandidateStatus(r.Context(), id, domain.CandidateStatus(status)); err != nil {
		responderErro(w, err)
		return
	}
	a.log(r).Info("status do candidato alterado", "candidate_id", id, "status", status, "subject", who.Subject)
	responderJSON(w, http.StatusOK, map[string]string{"id": string(id), "status": status})
}
