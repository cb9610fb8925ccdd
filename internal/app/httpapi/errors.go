package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/auth"
)

var (
	errPayload  = fmt.Errorf("%w: payload invalido", domain.ErrInvalidInput)
	errProibido = errors.New("acesso restrito a administradores")
)

func errParametro(nome string) error {
	return fmt.Errorf("%w: parametro %s obrigatorio ou invalido", domain.ErrInvalidInput, nome)
}

type erroResponse struct {
	Erro string `json:"erro"`
	Kind string `json:"kind"`
}

func responderJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// responderErro é o único ponto que traduz erro em status HTTP.
func responderErro(w http.ResponseWriter, err error) {
	status, kind, msg := classificar(err)
	responderJSON(w, status, erroResponse{Erro: msg, Kind: kind})
}

func classificar(err error) (int, string, string) {
	switch {
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Unauthorized", "Unauthorized"
	case errors.Is(err, errProibido):
		return http.StatusForbidden, "Forbidden", "Forbidden"
	}

	kind := domain.Kind(err)
	switch kind {
	case "Ineligible":
		return http.StatusForbidden, kind, err.Error()
	case "ElectionNotActive", "DuplicateVote", "AlreadyExists":
		return http.StatusConflict, kind, err.Error()
	case "InvalidCandidate", "InconsistentHierarchy":
		return http.StatusUnprocessableEntity, kind, err.Error()
	case "InvalidElection", "InvalidInput", "InvalidNode":
		return http.StatusBadRequest, kind, err.Error()
	case "RateLimited":
		return http.StatusTooManyRequests, kind, err.Error()
	case "NotFound":
		return http.StatusNotFound, kind, err.Error()
	default:
		// Detalhes internos ficam só no log.
		return http.StatusInternalServerError, "Internal", "erro interno"
	}
}

func kindOf(err error) string {
	_, kind, _ := classificar(err)
	return kind
}
