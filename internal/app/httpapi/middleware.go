package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/marcelojr/evoto/internal/domain"
)

const headerRequestID = "X-Request-ID"

type ctxKey struct{}

type handlerAutenticado func(http.ResponseWriter, *http.Request, domain.Identity)

// WithRequestID reaproveita o id enviado pelo cliente ou gera um novo e o expõe aos logs dos handlers.
func (a *API) WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (a *API) log(r *http.Request) *slog.Logger {
	if id, ok := r.Context().Value(ctxKey{}).(string); ok {
		return a.logger.With("request_id", id)
	}
	return a.logger
}

func (a *API) autenticado(next handlerAutenticado) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, err := a.auth.Authenticate(r)
		if err != nil {
			a.log(r).Warn("requisicao sem autenticacao valida", "err", err, "path", r.URL.Path)
			responderErro(w, err)
			return
		}
		next(w, r, who)
	}
}

func (a *API) admin(next handlerAutenticado) http.HandlerFunc {
	return a.autenticado(func(w http.ResponseWriter, r *http.Request, who domain.Identity) {
		if !who.Admin {
			a.log(r).Warn("acesso administrativo negado", "subject", who.Subject, "path", r.URL.Path)
			responderErro(w, errProibido)
			return
		}
		next(w, r, who)
	})
}
