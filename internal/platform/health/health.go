// Pacote health expõe /healthz e /readyz.
package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckFunc devolve nil quando a dependência está pronta.
type CheckFunc func(ctx context.Context) error

type check struct {
	name string
	fn   CheckFunc
}

type Checker struct {
	checks  []check
	timeout time.Duration
}

// NewChecker registra banco e Redis quando não nulos; a ordem de registro é a ordem de checagem.
func NewChecker(db *sql.DB, rdb *redis.Client) *Checker {
	c := &Checker{timeout: 2 * time.Second}
	if db != nil {
		c.Add("database", db.PingContext)
	}
	if rdb != nil {
		c.Add("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	return c
}

func (c *Checker) Add(name string, fn CheckFunc) *Checker {
	c.checks = append(c.checks, check{name: name, fn: fn})
	return c
}

type status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (c *Checker) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		escrever(w, http.StatusOK, status{Status: "ok"})
	}
}

func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		defer cancel()

		res := status{Status: "ok", Checks: make(map[string]string, len(c.checks))}
		code := http.StatusOK
		for _, chk := range c.checks {
			if err := chk.fn(ctx); err != nil {
				res.Checks[chk.name] = "unavailable"
				res.Status = "unavailable"
				code = http.StatusServiceUnavailable
				continue
			}
			res.Checks[chk.name] = "ok"
		}
		escrever(w, code, res)
	}
}

func escrever(w http.ResponseWriter, code int, body status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
