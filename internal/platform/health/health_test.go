package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupMockRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func chamar(t *testing.T, h http.Handler) (int, status) {
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestReadyHandler_QuandoTodosServicosDisponiveis_DeveRetornar200(t *testing.T) {
	checker := NewChecker(setupDB(t), setupMockRedis(t))

	code, body := chamar(t, checker.ReadyHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, body.Checks)
}

func TestReadyHandler_QuandoDependenciasNulas_DevePularChecagem(t *testing.T) {
	code, body := chamar(t, NewChecker(nil, nil).ReadyHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body.Checks)
}

func TestReadyHandler_QuandoDBIndisponivel_DeveRetornar503(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	code, body := chamar(t, NewChecker(db, setupMockRedis(t)).ReadyHandler())

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", body.Checks["database"])
	assert.Equal(t, "ok", body.Checks["redis"])
}

func TestReadyHandler_QuandoRedisIndisponivel_DeveRetornar503(t *testing.T) {
	rdb := setupMockRedis(t)
	require.NoError(t, rdb.Close())

	code, body := chamar(t, NewChecker(setupDB(t), rdb).ReadyHandler())

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", body.Checks["redis"])
}

func TestReadyHandler_QuandoCheckCustomFalha_DeveReportarPeloNome(t *testing.T) {
	checker := NewChecker(nil, nil).Add("hierarchy", func(context.Context) error {
		return errors.New("arvore vazia")
	})

	code, body := chamar(t, checker.ReadyHandler())

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", body.Checks["hierarchy"])
}

func TestLiveHandler_DeveSempreRetornar200(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	code, body := chamar(t, NewChecker(db, nil).LiveHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}
