package antifraude

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func novoLimiter(t *testing.T, limit int, window time.Duration) (*RedisRateLimiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRateLimiter(client, limit, window, "rl"), mr
}

func TestRedisRateLimiter_Validar_QuandoExcedeLimite_DeveBloquear(t *testing.T) {
	limiter, mr := novoLimiter(t, 2, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Validar(ctx, "E1", "V1"))
	require.NoError(t, limiter.Validar(ctx, "E1", "V1"))
	assert.ErrorIs(t, limiter.Validar(ctx, "E1", "V1"), ErrRateLimitExceeded)

	key := limiter.buildKey("E1", "V1")
	assert.Greater(t, mr.TTL(key), time.Duration(0))
	assert.NotContains(t, key, "V1")
}

func TestRedisRateLimiter_Validar_QuandoOutroEleitor_DeveContarSeparado(t *testing.T) {
	limiter, _ := novoLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Validar(ctx, "E1", "V1"))
	assert.NoError(t, limiter.Validar(ctx, "E1", "V2"))
	assert.NoError(t, limiter.Validar(ctx, "E2", "V1"))
}

func TestRedisRateLimiter_Validar_QuandoJanelaExpira_DeveLiberar(t *testing.T) {
	window := 30 * time.Second
	limiter, mr := novoLimiter(t, 1, window)
	ctx := context.Background()

	require.NoError(t, limiter.Validar(ctx, "E1", "V1"))
	require.ErrorIs(t, limiter.Validar(ctx, "E1", "V1"), ErrRateLimitExceeded)

	mr.FastForward(window + time.Second)

	assert.NoError(t, limiter.Validar(ctx, "E1", "V1"))
}

func TestRedisRateLimiter_Validar_QuandoDesconfigurado_DevePermitir(t *testing.T) {
	limiter := NewRedisRateLimiter(nil, 1, time.Minute, "")

	assert.NoError(t, limiter.Validar(context.Background(), "E1", "V1"))
	assert.Equal(t, "ratelimit", limiter.keyPrefix)
	assert.NoError(t, NewNoop().Validar(context.Background(), "E1", "V1"))
}
