// Pacote antifraude limita tentativas repetidas de voto antes que cheguem ao ledger.
package antifraude

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/evoto/internal/domain"
)

var ErrRateLimitExceeded = fmt.Errorf("%w: limite da janela atingido", domain.ErrRateLimited)

// RedisRateLimiter conta tentativas por (eleição, eleitor) numa janela fixa.
// A unicidade do voto continua garantida pelo banco; aqui só se corta abuso.
type RedisRateLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisRateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: prefix,
	}
}

func (r *RedisRateLimiter) Validar(ctx context.Context, electionID domain.ElectionID, voterID domain.VoterID) error {
	if r.client == nil || r.limit <= 0 || r.window <= 0 {
		return nil
	}

	key := r.buildKey(electionID, voterID)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("antifraude: incrementar %s: %w", key, err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return fmt.Errorf("antifraude: expirar %s: %w", key, err)
		}
	}

	if count > int64(r.limit) {
		return ErrRateLimitExceeded
	}
	return nil
}

// buildKey não expõe o id do eleitor em texto puro no Redis.
func (r *RedisRateLimiter) buildKey(electionID domain.ElectionID, voterID domain.VoterID) string {
	hash := sha1.Sum([]byte(string(electionID) + "|" + string(voterID)))
	return r.keyPrefix + ":" + string(electionID) + ":" + hex.EncodeToString(hash[:])
}

var _ domain.Antifraude = (*RedisRateLimiter)(nil)
