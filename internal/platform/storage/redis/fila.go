// Pacote redis implementa a fila de eventos de cédula e os contadores de comparecimento.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/logger"
)

const esperaBRPop = 5 * time.Second

// Fila publica eventos BallotCast numa lista Redis. Eventos que o handler rejeita
// vão para "<chave>:falhas" para reprocessamento manual.
type Fila struct {
	client *redis.Client
	key    string
}

func NewFila(client *redis.Client, key string) *Fila {
	return &Fila{client: client, key: key}
}

func (f *Fila) chaveFalhas() string {
	return f.key + ":falhas"
}

func (f *Fila) Publicar(ctx context.Context, evento domain.BallotCast) error {
	payload, err := json.Marshal(evento)
	if err != nil {
		return fmt.Errorf("redis fila: serializar cedula %s: %w", evento.BallotID, err)
	}
	if err := f.client.LPush(ctx, f.key, payload).Err(); err != nil {
		return fmt.Errorf("redis fila: enfileirar cedula %s: %w", evento.BallotID, err)
	}
	return nil
}

// Consumir bloqueia até o contexto terminar.
func (f *Fila) Consumir(ctx context.Context, handler func(context.Context, domain.BallotCast) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := f.client.BRPop(ctx, esperaBRPop, f.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("redis fila: consumir: %w", err)
		}
		if len(res) != 2 {
			continue
		}

		var evento domain.BallotCast
		if err := json.Unmarshal([]byte(res[1]), &evento); err != nil {
			logger.Warn("evento de cedula invalido desviado", "err", err)
			f.desviar(ctx, res[1])
			continue
		}

		if err := handler(ctx, evento); err != nil {
			logger.Error("falha ao processar evento de cedula", "ballot_id", evento.BallotID, "err", err)
			f.desviar(ctx, res[1])
		}
	}
}

// Pendentes devolve o tamanho atual da fila principal.
func (f *Fila) Pendentes(ctx context.Context) (int64, error) {
	n, err := f.client.LLen(ctx, f.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis fila: llen: %w", err)
	}
	return n, nil
}

func (f *Fila) desviar(ctx context.Context, payload string) {
	if err := f.client.LPush(ctx, f.chaveFalhas(), payload).Err(); err != nil {
		logger.Error("falha ao mover evento para lista de falhas", "err", err)
	}
}

var _ domain.Fila = (*Fila)(nil)
