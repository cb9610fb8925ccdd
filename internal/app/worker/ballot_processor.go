// Pacote worker contém o processamento assíncrono dos eventos de cédula e a rotina agendada de apuração.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelojr/evoto/internal/app/voting"
	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/logger"
	"github.com/marcelojr/evoto/internal/platform/metrics"
)

const atrasoTolerado = time.Minute

// BallotProcessor mantém os contadores de comparecimento a partir dos eventos BallotCast.
// A cédula já está gravada no ledger quando o evento chega; aqui só há derivados.
type BallotProcessor struct {
	contador domain.Contador
	clock    domain.Clock
}

func NewBallotProcessor(contador domain.Contador, clock domain.Clock) *BallotProcessor {
	return &BallotProcessor{
		contador: contador,
		clock:    clock,
	}
}

func (p *BallotProcessor) Process(ctx context.Context, ev domain.BallotCast) error {
	start := time.Now()

	if ev.ElectionID == "" || ev.CandidateID == "" {
		return fmt.Errorf("worker: evento %s incompleto: %w", ev.BallotID, domain.ErrInvalidInput)
	}
	if !ev.CastAt.IsZero() {
		if atraso := p.clock.Agora().Sub(ev.CastAt); atraso > atrasoTolerado {
			logger.Warn("evento de cedula processado com atraso", "ballot_id", ev.BallotID, "atraso", atraso.String())
		}
	}

	if p.contador != nil {
		if err := p.contador.IncrementarLote(ctx, voting.CounterKeysCedula(ev), 1); err != nil {
			return fmt.Errorf("worker: incrementar contadores %s/%s: %w", ev.ElectionID, ev.CandidateID, err)
		}
	}

	metrics.IncBallotEventProcessed()
	metrics.ObserveBallotEventDuration(time.Since(start).Seconds())

	return nil
}
