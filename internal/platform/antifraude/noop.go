package antifraude

import (
	"context"

	"github.com/marcelojr/evoto/internal/domain"
)

// Noop é usado quando ANTIFRAUDE_RATE_LIMIT_ENABLED=false.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

func (Noop) Validar(context.Context, domain.ElectionID, domain.VoterID) error {
	return nil
}

var _ domain.Antifraude = Noop{}
