package domain

import (
	"encoding/json"
	"fmt"
)

// EncodeTallies grava o snapshot por candidato na coluna JSON do resultado.
func (r *Result) EncodeTallies(tallies []CandidateTally) error {
	if tallies == nil {
		tallies = []CandidateTally{}
	}
	raw, err := json.Marshal(tallies)
	if err != nil {
		return fmt.Errorf("resultado: serializar parciais: %w", err)
	}
	r.Tallies = raw
	return nil
}

func (r Result) DecodeTallies() ([]CandidateTally, error) {
	if len(r.Tallies) == 0 {
		return []CandidateTally{}, nil
	}
	var tallies []CandidateTally
	if err := json.Unmarshal(r.Tallies, &tallies); err != nil {
		return nil, fmt.Errorf("resultado: ler parciais: %w", err)
	}
	return tallies, nil
}
