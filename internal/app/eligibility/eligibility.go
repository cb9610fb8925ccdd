// Pacote eligibility decide se um eleitor pode votar numa eleição.
// É a única implementação da regra: listagem e votação chamam as mesmas funções.
package eligibility

import "github.com/marcelojr/evoto/internal/domain"

// IsEligible compara o nó do eleitor no nível do tipo da eleição. Não há casamento
// por ancestral: mesmo distrito com constituinte diferente não é elegível.
func IsEligible(v domain.Voter, e domain.Election) bool {
	if v.Status != domain.VoterActive || e.TargetNodeID == "" {
		return false
	}
	switch e.Type {
	case domain.ElectionLokSabha:
		return v.LokSabhaID == e.TargetNodeID
	case domain.ElectionVidhanSabha:
		return v.VidhanSabhaID == e.TargetNodeID
	case domain.ElectionLocalBody, domain.ElectionPanchayat:
		return v.LocalBodyID == e.TargetNodeID
	default:
		return false
	}
}

// Filter mantém a ordem de entrada.
func Filter(v domain.Voter, elections []domain.Election) []domain.Election {
	out := make([]domain.Election, 0, len(elections))
	for _, e := range elections {
		if IsEligible(v, e) {
			out = append(out, e)
		}
	}
	return out
}
