package voting

import (
	"fmt"

	"github.com/marcelojr/evoto/internal/domain"
)

func CounterKeyTotalEleicao(id domain.ElectionID) string {
	return fmt.Sprintf("eleicao:%s:total", id)
}

func CounterKeyCandidato(electionID domain.ElectionID, candidateID domain.CandidateID) string {
	return fmt.Sprintf("eleicao:%s:candidato:%s", electionID, candidateID)
}

// CounterKeysCedula lista as chaves que um evento BallotCast incrementa.
func CounterKeysCedula(ev domain.BallotCast) []string {
	return []string{
		CounterKeyTotalEleicao(ev.ElectionID),
		CounterKeyCandidato(ev.ElectionID, ev.CandidateID),
	}
}
