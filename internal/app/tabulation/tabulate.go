// Pacote tabulation apura uma eleição a partir do ledger de cédulas.
package tabulation

import (
	"sort"

	"github.com/marcelojr/evoto/internal/domain"
)

// Outcome é o resultado puro da apuração, antes de virar domain.Result.
type Outcome struct {
	ElectionID    domain.ElectionID
	TotalVotes    int64
	Winner        *domain.CandidateID
	WinningMargin int64
	Tallies       []domain.CandidateTally
}

// Tabulate soma todas as cédulas, inclusive de candidatos rejeitados depois da votação.
// Tallies saem por votos decrescentes; empate é decidido pelo menor id de candidato.
func Tabulate(electionID domain.ElectionID, candidates []domain.Candidate, counts map[domain.CandidateID]int64) Outcome {
	tallies := make([]domain.CandidateTally, 0, len(candidates))
	vistos := make(map[domain.CandidateID]bool, len(candidates))
	for _, c := range candidates {
		if vistos[c.ID] {
			continue
		}
		vistos[c.ID] = true
		tallies = append(tallies, domain.CandidateTally{
			CandidateID: c.ID,
			Name:        c.Name,
			Party:       c.Party,
			Status:      c.Status,
			Votes:       counts[c.ID],
		})
	}
	// Cédulas de candidato fora do cadastro ainda entram no total.
	for id, n := range counts {
		if !vistos[id] {
			tallies = append(tallies, domain.CandidateTally{CandidateID: id, Votes: n})
		}
	}

	var total int64
	for _, t := range tallies {
		total += t.Votes
	}
	for i := range tallies {
		if total > 0 {
			tallies[i].Percentage = float64(tallies[i].Votes) * 100 / float64(total)
		}
	}

	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].Votes != tallies[j].Votes {
			return tallies[i].Votes > tallies[j].Votes
		}
		return tallies[i].CandidateID < tallies[j].CandidateID
	})

	out := Outcome{ElectionID: electionID, TotalVotes: total, Tallies: tallies}
	if total == 0 {
		return out
	}
	winner := tallies[0].CandidateID
	out.Winner = &winner
	if len(tallies) >= 2 {
		out.WinningMargin = tallies[0].Votes - tallies[1].Votes
	}
	return out
}
