package domain

import "errors"

var (
	ErrNotFound              = errors.New("registro nao encontrado")
	ErrIneligible            = errors.New("eleitor nao elegivel para a eleicao")
	ErrElectionNotActive     = errors.New("eleicao nao esta ativa")
	ErrInvalidCandidate      = errors.New("candidato invalido")
	ErrDuplicateVote         = errors.New("eleitor ja votou nesta eleicao")
	ErrInconsistentHierarchy = errors.New("hierarquia inconsistente")
	ErrInvalidElection       = errors.New("eleicao invalida")
	ErrInvalidNode           = errors.New("no geografico invalido")
	ErrRateLimited           = errors.New("muitas tentativas de voto")
	ErrInvalidInput          = errors.New("dados invalidos")
	ErrAlreadyExists         = errors.New("registro ja existe")
)

// Kind traduz um erro de domínio para o identificador estável devolvido pela API.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrIneligible):
		return "Ineligible"
	case errors.Is(err, ErrElectionNotActive):
		return "ElectionNotActive"
	case errors.Is(err, ErrInvalidCandidate):
		return "InvalidCandidate"
	case errors.Is(err, ErrDuplicateVote):
		return "DuplicateVote"
	case errors.Is(err, ErrInconsistentHierarchy):
		return "InconsistentHierarchy"
	case errors.Is(err, ErrInvalidElection):
		return "InvalidElection"
	case errors.Is(err, ErrInvalidNode):
		return "InvalidNode"
	case errors.Is(err, ErrRateLimited):
		return "RateLimited"
	case errors.Is(err, ErrInvalidInput):
		return "InvalidInput"
	case errors.Is(err, ErrAlreadyExists):
		return "AlreadyExists"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	default:
		return "Internal"
	}
}
