// Pacote hierarchy mantém a árvore administrativa (estado → distrito → ... → seção) em memória.
package hierarchy

import (
	"fmt"
	"sort"

	"github.com/marcelojr/evoto/internal/domain"
)

type childKey struct {
	parent domain.GeoNodeID
	level  domain.Level
}

// Source entrega o snapshot corrente; implementado por Service.
type Source interface {
	Current() *Tree
}

// Tree é um snapshot imutável; pode ser lido por várias goroutines sem trava.
type Tree struct {
	nodes    map[domain.GeoNodeID]domain.GeoNode
	children map[childKey][]domain.GeoNode
}

// NewTree valida a regra de nível do pai para cada nó. Como o pai é sempre de
// nível mais sênior, a regra sozinha já impede ciclos.
func NewTree(nodes []domain.GeoNode) (*Tree, error) {
	t := &Tree{
		nodes:    make(map[domain.GeoNodeID]domain.GeoNode, len(nodes)),
		children: make(map[childKey][]domain.GeoNode),
	}

	for _, n := range nodes {
		if n.ID == "" || !n.Level.Valid() {
			return nil, fmt.Errorf("%w: id %q nivel %q", domain.ErrInvalidNode, n.ID, n.Level)
		}
		if _, dup := t.nodes[n.ID]; dup {
			return nil, fmt.Errorf("%w: no %s duplicado", domain.ErrInconsistentHierarchy, n.ID)
		}
		t.nodes[n.ID] = n
	}

	for _, n := range t.nodes {
		parentLevel, needsParent := n.Level.ParentLevel()
		switch {
		case !needsParent && n.ParentID != nil:
			return nil, fmt.Errorf("%w: %s %s nao pode ter pai", domain.ErrInconsistentHierarchy, n.Level, n.ID)
		case needsParent && n.ParentID == nil:
			return nil, fmt.Errorf("%w: %s %s sem pai", domain.ErrInconsistentHierarchy, n.Level, n.ID)
		case needsParent:
			parent, ok := t.nodes[*n.ParentID]
			if !ok {
				return nil, fmt.Errorf("%w: pai %s de %s ausente", domain.ErrInconsistentHierarchy, *n.ParentID, n.ID)
			}
			if parent.Level != parentLevel {
				return nil, fmt.Errorf("%w: %s %s sob %s %s", domain.ErrInconsistentHierarchy, n.Level, n.ID, parent.Level, parent.ID)
			}
		}

		key := childKey{level: n.Level}
		if n.ParentID != nil {
			key.parent = *n.ParentID
		}
		t.children[key] = append(t.children[key], n)
	}

	for _, list := range t.children {
		sort.Slice(list, func(i, j int) bool {
			if list[i].Name != list[j].Name {
				return list[i].Name < list[j].Name
			}
			return list[i].ID < list[j].ID
		})
	}

	return t, nil
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) Node(id domain.GeoNodeID) (domain.GeoNode, error) {
	n, ok := t.nodes[id]
	if !ok {
		return domain.GeoNode{}, fmt.Errorf("%w: no %s", domain.ErrNotFound, id)
	}
	return n, nil
}

// Children devolve os filhos diretos no nível pedido, ordenados por nome.
// Com parentID vazio devolve as raízes daquele nível.
func (t *Tree) Children(parentID domain.GeoNodeID, level domain.Level) []domain.GeoNode {
	list := t.children[childKey{parent: parentID, level: level}]
	out := make([]domain.GeoNode, len(list))
	copy(out, list)
	return out
}

// AncestorAt sobe pela cadeia de pais. Ramos independentes (ex.: LokSabha de uma Ward)
// não estão na mesma cadeia e resultam em ErrNotFound.
func (t *Tree) AncestorAt(id domain.GeoNodeID, level domain.Level) (domain.GeoNode, error) {
	n, err := t.Node(id)
	if err != nil {
		return domain.GeoNode{}, err
	}
	for {
		if n.Level == level {
			return n, nil
		}
		if n.ParentID == nil {
			return domain.GeoNode{}, fmt.Errorf("%w: %s %s nao tem ancestral %s", domain.ErrNotFound, n.Level, id, level)
		}
		n = t.nodes[*n.ParentID]
	}
}

// ordemValidacao vai do nível mais fino ao mais grosso, para que o nó mais específico
// informado determine os ancestrais esperados.
var ordemValidacao = []domain.Level{
	domain.LevelBooth,
	domain.LevelWard,
	domain.LevelLocalBody,
	domain.LevelVidhanSabha,
	domain.LevelLokSabha,
	domain.LevelDistrict,
	domain.LevelState,
}

func camposDoEleitor(v domain.Voter) map[domain.Level]domain.GeoNodeID {
	return map[domain.Level]domain.GeoNodeID{
		domain.LevelBooth:       v.BoothID,
		domain.LevelWard:        v.WardID,
		domain.LevelLocalBody:   v.LocalBodyID,
		domain.LevelVidhanSabha: v.VidhanSabhaID,
		domain.LevelLokSabha:    v.LokSabhaID,
		domain.LevelDistrict:    v.DistrictID,
		domain.LevelState:       v.StateID,
	}
}

// ancestrais lista os níveis acima de level na cadeia de pais (ex.: Booth → Ward, LocalBody, District, State).
func ancestrais(level domain.Level) []domain.Level {
	var out []domain.Level
	for {
		parent, ok := level.ParentLevel()
		if !ok {
			return out
		}
		out = append(out, parent)
		level = parent
	}
}

// ValidateVoter confere que a cadeia gravada no eleitor bate com a árvore.
// Todo id informado implica os ids dos níveis acima dele: eles precisam estar
// preenchidos e ser exatamente os ancestrais do nó na árvore.
func (t *Tree) ValidateVoter(v domain.Voter) error {
	campos := camposDoEleitor(v)

	for _, level := range ordemValidacao {
		id := campos[level]
		if id == "" {
			continue
		}
		n, err := t.Node(id)
		if err != nil {
			return fmt.Errorf("eleitor %s: %s: %w", v.ID, level, err)
		}
		if n.Level != level {
			return fmt.Errorf("%w: eleitor %s: campo %s aponta para %s %s", domain.ErrInconsistentHierarchy, v.ID, level, n.Level, id)
		}

		for _, acima := range ancestrais(level) {
			anc, err := t.AncestorAt(id, acima)
			if err != nil {
				return fmt.Errorf("%w: eleitor %s: %v", domain.ErrInconsistentHierarchy, v.ID, err)
			}
			gravado := campos[acima]
			if gravado == "" {
				return fmt.Errorf("%w: eleitor %s: %s %s exige %s %s", domain.ErrInconsistentHierarchy, v.ID, level, id, acima, anc.ID)
			}
			if gravado != anc.ID {
				return fmt.Errorf("%w: eleitor %s: %s de %s e %s, cadastro diz %s",
					domain.ErrInconsistentHierarchy, v.ID, acima, id, anc.ID, gravado)
			}
		}
	}
	return nil
}

// ValidateElectionTarget exige que o nó alvo exista e tenha o nível implicado pelo tipo.
func (t *Tree) ValidateElectionTarget(e domain.Election) error {
	want, ok := e.Type.TargetLevel()
	if !ok {
		return fmt.Errorf("%w: tipo %q desconhecido", domain.ErrInvalidElection, e.Type)
	}
	n, ok := t.nodes[e.TargetNodeID]
	if !ok {
		return fmt.Errorf("%w: alvo %s inexistente", domain.ErrInvalidElection, e.TargetNodeID)
	}
	if n.Level != want {
		return fmt.Errorf("%w: eleicao %s exige alvo %s, recebeu %s", domain.ErrInvalidElection, e.Type, want, n.Level)
	}
	return nil
}
