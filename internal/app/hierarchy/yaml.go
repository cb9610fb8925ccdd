package hierarchy

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/marcelojr/evoto/internal/domain"
)

type arquivoYAML struct {
	Nodes []noYAML `yaml:"nodes"`
}

type noYAML struct {
	ID       string   `yaml:"id"`
	Level    string   `yaml:"level"`
	Name     string   `yaml:"name"`
	ParentID string   `yaml:"parent_id"`
	Children []noYAML `yaml:"children"`
}

// ParseYAML lê um arquivo de hierarquia. Os nós podem vir em lista plana com parent_id
// ou aninhados em children; nos aninhados o pai é implícito. Pais podem já existir no
// banco, então a árvore só é validada em MergeForImport.
func ParseYAML(r io.Reader) ([]domain.GeoNode, error) {
	var arq arquivoYAML
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&arq); err != nil {
		return nil, fmt.Errorf("hierarquia: ler yaml: %w", err)
	}

	var nodes []domain.GeoNode
	var achatar func(items []noYAML, pai string)
	achatar = func(items []noYAML, pai string) {
		for _, item := range items {
			parent := item.ParentID
			if parent == "" {
				parent = pai
			}
			n := domain.GeoNode{
				ID:    domain.GeoNodeID(item.ID),
				Level: domain.Level(item.Level),
				Name:  item.Name,
			}
			if parent != "" {
				p := domain.GeoNodeID(parent)
				n.ParentID = &p
			}
			nodes = append(nodes, n)
			achatar(item.Children, item.ID)
		}
	}
	achatar(arq.Nodes, "")

	vistos := make(map[domain.GeoNodeID]bool, len(nodes))
	for _, n := range nodes {
		if n.ID == "" || !n.Level.Valid() {
			return nil, fmt.Errorf("%w: id %q nivel %q", domain.ErrInvalidNode, n.ID, n.Level)
		}
		if vistos[n.ID] {
			return nil, fmt.Errorf("%w: no %s repetido no arquivo", domain.ErrInconsistentHierarchy, n.ID)
		}
		vistos[n.ID] = true
	}
	return nodes, nil
}

// MergeForImport aplica os nós do arquivo sobre os já gravados (mesmo id sobrescreve)
// e valida a árvore completa que ficaria no banco.
func MergeForImport(existing, incoming []domain.GeoNode) ([]domain.GeoNode, error) {
	novos := make(map[domain.GeoNodeID]bool, len(incoming))
	for _, n := range incoming {
		novos[n.ID] = true
	}

	merged := make([]domain.GeoNode, 0, len(existing)+len(incoming))
	for _, n := range existing {
		if !novos[n.ID] {
			merged = append(merged, n)
		}
	}
	merged = append(merged, incoming...)

	if _, err := NewTree(merged); err != nil {
		return nil, err
	}
	return merged, nil
}
