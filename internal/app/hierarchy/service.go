package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/marcelojr/evoto/internal/domain"
	"github.com/marcelojr/evoto/internal/platform/logger"
)

var ErrNotLoaded = errors.New("hierarquia ainda nao carregada")

// Service guarda o snapshot atual e troca por inteiro a cada Reload.
type Service struct {
	repo domain.GeoNodeRepository

	mu      sync.RWMutex
	current *Tree
	loaded  bool
}

func NewService(repo domain.GeoNodeRepository) *Service {
	empty, _ := NewTree(nil)
	return &Service{repo: repo, current: empty}
}

func (s *Service) Reload(ctx context.Context) error {
	nodes, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("hierarquia: carregar nos: %w", err)
	}
	tree, err := NewTree(nodes)
	if err != nil {
		return fmt.Errorf("hierarquia: %w", err)
	}

	s.mu.Lock()
	s.current = tree
	s.loaded = true
	s.mu.Unlock()

	logger.Info("hierarquia carregada", "nos", tree.Len())
	return nil
}

func (s *Service) Current() *Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Service) Children(parentID domain.GeoNodeID, level domain.Level) []domain.GeoNode {
	return s.Current().Children(parentID, level)
}

// Ready é registrado no /readyz.
func (s *Service) Ready(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	return nil
}

var _ domain.HierarchyService = (*Service)(nil)
var _ Source = (*Service)(nil)
