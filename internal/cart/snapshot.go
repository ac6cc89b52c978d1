package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/cache"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
)

type cacheSnapshot struct {
	cache cache.Cache
	key   string
}

// NewCacheSnapshot stores the line sequence as JSON under key in c.
func NewCacheSnapshot(c cache.Cache, key string) Snapshotter {
	if key == "" {
		key = cache.DefaultCartKey
	}

	return &cacheSnapshot{cache: c, key: key}
}

func (s *cacheSnapshot) Load(ctx context.Context) ([]models.CartLine, error) {
	var lines []models.CartLine

	found, err := s.cache.Get(ctx, s.key, &lines)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart snapshot %s: %w", s.key, err)
	}

	if !found {
		return nil, nil
	}

	return lines, nil
}

// Save frees the slot when lines is empty; Load reads a missing slot as an
// empty cart.
func (s *cacheSnapshot) Save(ctx context.Context, lines []models.CartLine) error {
	if len(lines) == 0 {
		if err := s.cache.Delete(ctx, s.key); err != nil {
			return fmt.Errorf("failed to delete cart snapshot %s: %w", s.key, err)
		}
		return nil
	}

	if err := s.cache.Set(ctx, s.key, lines, 0); err != nil {
		return fmt.Errorf("failed to save cart snapshot %s: %w", s.key, err)
	}

	return nil
}

// MemorySnapshot keeps the last saved line sequence in memory.
type MemorySnapshot struct {
	mu    sync.Mutex
	lines []models.CartLine
	saved bool
	saves int
}

func NewMemorySnapshot(lines ...models.CartLine) *MemorySnapshot {
	return &MemorySnapshot{lines: lines, saved: len(lines) > 0}
}

func (m *MemorySnapshot) Load(context.Context) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.saved {
		return nil, nil
	}

	out := make([]models.CartLine, len(m.lines))
	copy(out, m.lines)

	return out, nil
}

func (m *MemorySnapshot) Save(_ context.Context, lines []models.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lines = make([]models.CartLine, len(lines))
	copy(m.lines, lines)
	m.saved = true
	m.saves++

	return nil
}

func (m *MemorySnapshot) Lines() []models.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.CartLine, len(m.lines))
	copy(out, m.lines)

	return out
}

func (m *MemorySnapshot) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saves
}
