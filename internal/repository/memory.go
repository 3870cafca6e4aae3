package repository

import (
	"context"
	"sort"
	"sync"

	"battleship/internal/domain"
	"battleship/internal/game"
)

// MemoryGameStore keeps games in process. It is used when no DATABASE_URL is
// configured and in tests. Stored values are clones, so callers never share
// state with the store.
type MemoryGameStore struct {
	games map[string]*game.Game
	mu    sync.RWMutex
}

var _ GameStore = (*MemoryGameStore)(nil)

func NewMemoryGameStore() *MemoryGameStore {
	return &MemoryGameStore{
		games: make(map[string]*game.Game),
	}
}

func (s *MemoryGameStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryGameStore) Get(ctx context.Context, id string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g.Clone(), nil
}

func (s *MemoryGameStore) Create(ctx context.Context, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[g.ID]; exists {
		return ErrPreconditionFailed
	}
	g.Version = 1
	s.games[g.ID] = g.Clone()
	return nil
}

func (s *MemoryGameStore) Update(ctx context.Context, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.games[g.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != g.Version {
		return ErrPreconditionFailed
	}

	g.Version++
	s.games[g.ID] = g.Clone()
	return nil
}

func (s *MemoryGameStore) FindOpen(ctx context.Context, limit int) ([]*game.Game, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	var open []*game.Game
	for _, g := range s.games {
		if g.AwaitingOpponent() {
			open = append(open, g.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(open, func(i, j int) bool {
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})
	if len(open) > limit {
		open = open[:limit]
	}
	return open, nil
}

// MemoryHistoryStore is the in-process HistoryStore.
type MemoryHistoryStore struct {
	records []*domain.GameHistory
	seq     int64
	mu      sync.RWMutex
}

var _ HistoryStore = (*MemoryHistoryStore)(nil)

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{}
}

func (s *MemoryHistoryStore) Create(ctx context.Context, gh *domain.GameHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	gh.ID = s.seq
	rec := *gh
	s.records = append(s.records, &rec)
	return nil
}

func (s *MemoryHistoryStore) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*domain.GameHistory, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []*domain.GameHistory
	for i := len(s.records) - 1; i >= 0 && len(res) < limit; i-- {
		if s.records[i].PlayerID == playerID {
			rec := *s.records[i]
			res = append(res, &rec)
		}
	}
	return res, nil
}
