package repository

import (
	"context"
	"errors"

	"battleship/internal/domain"
	"battleship/internal/game"
)

var (
	ErrNotFound           = errors.New("game not found")
	ErrPreconditionFailed = errors.New("game was modified concurrently")
)

// GameStore persists the authoritative Game. Update is a compare-and-set on
// Version: it commits only if the stored version still equals g.Version and
// then bumps g.Version.
type GameStore interface {
	Get(ctx context.Context, id string) (*game.Game, error)
	Create(ctx context.Context, g *game.Game) error
	Update(ctx context.Context, g *game.Game) error
	// FindOpen returns the oldest games that still have a free second seat.
	FindOpen(ctx context.Context, limit int) ([]*game.Game, error)
	Ping(ctx context.Context) error
}

// HistoryStore keeps per-player records of finished games.
type HistoryStore interface {
	Create(ctx context.Context, gh *domain.GameHistory) error
	GetByPlayer(ctx context.Context, playerID string, limit int) ([]*domain.GameHistory, error)
}
