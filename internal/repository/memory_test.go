package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"battleship/internal/domain"
	"battleship/internal/game"
)

func TestMemoryGameStoreCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryGameStore()
	now := time.Now()

	g := game.New("g1", "alice", now)
	if err := s.Create(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Version != 1 {
		t.Fatalf("version after create = %d; want 1", g.Version)
	}
	if err := s.Create(ctx, g); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("duplicate create err = %v", err)
	}

	a, _ := s.Get(ctx, "g1")
	b, _ := s.Get(ctx, "g1")

	if err := a.Join("bob", now); err != nil {
		t.Fatalf("join a: %v", err)
	}
	if err := s.Update(ctx, a); err != nil {
		t.Fatalf("update a: %v", err)
	}
	if a.Version != 2 {
		t.Fatalf("version after update = %d; want 2", a.Version)
	}

	if err := b.Join("carol", now); err != nil {
		t.Fatalf("join b on stale copy: %v", err)
	}
	if err := s.Update(ctx, b); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("stale update err = %v; want ErrPreconditionFailed", err)
	}

	stored, err := s.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Player2ID != "bob" || stored.Version != 2 {
		t.Fatalf("stored player2=%q version=%d", stored.Player2ID, stored.Version)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing err = %v", err)
	}
	if err := s.Update(ctx, game.New("missing", "x", now)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing err = %v", err)
	}
}

func TestMemoryGameStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryGameStore()

	g := game.New("g1", "alice", time.Now())
	if err := s.Create(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}
	g.Player1Board[0][0].Status = game.CellMiss

	got, _ := s.Get(ctx, "g1")
	if got.Player1Board[0][0].Status != game.CellEmpty {
		t.Fatalf("store shares board with caller")
	}
	got.Player1Ships = append(got.Player1Ships, game.Ship{Type: game.Destroyer})

	again, _ := s.Get(ctx, "g1")
	if len(again.Player1Ships) != 0 {
		t.Fatalf("store shares fleet with caller")
	}
}

func TestMemoryGameStoreFindOpen(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryGameStore()
	base := time.Now()

	newer := game.New("newer", "p1", base.Add(time.Minute))
	older := game.New("older", "p2", base)
	full := game.New("full", "p3", base.Add(-time.Minute))
	if err := full.Join("p4", base); err != nil {
		t.Fatalf("join: %v", err)
	}

	for _, g := range []*game.Game{newer, older, full} {
		if err := s.Create(ctx, g); err != nil {
			t.Fatalf("create %s: %v", g.ID, err)
		}
	}

	open, err := s.FindOpen(ctx, 10)
	if err != nil {
		t.Fatalf("find open: %v", err)
	}
	if len(open) != 2 || open[0].ID != "older" || open[1].ID != "newer" {
		ids := []string{}
		for _, g := range open {
			ids = append(ids, g.ID)
		}
		t.Fatalf("open games = %v; want [older newer]", ids)
	}

	limited, _ := s.FindOpen(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("limit ignored: %d", len(limited))
	}
}

func TestMemoryHistoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryHistoryStore()

	for _, id := range []string{"g1", "g2"} {
		if err := s.Create(ctx, &domain.GameHistory{PlayerID: "alice", GameID: id, Result: domain.GameResultWin}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := s.Create(ctx, &domain.GameHistory{PlayerID: "bob", GameID: "g1", Result: domain.GameResultLose}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetByPlayer(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[0].GameID != "g2" {
		t.Fatalf("alice history = %+v", got)
	}
}
