package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"battleship/internal/domain"
	"battleship/internal/game"
	"battleship/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(migDir, name))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", name, err)
		}
	}
}

func connectDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)
	return db
}

func TestGameRepository_RoundTripAndCAS(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()
	repo := repository.NewGameRepository(db)

	now := time.Now().UTC().Truncate(time.Millisecond)
	g := game.New(uuid.NewString(), "alice-"+uuid.NewString(), now)
	if err := repo.Create(ctx, g); err != nil {
		t.Fatalf("create game: %v", err)
	}

	stale, err := repo.Get(ctx, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if err := g.Join("bob", now); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := g.PlaceShip(game.Player1, game.Destroyer, 0, 0, true, now); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := repo.Update(ctx, g); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := stale.Join("carol", now); err != nil {
		t.Fatalf("join stale: %v", err)
	}
	if err := repo.Update(ctx, stale); !errors.Is(err, repository.ErrPreconditionFailed) {
		t.Fatalf("stale update err = %v; want ErrPreconditionFailed", err)
	}

	got, err := repo.Get(ctx, g.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Player2ID != "bob" || got.Version != g.Version {
		t.Fatalf("got player2=%q version=%d; want bob/%d", got.Player2ID, got.Version, g.Version)
	}
	if len(got.Player1Ships) != 1 || got.Player1Ships[0].Type != game.Destroyer {
		t.Fatalf("fleet did not round trip: %+v", got.Player1Ships)
	}
	if got.Player1Board[0][1].Status != game.CellShip || got.Player1Board[0][1].ShipType != game.Destroyer {
		t.Fatalf("board did not round trip: %+v", got.Player1Board[0][1])
	}

	if _, err := repo.Get(ctx, uuid.NewString()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("get missing err = %v", err)
	}
}

func TestGameHistoryRepository_CreateGetByPlayer(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()
	repo := repository.NewGameHistoryRepository(db)

	player := "player-" + uuid.NewString()
	g := game.New(uuid.NewString(), player, time.Now())
	if err := repository.NewGameRepository(db).Create(ctx, g); err != nil {
		t.Fatalf("create game: %v", err)
	}

	gh := &domain.GameHistory{
		PlayerID:   player,
		GameID:     g.ID,
		OpponentID: "opponent",
		Role:       string(game.Player1),
		Result:     domain.GameResultWin,
		ShotsFired: 40,
	}
	if err := repo.Create(ctx, gh); err != nil {
		t.Fatalf("create history: %v", err)
	}
	if err := repo.Create(ctx, gh); err != nil {
		t.Fatalf("create duplicate history: %v", err)
	}

	records, err := repo.GetByPlayer(ctx, player, 10)
	if err != nil {
		t.Fatalf("get by player: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Result != domain.GameResultWin || records[0].ShotsFired != 40 {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}
