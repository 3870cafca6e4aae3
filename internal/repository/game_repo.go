package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"battleship/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const gameColumns = `id, player1_id, COALESCE(player2_id, ''), phase, current_turn, first_turn,
		player1_board, player2_board, player1_ships, player2_ships,
		player1_ready, player2_ready, COALESCE(winner, ''), COALESCE(rematch_id, ''),
		version, created_at, updated_at`

type GameRepository struct {
	db *pgxpool.Pool
}

var _ GameStore = (*GameRepository)(nil)

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Create inserts a new game at version 1. An existing id is reported as
// ErrPreconditionFailed.
func (r *GameRepository) Create(ctx context.Context, g *game.Game) error {
	doc, err := encodeGame(g)
	if err != nil {
		return err
	}

	g.Version = 1
	_, err = r.db.Exec(ctx,
		`INSERT INTO games
			(id, player1_id, player2_id, phase, current_turn, first_turn,
			 player1_board, player2_board, player1_ships, player2_ships,
			 player1_ready, player2_ready, winner, rematch_id,
			 version, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12,
			 NULLIF($13, ''), NULLIF($14, ''), $15, $16, $17)`,
		g.ID, g.Player1ID, g.Player2ID, g.Phase, g.CurrentTurn, g.FirstTurn,
		doc.board1, doc.board2, doc.ships1, doc.ships2,
		g.Player1Ready, g.Player2Ready, g.Winner, g.RematchID,
		g.Version, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		g.Version = 0
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrPreconditionFailed
		}
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (r *GameRepository) Get(ctx context.Context, id string) (*game.Game, error) {
	row := r.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	g, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GameRepository) Update(ctx context.Context, g *game.Game) error {
	doc, err := encodeGame(g)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE games SET
			player2_id = NULLIF($3, ''), phase = $4, current_turn = $5, first_turn = $6,
			player1_board = $7, player2_board = $8, player1_ships = $9, player2_ships = $10,
			player1_ready = $11, player2_ready = $12, winner = NULLIF($13, ''),
			rematch_id = NULLIF($14, ''), updated_at = $15, version = version + 1
		 WHERE id = $1 AND version = $2`,
		g.ID, g.Version, g.Player2ID, g.Phase, g.CurrentTurn, g.FirstTurn,
		doc.board1, doc.board2, doc.ships1, doc.ships2,
		g.Player1Ready, g.Player2Ready, g.Winner, g.RematchID, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM games WHERE id = $1)`, g.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrPreconditionFailed
	}

	g.Version++
	return nil
}

func (r *GameRepository) FindOpen(ctx context.Context, limit int) ([]*game.Game, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+gameColumns+`
		 FROM games
		 WHERE phase IN ('waiting', 'placing') AND (player2_id IS NULL OR player2_id = '')
		 ORDER BY created_at
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

type gameDoc struct {
	board1, board2 []byte
	ships1, ships2 []byte
}

func encodeGame(g *game.Game) (gameDoc, error) {
	var doc gameDoc
	var err error
	if doc.board1, err = json.Marshal(g.Player1Board); err != nil {
		return doc, err
	}
	if doc.board2, err = json.Marshal(g.Player2Board); err != nil {
		return doc, err
	}
	if doc.ships1, err = json.Marshal(g.Player1Ships.Clone()); err != nil {
		return doc, err
	}
	if doc.ships2, err = json.Marshal(g.Player2Ships.Clone()); err != nil {
		return doc, err
	}
	return doc, nil
}

func scanGame(row pgx.Row) (*game.Game, error) {
	var (
		g              game.Game
		board1, board2 []byte
		ships1, ships2 []byte
		phase, turn    string
		first, winner  string
	)

	if err := row.Scan(
		&g.ID, &g.Player1ID, &g.Player2ID, &phase, &turn, &first,
		&board1, &board2, &ships1, &ships2,
		&g.Player1Ready, &g.Player2Ready, &winner, &g.RematchID,
		&g.Version, &g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return nil, err
	}

	g.Phase = game.Phase(phase)
	g.CurrentTurn = game.Role(turn)
	g.FirstTurn = game.Role(first)
	g.Winner = game.Role(winner)

	if err := json.Unmarshal(board1, &g.Player1Board); err != nil {
		return nil, fmt.Errorf("decode player1_board: %w", err)
	}
	if err := json.Unmarshal(board2, &g.Player2Board); err != nil {
		return nil, fmt.Errorf("decode player2_board: %w", err)
	}
	if err := json.Unmarshal(ships1, &g.Player1Ships); err != nil {
		return nil, fmt.Errorf("decode player1_ships: %w", err)
	}
	if err := json.Unmarshal(ships2, &g.Player2Ships); err != nil {
		return nil, fmt.Errorf("decode player2_ships: %w", err)
	}
	if g.Player1Ships == nil {
		g.Player1Ships = game.Fleet{}
	}
	if g.Player2Ships == nil {
		g.Player2Ships = game.Fleet{}
	}

	return &g, nil
}
