package repository

import (
	"context"

	"battleship/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameHistoryRepository struct {
	db *pgxpool.Pool
}

var _ HistoryStore = (*GameHistoryRepository)(nil)

func NewGameHistoryRepository(db *pgxpool.Pool) *GameHistoryRepository {
	return &GameHistoryRepository{db: db}
}

// Create stores one player's record of a finished game. A game is recorded
// at most once per player.
func (r *GameHistoryRepository) Create(ctx context.Context, gh *domain.GameHistory) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO game_history
			(player_id, game_id, opponent_id, role, result, shots_fired, ships_lost)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (game_id, player_id) DO UPDATE SET result = EXCLUDED.result
		 RETURNING id, created_at`,
		gh.PlayerID,
		gh.GameID,
		gh.OpponentID,
		gh.Role,
		gh.Result,
		gh.ShotsFired,
		gh.ShipsLost,
	).Scan(&gh.ID, &gh.CreatedAt)

	return err
}

// GetByPlayer returns the player's most recent games first.
func (r *GameHistoryRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*domain.GameHistory, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, player_id, game_id, opponent_id, role, result, shots_fired, ships_lost, created_at
		 FROM game_history
		 WHERE player_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanRows(rows)
}

func (r *GameHistoryRepository) scanRows(rows pgx.Rows) ([]*domain.GameHistory, error) {
	var res []*domain.GameHistory
	for rows.Next() {
		var gh domain.GameHistory
		var result string
		if err := rows.Scan(
			&gh.ID,
			&gh.PlayerID,
			&gh.GameID,
			&gh.OpponentID,
			&gh.Role,
			&result,
			&gh.ShotsFired,
			&gh.ShipsLost,
			&gh.CreatedAt,
		); err != nil {
			return nil, err
		}
		gh.Result = domain.GameResult(result)
		res = append(res, &gh)
	}
	return res, rows.Err()
}
