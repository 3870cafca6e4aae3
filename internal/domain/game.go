package domain

import "time"

// GameResult - outcome of a finished game for one player
type GameResult string

const (
	GameResultWin  GameResult = "win"
	GameResultLose GameResult = "lose"
)

// GameHistory - one player's record of a finished game
type GameHistory struct {
	ID         int64      `db:"id" json:"id"`
	PlayerID   string     `db:"player_id" json:"player_id"`
	GameID     string     `db:"game_id" json:"game_id"`
	OpponentID string     `db:"opponent_id" json:"opponent_id"`
	Role       string     `db:"role" json:"role"`
	Result     GameResult `db:"result" json:"result"`
	ShotsFired int        `db:"shots_fired" json:"shots_fired"`
	ShipsLost  int        `db:"ships_lost" json:"ships_lost"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
