package game

import (
	"fmt"
	"time"
)

type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlacing  Phase = "placing"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

type Role string

const (
	Player1 Role = "player1"
	Player2 Role = "player2"
)

func (r Role) Valid() bool {
	return r == Player1 || r == Player2
}

// Opponent returns the other role.
func (r Role) Opponent() Role {
	if r == Player1 {
		return Player2
	}
	return Player1
}

// ParseRole validates a role coming from a client.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrUnknownPlayer, s)
	}
	return r, nil
}

// Game is the authoritative state of one match. Player ids are opaque.
// Version is bumped by the store on every committed change.
type Game struct {
	ID           string    `json:"id"`
	Player1ID    string    `json:"player1_id"`
	Player2ID    string    `json:"player2_id,omitempty"`
	Phase        Phase     `json:"phase"`
	CurrentTurn  Role      `json:"current_turn"`
	FirstTurn    Role      `json:"first_turn"`
	Player1Board Board     `json:"player1_board"`
	Player2Board Board     `json:"player2_board"`
	Player1Ships Fleet     `json:"player1_ships"`
	Player2Ships Fleet     `json:"player2_ships"`
	Player1Ready bool      `json:"player1_ready"`
	Player2Ready bool      `json:"player2_ready"`
	Winner       Role      `json:"winner,omitempty"`
	RematchID    string    `json:"rematch_id,omitempty"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// New creates a game owned by player1 that is open for an opponent.
// Player1 may start placing ships before anyone joins.
func New(id, player1ID string, now time.Time) *Game {
	return &Game{
		ID:           id,
		Player1ID:    player1ID,
		Phase:        PhasePlacing,
		CurrentTurn:  Player1,
		FirstTurn:    Player1,
		Player1Board: NewBoard(),
		Player2Board: NewBoard(),
		Player1Ships: Fleet{},
		Player2Ships: Fleet{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy. Boards are arrays and copy with the struct.
func (g *Game) Clone() *Game {
	c := *g
	c.Player1Ships = g.Player1Ships.Clone()
	c.Player2Ships = g.Player2Ships.Clone()
	return &c
}

// AwaitingOpponent reports whether the game still has an open second seat.
// waiting and placing-without-player2 are the same state.
func (g *Game) AwaitingOpponent() bool {
	return (g.Phase == PhaseWaiting || g.Phase == PhasePlacing) && g.Player2ID == ""
}

// RoleOf resolves a player id to its seat.
func (g *Game) RoleOf(playerID string) (Role, error) {
	switch {
	case playerID == "":
	case playerID == g.Player1ID:
		return Player1, nil
	case playerID == g.Player2ID:
		return Player2, nil
	}
	return "", ErrUnknownPlayer
}

func (g *Game) board(r Role) *Board {
	if r == Player1 {
		return &g.Player1Board
	}
	return &g.Player2Board
}

func (g *Game) fleet(r Role) *Fleet {
	if r == Player1 {
		return &g.Player1Ships
	}
	return &g.Player2Ships
}

func (g *Game) ready(r Role) *bool {
	if r == Player1 {
		return &g.Player1Ready
	}
	return &g.Player2Ready
}

// PlayerID returns the identity seated at r.
func (g *Game) PlayerID(r Role) string {
	if r == Player1 {
		return g.Player1ID
	}
	return g.Player2ID
}

// BoardOf returns a copy of r's board.
func (g *Game) BoardOf(r Role) Board {
	return *g.board(r)
}

// FleetOf returns a copy of r's fleet.
func (g *Game) FleetOf(r Role) Fleet {
	return g.fleet(r).Clone()
}
