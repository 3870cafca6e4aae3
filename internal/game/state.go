package game

import (
	"fmt"
	"time"
)

// AttackResult is the outcome of a shot plus the phase transition it caused.
type AttackResult struct {
	AttackOutcome
	Row       int   `json:"row"`
	Col       int   `json:"col"`
	Phase     Phase `json:"phase"`
	NextTurn  Role  `json:"next_turn"`
	Winner    Role  `json:"winner,omitempty"`
	Remaining int   `json:"remaining"`
}

// Join seats player2. It fails with ErrGameFull once the seat is taken.
func (g *Game) Join(player2ID string, now time.Time) error {
	if player2ID == "" {
		return fmt.Errorf("%w: empty player id", ErrUnknownPlayer)
	}
	if g.Player2ID != "" {
		return ErrGameFull
	}
	if g.Phase != PhaseWaiting && g.Phase != PhasePlacing {
		return fmt.Errorf("%w: cannot join a %s game", ErrInvalidPhase, g.Phase)
	}
	if player2ID == g.Player1ID {
		return fmt.Errorf("%w: cannot join your own game", ErrGameFull)
	}

	g.Player2ID = player2ID
	g.Phase = PhasePlacing
	g.UpdatedAt = now
	return nil
}

// PlaceShip puts one ship on r's board. Each type may be placed once; the
// fleet becoming complete sets r's ready flag, and both flags together start
// play with FirstTurn to move.
func (g *Game) PlaceShip(r Role, t ShipType, row, col int, horizontal bool, now time.Time) (Ship, error) {
	if !r.Valid() {
		return Ship{}, fmt.Errorf("%w: unknown role %q", ErrUnknownPlayer, r)
	}
	if g.Phase != PhasePlacing && g.Phase != PhaseWaiting {
		return Ship{}, fmt.Errorf("%w: ships can only be placed while placing, game is %s", ErrInvalidPhase, g.Phase)
	}
	if g.PlayerID(r) == "" {
		return Ship{}, fmt.Errorf("%w: %s has not joined", ErrUnknownPlayer, r)
	}
	if !t.Valid() {
		return Ship{}, fmt.Errorf("%w: unknown ship type", ErrInvalidPlacement)
	}

	fleet := g.fleet(r)
	if fleet.Has(t) {
		return Ship{}, fmt.Errorf("%w: %s already placed", ErrInvalidPlacement, t)
	}

	board, ship, err := PlaceShip(*g.board(r), t, row, col, horizontal)
	if err != nil {
		return Ship{}, err
	}

	*g.board(r) = board
	*fleet = append(fleet.Clone(), ship)
	if fleet.Complete() {
		*g.ready(r) = true
	}

	if g.Player1Ready && g.Player2Ready {
		g.Phase = PhasePlaying
		if !g.FirstTurn.Valid() {
			g.FirstTurn = Player1
		}
		g.CurrentTurn = g.FirstTurn
	}

	g.UpdatedAt = now
	return ship, nil
}

// Attack fires r's shot at the opponent's board. A miss passes the turn, a
// hit keeps it, and sinking the last ship finishes the game with r as winner.
func (g *Game) Attack(r Role, row, col int, now time.Time) (AttackResult, error) {
	if !r.Valid() {
		return AttackResult{}, fmt.Errorf("%w: unknown role %q", ErrUnknownPlayer, r)
	}
	if g.Phase != PhasePlaying {
		return AttackResult{}, fmt.Errorf("%w: attacks need a playing game, game is %s", ErrInvalidPhase, g.Phase)
	}
	if g.CurrentTurn != r {
		return AttackResult{}, ErrNotYourTurn
	}

	target := r.Opponent()
	board, fleet, out, err := Attack(*g.board(target), *g.fleet(target), row, col)
	if err != nil {
		return AttackResult{}, err
	}

	*g.board(target) = board
	*g.fleet(target) = fleet

	switch {
	case fleet.AllSunk():
		g.Phase = PhaseFinished
		g.Winner = r
	case !out.Hit:
		g.CurrentTurn = target
	}
	g.UpdatedAt = now

	return AttackResult{
		AttackOutcome: out,
		Row:           row,
		Col:           col,
		Phase:         g.Phase,
		NextTurn:      g.CurrentTurn,
		Winner:        g.Winner,
		Remaining:     fleet.Afloat(),
	}, nil
}

// Rematch builds a fresh game for the same two players. The previous loser
// moves first. It only works on a finished game.
func (g *Game) Rematch(id string, now time.Time) (*Game, error) {
	if g.Phase != PhaseFinished {
		return nil, fmt.Errorf("%w: rematch needs a finished game, game is %s", ErrInvalidPhase, g.Phase)
	}

	next := New(id, g.Player1ID, now)
	next.Player2ID = g.Player2ID
	next.FirstTurn = Player1
	if g.Winner.Valid() {
		next.FirstTurn = g.Winner.Opponent()
	}
	next.CurrentTurn = next.FirstTurn
	return next, nil
}
