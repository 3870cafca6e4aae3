package game

import "time"

// View is one player's projection of a Game. It is the only form of game
// state that leaves the server: the opponent's unhit ship cells and ship
// positions are never part of it.
type View struct {
	ID           string    `json:"id"`
	You          Role      `json:"you"`
	Player1ID    string    `json:"player1_id"`
	Player2ID    string    `json:"player2_id,omitempty"`
	Phase        Phase     `json:"phase"`
	CurrentTurn  Role      `json:"current_turn"`
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

// MaskBoard hides every ship cell that has not been hit. Hit, miss and sunk
// cells pass through. Masking a masked board changes nothing.
func MaskBoard(b Board) Board {
	for row := range b {
		for col := range b[row] {
			if b[row][col].Status == CellShip {
				b[row][col].Status = CellEmpty
				b[row][col].ShipType = 0
			}
		}
	}
	return b
}

// MaskFleet withholds ship positions while keeping type, length and sunk state.
func MaskFleet(f Fleet) Fleet {
	out := make(Fleet, len(f))
	for i, s := range f {
		out[i] = s
		out[i].Positions = []Position{}
	}
	return out
}

// NewView derives viewer's projection of g. The opponent's board and fleet
// are always masked. The viewer's own board shows its ships only while
// placing; once play starts it shows just the shot history. g is not modified.
func NewView(g *Game, viewer Role) *View {
	v := &View{
		ID:           g.ID,
		You:          viewer,
		Player1ID:    g.Player1ID,
		Player2ID:    g.Player2ID,
		Phase:        g.Phase,
		CurrentTurn:  g.CurrentTurn,
		Player1Board: g.Player1Board,
		Player2Board: g.Player2Board,
		Player1Ships: g.Player1Ships.Clone(),
		Player2Ships: g.Player2Ships.Clone(),
		Player1Ready: g.Player1Ready,
		Player2Ready: g.Player2Ready,
		Winner:       g.Winner,
		RematchID:    g.RematchID,
		Version:      g.Version,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}

	opponentBoard, opponentShips := &v.Player2Board, &v.Player2Ships
	ownBoard := &v.Player1Board
	if viewer == Player2 {
		opponentBoard, opponentShips = &v.Player1Board, &v.Player1Ships
		ownBoard = &v.Player2Board
	}

	*opponentBoard = MaskBoard(*opponentBoard)
	*opponentShips = MaskFleet(*opponentShips)

	if g.Phase == PhasePlaying || g.Phase == PhaseFinished {
		*ownBoard = MaskBoard(*ownBoard)
	}

	return v
}

// Views returns the projection for both seats.
func Views(g *Game) map[Role]*View {
	return map[Role]*View{
		Player1: NewView(g, Player1),
		Player2: NewView(g, Player2),
	}
}
