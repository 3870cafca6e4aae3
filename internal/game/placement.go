package game

import "fmt"

// footprint lists the cells a ship of type t would cover, without bounds checks.
func footprint(t ShipType, row, col int, horizontal bool) []Position {
	length := t.Length()
	cells := make([]Position, 0, length)
	for i := 0; i < length; i++ {
		if horizontal {
			cells = append(cells, Position{Row: row, Col: col + i})
		} else {
			cells = append(cells, Position{Row: row + i, Col: col})
		}
	}
	return cells
}

// IsValidPlacement reports whether a ship of type t fits on b starting at
// (row, col) and extending right (horizontal) or down. Every covered cell must
// be on the board and empty. Ships may touch.
func IsValidPlacement(b Board, t ShipType, row, col int, horizontal bool) bool {
	if !t.Valid() {
		return false
	}
	for _, p := range footprint(t, row, col, horizontal) {
		if !InBounds(p.Row, p.Col) {
			return false
		}
		if b[p.Row][p.Col].Status != CellEmpty {
			return false
		}
	}
	return true
}

// PlaceShip returns a copy of b with the ship's cells marked and tagged, and
// the placed ship. b itself is never modified. One-ship-per-type is enforced
// by Game.PlaceShip, not here.
func PlaceShip(b Board, t ShipType, row, col int, horizontal bool) (Board, Ship, error) {
	if !IsValidPlacement(b, t, row, col, horizontal) {
		return b, Ship{}, fmt.Errorf("%w: %s at (%d,%d) horizontal=%v", ErrInvalidPlacement, t, row, col, horizontal)
	}

	positions := footprint(t, row, col, horizontal)
	for _, p := range positions {
		b[p.Row][p.Col].Status = CellShip
		b[p.Row][p.Col].ShipType = t
	}

	return b, Ship{
		Type:      t,
		Length:    t.Length(),
		Positions: positions,
	}, nil
}
