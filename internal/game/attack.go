package game

import "fmt"

// AttackOutcome is what a single shot did to the target board.
type AttackOutcome struct {
	Hit      bool     `json:"hit"`
	Sunk     bool     `json:"sunk"`
	ShipType ShipType `json:"ship_type,omitempty"`
}

// Attack fires at (row, col) on b and returns the updated board and fleet.
// The inputs are not modified. Shooting off the board or at a cell that was
// already hit, missed or sunk fails with ErrInvalidAttack.
func Attack(b Board, f Fleet, row, col int) (Board, Fleet, AttackOutcome, error) {
	if !InBounds(row, col) {
		return b, f, AttackOutcome{}, fmt.Errorf("%w: cell (%d,%d) out of range", ErrInvalidAttack, row, col)
	}
	if b[row][col].Status.Attacked() {
		return b, f, AttackOutcome{}, fmt.Errorf("%w: cell (%d,%d) already attacked", ErrInvalidAttack, row, col)
	}

	fleet := f.Clone()

	if b[row][col].Status != CellShip {
		b[row][col].Status = CellMiss
		return b, fleet, AttackOutcome{}, nil
	}

	b[row][col].Status = CellHit
	out := AttackOutcome{Hit: true}

	for i := range fleet {
		ship := &fleet[i]
		if !ship.Occupies(row, col) {
			continue
		}
		out.ShipType = ship.Type

		allHit := true
		for _, p := range ship.Positions {
			if b[p.Row][p.Col].Status != CellHit {
				allHit = false
				break
			}
		}
		if allHit {
			ship.IsSunk = true
			out.Sunk = true
			for _, p := range ship.Positions {
				b[p.Row][p.Col].Status = CellSunk
			}
		}
		break
	}

	return b, fleet, out, nil
}
