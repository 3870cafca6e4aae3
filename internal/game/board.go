package game

// BoardSize is the width and height of every board.
const BoardSize = 10

type CellStatus string

const (
	CellEmpty CellStatus = "empty"
	CellShip  CellStatus = "ship"
	CellHit   CellStatus = "hit"
	CellMiss  CellStatus = "miss"
	CellSunk  CellStatus = "sunk"
)

// Attacked reports whether a shot has already landed on a cell with this status.
func (s CellStatus) Attacked() bool {
	return s == CellHit || s == CellMiss || s == CellSunk
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Cell struct {
	Row      int        `json:"row"`
	Col      int        `json:"col"`
	Status   CellStatus `json:"status"`
	ShipType ShipType   `json:"ship_type,omitempty"`
}

// Board is a fixed-size grid. It is an array, so assigning or passing a Board
// copies it; no two games or requests can share the same cells.
type Board [BoardSize][BoardSize]Cell

// NewBoard returns an empty board with every cell stamped with its coordinates.
func NewBoard() Board {
	var b Board
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			b[row][col] = Cell{Row: row, Col: col, Status: CellEmpty}
		}
	}
	return b
}

// InBounds reports whether (row, col) lies on the board.
func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// Count returns how many cells currently have the given status.
func (b *Board) Count(status CellStatus) int {
	n := 0
	for row := range b {
		for col := range b[row] {
			if b[row][col].Status == status {
				n++
			}
		}
	}
	return n
}

// Shots returns how many cells have been attacked.
func (b *Board) Shots() int {
	return b.Count(CellHit) + b.Count(CellMiss) + b.Count(CellSunk)
}
