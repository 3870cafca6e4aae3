package game

import "fmt"

// ShipType is a closed set. Adding a type means adding a constant here and a
// case in Length and String; FleetTypes drives fleet completeness.
type ShipType uint8

const (
	Carrier ShipType = iota + 1
	Battleship
	Cruiser
	Submarine
	Destroyer
)

// FleetTypes lists every ship a complete fleet holds, one of each.
var FleetTypes = [...]ShipType{Carrier, Battleship, Cruiser, Submarine, Destroyer}

// FleetSize is the number of ships in a complete fleet.
const FleetSize = len(FleetTypes)

// Length returns how many cells a ship of this type occupies, 0 for an unknown type.
func (t ShipType) Length() int {
	switch t {
	case Carrier:
		return 5
	case Battleship:
		return 4
	case Cruiser:
		return 3
	case Submarine:
		return 3
	case Destroyer:
		return 2
	}
	return 0
}

func (t ShipType) Valid() bool {
	return t.Length() > 0
}

func (t ShipType) String() string {
	switch t {
	case Carrier:
		return "carrier"
	case Battleship:
		return "battleship"
	case Cruiser:
		return "cruiser"
	case Submarine:
		return "submarine"
	case Destroyer:
		return "destroyer"
	}
	return ""
}

// ParseShipType converts the wire name of a ship type.
func ParseShipType(s string) (ShipType, error) {
	for _, t := range FleetTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown ship type %q", ErrInvalidPlacement, s)
}

func (t ShipType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ShipType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*t = 0
		return nil
	}
	parsed, err := ParseShipType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type Ship struct {
	Type      ShipType   `json:"type"`
	Length    int        `json:"length"`
	Positions []Position `json:"positions"`
	IsSunk    bool       `json:"is_sunk"`
}

// Occupies reports whether the ship covers (row, col).
func (s *Ship) Occupies(row, col int) bool {
	for _, p := range s.Positions {
		if p.Row == row && p.Col == col {
			return true
		}
	}
	return false
}

// Fleet is the set of ships one player has placed.
type Fleet []Ship

// Clone deep-copies the fleet, including position slices.
func (f Fleet) Clone() Fleet {
	if f == nil {
		return Fleet{}
	}
	out := make(Fleet, len(f))
	for i, s := range f {
		out[i] = s
		out[i].Positions = append([]Position(nil), s.Positions...)
	}
	return out
}

// Has reports whether a ship of type t has been placed.
func (f Fleet) Has(t ShipType) bool {
	for _, s := range f {
		if s.Type == t {
			return true
		}
	}
	return false
}

// Complete reports whether every fleet type has been placed.
func (f Fleet) Complete() bool {
	for _, t := range FleetTypes {
		if !f.Has(t) {
			return false
		}
	}
	return true
}

// AllSunk reports whether a non-empty fleet has no ship left afloat.
func (f Fleet) AllSunk() bool {
	if len(f) == 0 {
		return false
	}
	for _, s := range f {
		if !s.IsSunk {
			return false
		}
	}
	return true
}

// Afloat counts ships that are not sunk.
func (f Fleet) Afloat() int {
	n := 0
	for _, s := range f {
		if !s.IsSunk {
			n++
		}
	}
	return n
}
