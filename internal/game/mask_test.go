package game

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestMaskBoardIdempotent(t *testing.T) {
	g := newPlayingGame(t)
	if _, err := g.Attack(Player1, 0, 0, now); err != nil {
		t.Fatalf("hit: %v", err)
	}
	if _, err := g.Attack(Player1, 9, 9, now); err != nil {
		t.Fatalf("miss: %v", err)
	}

	once := MaskBoard(g.Player2Board)
	twice := MaskBoard(once)
	if once != twice {
		t.Fatalf("masking a masked board changed it")
	}
	if once.Count(CellShip) != 0 {
		t.Fatalf("masked board still has ship cells")
	}
	if once[0][0].Status != CellHit || once[9][9].Status != CellMiss {
		t.Fatalf("shot history lost: (0,0)=%s (9,9)=%s", once[0][0].Status, once[9][9].Status)
	}
	if once[0][1].ShipType != 0 {
		t.Fatalf("ship tag leaked on unhit cell")
	}

	fleetOnce := MaskFleet(g.Player2Ships)
	if !reflect.DeepEqual(fleetOnce, MaskFleet(fleetOnce)) {
		t.Fatalf("masking a masked fleet changed it")
	}
}

func TestViewHidesOpponentDuringPlacing(t *testing.T) {
	g := New("g1", "alice", now)
	if err := g.Join("bob", now); err != nil {
		t.Fatalf("join: %v", err)
	}
	placeFleet(t, g, Player1)
	placeFleet(t, g, Player2)
	g.Phase = PhasePlacing

	v := NewView(g, Player1)
	if v.You != Player1 {
		t.Fatalf("You = %s", v.You)
	}
	if v.Player1Board.Count(CellShip) != 17 {
		t.Fatalf("own board should show ships while placing, got %d", v.Player1Board.Count(CellShip))
	}
	if v.Player2Board.Count(CellShip) != 0 {
		t.Fatalf("opponent ship cells leaked")
	}
	for _, s := range v.Player2Ships {
		if len(s.Positions) != 0 {
			t.Fatalf("opponent %s positions leaked", s.Type)
		}
	}
	if len(v.Player2Ships) != FleetSize || len(v.Player1Ships[0].Positions) == 0 {
		t.Fatalf("ship summaries missing")
	}
}

func TestViewDuringPlayNeverShowsShipCells(t *testing.T) {
	g := newPlayingGame(t)
	if _, err := g.Attack(Player1, fleetRows[Destroyer], 0, now); err != nil {
		t.Fatalf("hit: %v", err)
	}
	if _, err := g.Attack(Player1, fleetRows[Destroyer], 1, now); err != nil {
		t.Fatalf("sink: %v", err)
	}
	before := g.Clone()

	for _, viewer := range []Role{Player1, Player2} {
		v := NewView(g, viewer)
		if v.Player1Board.Count(CellShip) != 0 || v.Player2Board.Count(CellShip) != 0 {
			t.Fatalf("%s view has ship cells during play", viewer)
		}
		if v.Player2Board.Count(CellSunk) != 2 {
			t.Fatalf("%s view lost sunk cells", viewer)
		}

		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if strings.Contains(string(raw), `"status":"ship"`) {
			t.Fatalf("%s view JSON contains a ship cell", viewer)
		}
	}

	p2 := NewView(g, Player2)
	for _, s := range p2.Player1Ships {
		if len(s.Positions) != 0 {
			t.Fatalf("player1 positions leaked to player2")
		}
	}
	for _, s := range p2.Player2Ships {
		if len(s.Positions) == 0 {
			t.Fatalf("player2 should still see its own ship positions")
		}
		if s.Type == Destroyer && !s.IsSunk {
			t.Fatalf("sunk flag missing in own fleet")
		}
	}

	if !reflect.DeepEqual(before, g) {
		t.Fatalf("NewView modified the game")
	}
}

func TestViewsCoversBothSeats(t *testing.T) {
	g := newPlayingGame(t)
	views := Views(g)
	if len(views) != 2 || views[Player1].You != Player1 || views[Player2].You != Player2 {
		t.Fatalf("unexpected views %+v", views)
	}
}
