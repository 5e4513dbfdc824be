package chess

import "testing"

func TestStandardBoard(t *testing.T) {
	b := StandardBoard()
	if b.Len() != 32 {
		t.Fatalf("pieces = %d, want 32", b.Len())
	}
	if err := b.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
	for sq, want := range map[string]Occupant{
		"a1": {Rook, White}, "d1": {Queen, White}, "e1": {King, White}, "g1": {Knight, White},
		"e2": {Pawn, White}, "e7": {Pawn, Black}, "d8": {Queen, Black}, "e8": {King, Black}, "f8": {Bishop, Black},
	} {
		p, ok := b.Get(MustCoord(sq))
		if !ok || p.Kind != want.Kind || p.Color != want.Color {
			t.Errorf("%s = %+v, want %s %s", sq, p, want.Color, want.Kind)
		}
	}
}

func TestBoardPlaceClearMove(t *testing.T) {
	b := NewBoard()
	knight := &Piece{Kind: Knight, Color: Black, Coord: MustCoord("g8")}
	b.Place(knight)
	if p, ok := b.Get(MustCoord("g8")); !ok || p != knight {
		t.Fatalf("Get after Place returned %v", p)
	}

	moved := b.Move(MustCoord("g8"), MustCoord("f6"))
	if moved != knight || knight.Coord != MustCoord("f6") || !knight.HasMoved {
		t.Fatalf("Move did not relocate the same piece: %+v", knight)
	}
	if _, ok := b.Get(MustCoord("g8")); ok {
		t.Fatalf("origin still occupied")
	}
	if err := b.Check(); err != nil {
		t.Fatalf("Check after Move: %v", err)
	}

	if got := b.Clear(MustCoord("f6")); got != knight {
		t.Fatalf("Clear returned %v", got)
	}
	if got := b.Clear(MustCoord("f6")); got != nil {
		t.Fatalf("second Clear returned %v, want nil", got)
	}
	if b.Len() != 0 {
		t.Fatalf("board not empty: %d", b.Len())
	}
	if err := b.Check(); err != nil {
		t.Fatalf("Check after Clear: %v", err)
	}
}

func TestBoardPlaceOccupiedPanics(t *testing.T) {
	b := NewBoard()
	b.Place(&Piece{Kind: Rook, Color: White, Coord: MustCoord("a1")})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic placing onto an occupied square")
		}
	}()
	b.Place(&Piece{Kind: Rook, Color: Black, Coord: MustCoord("a1")})
}

func TestBoardCheckDetectsDrift(t *testing.T) {
	b := StandardBoard()
	p, _ := b.Get(MustCoord("e2"))
	p.Coord = MustCoord("e4")
	if err := b.Check(); err == nil {
		t.Fatalf("Check accepted a piece whose coordinate disagrees with its square")
	}
}
