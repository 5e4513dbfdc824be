package chess

import (
	"sort"
	"strings"
	"testing"
)

func squares(set CoordSet) string {
	var names []string
	for _, c := range set.Coords() {
		names = append(names, c.String())
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}

func TestDestinations(t *testing.T) {
	cases := []struct {
		name  string
		piece Piece
		want  string
	}{
		{"white pawn unmoved", Piece{Kind: Pawn, Color: White, Coord: MustCoord("e2")}, "d3 e3 e4 f3"},
		{"white pawn moved", Piece{Kind: Pawn, Color: White, Coord: MustCoord("e4"), HasMoved: true}, "d5 e5 f5"},
		{"white pawn a-file", Piece{Kind: Pawn, Color: White, Coord: MustCoord("a2")}, "a3 a4 b3"},
		{"black pawn h-file", Piece{Kind: Pawn, Color: Black, Coord: MustCoord("h7")}, "g6 h5 h6"},
		{"black pawn unmoved", Piece{Kind: Pawn, Color: Black, Coord: MustCoord("d7")}, "c6 d5 d6 e6"},
		{"pawn on last rank", Piece{Kind: Pawn, Color: White, Coord: MustCoord("c8"), HasMoved: true}, ""},
		{"knight corner", Piece{Kind: Knight, Color: White, Coord: MustCoord("a1")}, "b3 c2"},
		{"knight center", Piece{Kind: Knight, Color: Black, Coord: MustCoord("d4")}, "b3 b5 c2 c6 e2 e6 f3 f5"},
		{"king corner", Piece{Kind: King, Color: White, Coord: MustCoord("h1")}, "g1 g2 h2"},
		{"king center", Piece{Kind: King, Color: White, Coord: MustCoord("e4")}, "d3 d4 d5 e3 e5 f3 f4 f5"},
		{"bishop corner", Piece{Kind: Bishop, Color: White, Coord: MustCoord("a1")}, "b2 c3 d4 e5 f6 g7 h8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.piece
			if got := squares(p.Destinations()); got != tc.want {
				t.Fatalf("destinations = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSliderCounts(t *testing.T) {
	d4 := MustCoord("d4")
	cases := map[PieceKind]int{Rook: 14, Bishop: 13, Queen: 27}
	for kind, want := range cases {
		p := &Piece{Kind: kind, Color: White, Coord: d4}
		set := p.Destinations()
		if set.Len() != want {
			t.Errorf("%s on d4: %d destinations, want %d", kind, set.Len(), want)
		}
		if set.Has(d4) {
			t.Errorf("%s destinations include its own square", kind)
		}
	}
	queen := (&Piece{Kind: Queen, Coord: d4}).Destinations()
	union := (&Piece{Kind: Rook, Coord: d4}).Destinations() | (&Piece{Kind: Bishop, Coord: d4}).Destinations()
	if queen != union {
		t.Fatalf("queen set is not the rook/bishop union")
	}
}

func TestDestinationsOffBoardPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for off-board piece")
		}
	}()
	p := &Piece{Kind: Rook, Coord: Coord{File: 9, Rank: 0}}
	p.Destinations()
}
