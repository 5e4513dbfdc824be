package chess

import "fmt"

// Piece is a chess man placed on a Board. The Board owns it once placed;
// moving it mutates Coord and HasMoved rather than creating a new Piece.
type Piece struct {
	Kind     PieceKind
	Color    Color
	Coord    Coord
	HasMoved bool
}

type delta struct{ df, dr int8 }

var (
	rookDirs      = []delta{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirs    = []delta{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	kingOffsets   = []delta{{-1, 1}, {0, 1}, {1, 1}, {-1, 0}, {1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	knightOffsets = []delta{{1, 2}, {-1, 2}, {1, -2}, {-1, -2}, {-2, 1}, {-2, -1}, {2, 1}, {2, -1}}
)

// Destinations returns the pseudo-legal destination squares of p: every square its
// movement geometry reaches, ignoring what else stands on the board.
// It panics if p is not on the board.
func (p *Piece) Destinations() CoordSet {
	if !p.Coord.Valid() {
		panic(fmt.Sprintf("chess: destinations requested for off-board %s at %s", p.Kind, p.Coord))
	}
	var set CoordSet
	switch p.Kind {
	case Pawn:
		p.pawnDestinations(&set)
	case Rook:
		slide(&set, p.Coord, rookDirs)
	case Knight:
		jump(&set, p.Coord, knightOffsets)
	case Bishop:
		slide(&set, p.Coord, bishopDirs)
	case Queen:
		slide(&set, p.Coord, rookDirs)
		slide(&set, p.Coord, bishopDirs)
	case King:
		jump(&set, p.Coord, kingOffsets)
	default:
		panic(fmt.Sprintf("chess: unknown piece kind %d", uint8(p.Kind)))
	}
	return set
}

// pawnDestinations adds the advance squares and both forward diagonals.
// Advances and captures are not told apart here; Validate does that against occupancy.
func (p *Piece) pawnDestinations(set *CoordSet) {
	fwd := p.Color.forward()
	if one := p.Coord.offset(0, fwd); one.Valid() {
		set.add(one)
		if two := p.Coord.offset(0, 2*fwd); !p.HasMoved && two.Valid() {
			set.add(two)
		}
	}
	for _, df := range []int8{-1, 1} {
		if diag := p.Coord.offset(df, fwd); diag.Valid() {
			set.add(diag)
		}
	}
}

func slide(set *CoordSet, from Coord, dirs []delta) {
	for _, d := range dirs {
		for c := from.offset(d.df, d.dr); c.Valid(); c = c.offset(d.df, d.dr) {
			set.add(c)
		}
	}
}

func jump(set *CoordSet, from Coord, offsets []delta) {
	for _, d := range offsets {
		if c := from.offset(d.df, d.dr); c.Valid() {
			set.add(c)
		}
	}
}
