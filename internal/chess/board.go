package chess

import "fmt"

// Board is the authoritative occupancy of the 64 squares. It keeps the square
// array and a coordinate index in step; only its own methods touch either.
// Callers pass on-board coordinates.
type Board struct {
	cells [64]*Piece
	index map[Coord]*Piece
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{index: make(map[Coord]*Piece, 32)}
}

var backRank = [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StandardBoard returns the 32-piece starting position.
func StandardBoard() *Board {
	b := NewBoard()
	for file := int8(0); file < 8; file++ {
		b.Place(&Piece{Kind: backRank[file], Color: White, Coord: Coord{File: file, Rank: 0}})
		b.Place(&Piece{Kind: Pawn, Color: White, Coord: Coord{File: file, Rank: 1}})
		b.Place(&Piece{Kind: Pawn, Color: Black, Coord: Coord{File: file, Rank: 6}})
		b.Place(&Piece{Kind: backRank[file], Color: Black, Coord: Coord{File: file, Rank: 7}})
	}
	return b
}

// Get returns the piece on c, if any.
func (b *Board) Get(c Coord) (*Piece, bool) {
	p := b.cells[c.index()]
	return p, p != nil
}

// Place puts p on the square named by p.Coord. Placing onto an occupied square panics.
func (b *Board) Place(p *Piece) {
	if cur := b.cells[p.Coord.index()]; cur != nil {
		panic(fmt.Sprintf("chess: place %s on %s occupied by %s", p.Kind, p.Coord, cur.Kind))
	}
	b.cells[p.Coord.index()] = p
	b.index[p.Coord] = p
}

// Clear empties c and returns whatever stood there. Clearing an empty square is a no-op.
func (b *Board) Clear(c Coord) *Piece {
	p := b.cells[c.index()]
	if p == nil {
		return nil
	}
	b.cells[c.index()] = nil
	delete(b.index, c)
	return p
}

// Move relocates the piece on from to the empty square to and marks it moved.
func (b *Board) Move(from, to Coord) *Piece {
	p := b.cells[from.index()]
	if p == nil {
		panic(fmt.Sprintf("chess: move from empty square %s", from))
	}
	if b.cells[to.index()] != nil {
		panic(fmt.Sprintf("chess: move onto occupied square %s", to))
	}
	b.cells[from.index()] = nil
	delete(b.index, from)
	p.Coord = to
	p.HasMoved = true
	b.cells[to.index()] = p
	b.index[to] = p
	return p
}

// Pieces lists the pieces on the board from a1 to h8.
func (b *Board) Pieces() []*Piece {
	out := make([]*Piece, 0, len(b.index))
	for _, p := range b.cells {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of pieces on the board.
func (b *Board) Len() int { return len(b.index) }

// Check verifies that the square array and the index agree with every
// piece's own coordinate.
func (b *Board) Check() error {
	occupied := 0
	for i, p := range b.cells {
		if p == nil {
			continue
		}
		occupied++
		c := coordAt(i)
		if p.Coord != c {
			return fmt.Errorf("square %s holds %s %s claiming %s", c, p.Color, p.Kind, p.Coord)
		}
		if b.index[c] != p {
			return fmt.Errorf("index entry for %s does not match the square", c)
		}
	}
	if occupied != len(b.index) {
		return fmt.Errorf("index has %d entries for %d occupied squares", len(b.index), occupied)
	}
	return nil
}

func (b *Board) kingCount(c Color) int {
	n := 0
	for _, p := range b.index {
		if p.Kind == King && p.Color == c {
			n++
		}
	}
	return n
}
