package chess

import (
	"fmt"
	"math/bits"
	"unicode"
)

// Coord is a board square. File 0 is column a, Rank 0 is row 1.
type Coord struct {
	File int8
	Rank int8
}

// Valid reports whether c lies on the 8x8 board.
func (c Coord) Valid() bool {
	return c.File >= 0 && c.File < 8 && c.Rank >= 0 && c.Rank < 8
}

// String renders c in lowercase algebraic form ("e4").
func (c Coord) String() string {
	if !c.Valid() {
		return fmt.Sprintf("(%d,%d)", c.File, c.Rank)
	}
	return string([]byte{'a' + byte(c.File), '1' + byte(c.Rank)})
}

func (c Coord) index() int { return int(c.Rank)*8 + int(c.File) }

func (c Coord) offset(df, dr int8) Coord {
	return Coord{File: c.File + df, Rank: c.Rank + dr}
}

func coordAt(index int) Coord {
	return Coord{File: int8(index % 8), Rank: int8(index / 8)}
}

// ParseCoord reads a two character coordinate such as "e4" or "E4".
// A string that is not a letter followed by a digit yields RejectInvalidFormat;
// a well-formed string naming a square off the board yields RejectOutOfBounds.
func ParseCoord(s string) (Coord, RejectReason) {
	if reason := coordFormat(s); reason != RejectNone {
		return Coord{}, reason
	}
	return coordBounds(s)
}

func coordFormat(s string) RejectReason {
	r := []rune(s)
	if len(r) != 2 || !unicode.IsLetter(r[0]) || !unicode.IsDigit(r[1]) {
		return RejectInvalidFormat
	}
	return RejectNone
}

// coordBounds assumes s already passed coordFormat.
func coordBounds(s string) (Coord, RejectReason) {
	r := []rune(s)
	file := unicode.ToLower(r[0])
	if file < 'a' || file > 'h' || r[1] < '1' || r[1] > '8' {
		return Coord{}, RejectOutOfBounds
	}
	return Coord{File: int8(file - 'a'), Rank: int8(r[1] - '1')}, RejectNone
}

// MustCoord is ParseCoord for literals; it panics on bad input.
func MustCoord(s string) Coord {
	c, reason := ParseCoord(s)
	if reason != RejectNone {
		panic(fmt.Sprintf("chess: bad coordinate %q: %s", s, reason))
	}
	return c
}

// CoordSet is a set of board squares, one bit per square.
type CoordSet uint64

// Has reports whether c is in the set. Off-board coordinates are never members.
func (s CoordSet) Has(c Coord) bool {
	if !c.Valid() {
		return false
	}
	return s&(1<<uint(c.index())) != 0
}

func (s *CoordSet) add(c Coord) {
	*s |= 1 << uint(c.index())
}

// Len returns the number of squares in the set.
func (s CoordSet) Len() int { return bits.OnesCount64(uint64(s)) }

// Coords lists the members from a1 to h8, rank by rank.
func (s CoordSet) Coords() []Coord {
	out := make([]Coord, 0, s.Len())
	for rest := uint64(s); rest != 0; rest &= rest - 1 {
		out = append(out, coordAt(bits.TrailingZeros64(rest)))
	}
	return out
}
