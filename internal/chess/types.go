package chess

import (
	"fmt"
	"strings"
)

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
}

// ParseColor accepts "white"/"w" and "black"/"b" in any case.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	}
	return White, false
}

// forward is the rank step a pawn of this color advances by.
func (c Color) forward() int8 {
	if c == White {
		return 1
	}
	return -1
}

// PieceKind is the closed set of piece types.
type PieceKind uint8

const (
	Pawn PieceKind = iota
	Rook
	Knight
	Bishop
	Queen
	King
)

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Rook:
		return "rook"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return fmt.Sprintf("PieceKind(%d)", uint8(k))
	}
}

// Letter returns the placement letter: uppercase for white, lowercase for black.
func (k PieceKind) Letter(c Color) byte {
	var l byte
	switch k {
	case Pawn:
		l = 'p'
	case Rook:
		l = 'r'
	case Knight:
		l = 'n'
	case Bishop:
		l = 'b'
	case Queen:
		l = 'q'
	case King:
		l = 'k'
	default:
		panic(fmt.Sprintf("chess: unknown piece kind %d", uint8(k)))
	}
	if c == White {
		l -= 'a' - 'A'
	}
	return l
}

func kindFromLetter(l byte) (PieceKind, Color, bool) {
	color := Black
	if l >= 'A' && l <= 'Z' {
		color = White
		l += 'a' - 'A'
	}
	switch l {
	case 'p':
		return Pawn, color, true
	case 'r':
		return Rook, color, true
	case 'n':
		return Knight, color, true
	case 'b':
		return Bishop, color, true
	case 'q':
		return Queen, color, true
	case 'k':
		return King, color, true
	}
	return 0, 0, false
}
