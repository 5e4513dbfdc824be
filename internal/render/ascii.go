package render

import (
	"strings"

	"github.com/park285/atomic-chess-bot/internal/chess"
)

// Glyph returns the symbol used for a piece in text output. White takes the
// filled glyphs, which read better on dark terminals.
func Glyph(kind chess.PieceKind, color chess.Color) rune {
	filled := color == chess.White
	switch kind {
	case chess.Pawn:
		return pick(filled, '♟', '♙')
	case chess.Rook:
		return pick(filled, '♜', '♖')
	case chess.Knight:
		return pick(filled, '♞', '♘')
	case chess.Bishop:
		return pick(filled, '♝', '♗')
	case chess.Queen:
		return pick(filled, '♛', '♕')
	case chess.King:
		return pick(filled, '♚', '♔')
	}
	return '?'
}

func pick(cond bool, a, b rune) rune {
	if cond {
		return a
	}
	return b
}

// Text draws the board from perspective's side: rank 8 on top for White,
// rank 1 on top with files reversed for Black.
//
//	8  ['♖', '♘', '♗', '♕', '♔', '♗', '♘', '♖']
//	...
//	     A    B    C    D    E    F    G    H
func Text(s chess.Snapshot, perspective chess.Color) string {
	var b strings.Builder
	for row := 0; row < 8; row++ {
		rank := int8(7 - row)
		if perspective == chess.Black {
			rank = int8(row)
		}
		b.WriteByte(byte('1' + rank))
		b.WriteString("  [")
		for col := 0; col < 8; col++ {
			file := int8(col)
			if perspective == chess.Black {
				file = int8(7 - col)
			}
			if col > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('\'')
			if o, ok := s.At(chess.Coord{File: file, Rank: rank}); ok {
				b.WriteRune(Glyph(o.Kind, o.Color))
			} else {
				b.WriteByte(' ')
			}
			b.WriteByte('\'')
		}
		b.WriteString("]\n")
	}
	if perspective == chess.Black {
		b.WriteString("     H    G    F    E    D    C    B    A\n")
	} else {
		b.WriteString("     A    B    C    D    E    F    G    H\n")
	}
	return b.String()
}
