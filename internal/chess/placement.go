package chess

import (
	"fmt"
	"strings"
)

// StartPlacement is the standard starting position.
const StartPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

// Placement renders the snapshot in FEN piece-placement form, rank 8 first.
func (s Snapshot) Placement() string {
	var sb strings.Builder
	for rank := int8(7); rank >= 0; rank-- {
		empty := 0
		for file := int8(0); file < 8; file++ {
			o, ok := s[Coord{File: file, Rank: rank}]
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(o.Kind.Letter(o.Color))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// ParsePlacement builds a board from a FEN piece-placement field. Only the
// placement is read; anything after the first space is ignored. Each side
// needs exactly one king. Pawns off their starting rank count as moved.
func ParsePlacement(s string) (*Board, error) {
	field := strings.TrimSpace(s)
	if i := strings.IndexByte(field, ' '); i >= 0 {
		field = field[:i]
	}
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("placement %q: want 8 ranks, got %d", s, len(ranks))
	}

	b := NewBoard()
	for i, row := range ranks {
		rank := int8(7 - i)
		file := int8(0)
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				file += int8(ch - '0')
				if file > 8 {
					return nil, fmt.Errorf("placement %q: rank %d overflows", s, rank+1)
				}
				continue
			}
			kind, color, ok := kindFromLetter(ch)
			if !ok {
				return nil, fmt.Errorf("placement %q: unknown piece %q on rank %d", s, ch, rank+1)
			}
			if file > 7 {
				return nil, fmt.Errorf("placement %q: rank %d overflows", s, rank+1)
			}
			p := &Piece{Kind: kind, Color: color, Coord: Coord{File: file, Rank: rank}}
			if kind == Pawn {
				p.HasMoved = rank != pawnHomeRank(color)
			}
			b.Place(p)
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("placement %q: rank %d has %d files", s, rank+1, file)
		}
	}
	for _, c := range []Color{White, Black} {
		if n := b.kingCount(c); n != 1 {
			return nil, fmt.Errorf("placement %q: %s has %d kings", s, c, n)
		}
	}
	return b, nil
}

func pawnHomeRank(c Color) int8 {
	if c == White {
		return 1
	}
	return 6
}
