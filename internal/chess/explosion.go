package chess

// Explosion describes what a resolved capture removed.
type Explosion struct {
	// Blast holds the captured square followed by every non-pawn neighbour
	// it swept away. The attacker's origin square is not listed here.
	Blast         []Coord
	Attacker      Coord
	KingDestroyed bool
	// Victim is the color of the destroyed king; meaningful only when KingDestroyed.
	Victim Color
}

// Cleared returns every square emptied by the capture, blast first, then the attacker.
func (e Explosion) Cleared() []Coord {
	out := make([]Coord, 0, len(e.Blast)+1)
	out = append(out, e.Blast...)
	for _, c := range e.Blast {
		if c == e.Attacker {
			return out
		}
	}
	return append(out, e.Attacker)
}

// blastSquares collects the capture square plus every occupied, non-pawn
// square in the 3x3 block around it.
func blastSquares(b *Board, at Coord) []Coord {
	blast := []Coord{at}
	for _, d := range kingOffsets {
		c := at.offset(d.df, d.dr)
		if !c.Valid() {
			continue
		}
		if p, ok := b.Get(c); ok && p.Kind != Pawn {
			blast = append(blast, c)
		}
	}
	return blast
}

// ResolveExplosion applies a validated capture from -> to. It returns false and
// leaves the board untouched when the blast would take both kings at once.
// Otherwise the blast is cleared and, as a separate step, the attacking piece
// is removed from its origin square: it never lands on to.
func ResolveExplosion(b *Board, from, to Coord) (Explosion, bool) {
	blast := blastSquares(b, to)

	kings := 0
	var victim Color
	for _, c := range blast {
		if p, ok := b.Get(c); ok && p.Kind == King {
			kings++
			victim = p.Color
		}
	}
	if kings > 1 {
		return Explosion{}, false
	}

	for _, c := range blast {
		b.Clear(c)
	}
	b.Clear(from)

	return Explosion{
		Blast:         blast,
		Attacker:      from,
		KingDestroyed: kings == 1,
		Victim:        victim,
	}, true
}
