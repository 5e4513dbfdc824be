package chess

// Status is the game state: in progress, or won by one side. Once won it never changes.
type Status struct {
	finished bool
	winner   Color
}

// InProgress is the status of a game still being played.
var InProgress = Status{}

// WonBy returns the finished status with c as winner.
func WonBy(c Color) Status { return Status{finished: true, winner: c} }

// Finished reports whether the game has a winner.
func (s Status) Finished() bool { return s.finished }

// Winner returns the winning side, if any.
func (s Status) Winner() (Color, bool) { return s.winner, s.finished }

func (s Status) String() string {
	if !s.finished {
		return "UNFINISHED"
	}
	if s.winner == White {
		return "WHITE_WON"
	}
	return "BLACK_WON"
}

// ParseStatus reverses Status.String.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "UNFINISHED":
		return InProgress, true
	case "WHITE_WON":
		return WonBy(White), true
	case "BLACK_WON":
		return WonBy(Black), true
	}
	return InProgress, false
}

// MoveResult reports the outcome of SubmitMove.
type MoveResult struct {
	Accepted bool
	Reason   RejectReason

	From  Coord
	To    Coord
	Mover Color
	Kind  PieceKind

	Captured      bool
	KingDestroyed bool
	// Cleared lists the squares emptied by an explosion, attacker's origin included.
	Cleared []Coord
}

func rejected(reason RejectReason) MoveResult {
	return MoveResult{Reason: reason}
}

// Game sequences validation, explosion and turn bookkeeping for a single match.
// A Game is not safe for concurrent use; callers serialize access per game.
type Game struct {
	board  *Board
	turn   Color
	status Status
}

// NewGame sets up the standard starting position with White to move.
func NewGame() *Game {
	return &Game{board: StandardBoard(), turn: White, status: InProgress}
}

// NewGameFromPlacement starts a game from a placement string with turn to move.
func NewGameFromPlacement(placement string, turn Color) (*Game, error) {
	b, err := ParsePlacement(placement)
	if err != nil {
		return nil, err
	}
	return &Game{board: b, turn: turn, status: InProgress}, nil
}

// Turn returns the side to move. Once the game is over it stays on the side that made the last move.
func (g *Game) Turn() Color { return g.turn }

// Status returns the game status.
func (g *Game) Status() Status { return g.status }

// SubmitMove validates and applies from -> to for the side to move.
// A rejected move leaves board, turn and status exactly as they were.
func (g *Game) SubmitMove(from, to string) MoveResult {
	if g == nil || g.board == nil {
		panic("chess: SubmitMove on uninitialized game")
	}
	mv, reason := Validate(g.board, g.status, g.turn, from, to)
	if reason != RejectNone {
		return rejected(reason)
	}

	res := MoveResult{
		Accepted: true,
		From:     mv.From,
		To:       mv.To,
		Mover:    g.turn,
		Kind:     mv.Piece.Kind,
	}

	if mv.Kind == Relocation {
		g.board.Move(mv.From, mv.To)
		g.turn = g.turn.Opponent()
		return res
	}

	blast, ok := ResolveExplosion(g.board, mv.From, mv.To)
	if !ok {
		return rejected(RejectTwoKingsDestroyed)
	}
	res.Captured = true
	res.KingDestroyed = blast.KingDestroyed
	res.Cleared = blast.Cleared()
	if blast.KingDestroyed {
		// the mover wins even when the blast took their own king
		g.status = WonBy(g.turn)
		return res
	}
	g.turn = g.turn.Opponent()
	return res
}

// Occupant is what a snapshot shows on a square.
type Occupant struct {
	Kind  PieceKind
	Color Color
}

// Snapshot maps each occupied square to its occupant; absent squares are empty.
type Snapshot map[Coord]Occupant

// At returns the occupant of c, if any.
func (s Snapshot) At(c Coord) (Occupant, bool) {
	o, ok := s[c]
	return o, ok
}

// Snapshot copies the current occupancy for display.
func (g *Game) Snapshot() Snapshot {
	return snapshotOf(g.board)
}

func snapshotOf(b *Board) Snapshot {
	out := make(Snapshot, b.Len())
	for _, p := range b.Pieces() {
		out[p.Coord] = Occupant{Kind: p.Kind, Color: p.Color}
	}
	return out
}

// Placement returns the current position as a placement string.
func (g *Game) Placement() string {
	return g.Snapshot().Placement()
}
