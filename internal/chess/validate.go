package chess

// RejectReason names why a move was refused. Rejections are ordinary
// outcomes reported back to the player, not errors.
type RejectReason string

const (
	RejectNone                     RejectReason = ""
	RejectInvalidFormat            RejectReason = "INVALID_FORMAT"
	RejectOutOfBounds              RejectReason = "OUT_OF_BOUNDS"
	RejectNoOp                     RejectReason = "NO_OP"
	RejectGameOver                 RejectReason = "GAME_OVER"
	RejectNotYourPiece             RejectReason = "NOT_YOUR_PIECE"
	RejectIllegalShape             RejectReason = "ILLEGAL_SHAPE"
	RejectPawnCannotCaptureEmpty   RejectReason = "PAWN_CANNOT_CAPTURE_EMPTY"
	RejectPawnCannotAdvanceBlocked RejectReason = "PAWN_CANNOT_ADVANCE_ONTO_OCCUPIED"
	RejectBlockedPath              RejectReason = "BLOCKED_PATH"
	RejectCaptureOwnPiece          RejectReason = "CANNOT_CAPTURE_OWN_PIECE"
	RejectKingCannotCapture        RejectReason = "KING_CANNOT_CAPTURE"
	RejectTwoKingsDestroyed        RejectReason = "TWO_KINGS_DESTROYED"
)

// RejectReasons lists every reason in check order, TWO_KINGS_DESTROYED last.
var RejectReasons = []RejectReason{
	RejectInvalidFormat,
	RejectOutOfBounds,
	RejectNoOp,
	RejectGameOver,
	RejectNotYourPiece,
	RejectIllegalShape,
	RejectPawnCannotCaptureEmpty,
	RejectPawnCannotAdvanceBlocked,
	RejectBlockedPath,
	RejectCaptureOwnPiece,
	RejectKingCannotCapture,
	RejectTwoKingsDestroyed,
}

func (r RejectReason) String() string { return string(r) }

// MoveKind tells a plain relocation from a capture.
type MoveKind uint8

const (
	Relocation MoveKind = iota
	Capture
)

func (k MoveKind) String() string {
	if k == Capture {
		return "capture"
	}
	return "move"
}

// Move is a validated move, ready to apply.
type Move struct {
	From  Coord
	To    Coord
	Kind  MoveKind
	Piece *Piece
}

// Validate checks a proposed move for the side to play. Checks run in a fixed
// order and the first failure is reported; the board is never modified.
func Validate(b *Board, status Status, turn Color, from, to string) (Move, RejectReason) {
	if coordFormat(from) != RejectNone || coordFormat(to) != RejectNone {
		return Move{}, RejectInvalidFormat
	}
	src, reason := coordBounds(from)
	if reason != RejectNone {
		return Move{}, reason
	}
	dst, reason := coordBounds(to)
	if reason != RejectNone {
		return Move{}, reason
	}
	if src == dst {
		return Move{}, RejectNoOp
	}
	if status.Finished() {
		return Move{}, RejectGameOver
	}

	piece, ok := b.Get(src)
	if !ok || piece.Color != turn {
		return Move{}, RejectNotYourPiece
	}
	if !piece.Destinations().Has(dst) {
		return Move{}, RejectIllegalShape
	}

	target, occupied := b.Get(dst)
	if piece.Kind == Pawn {
		diagonal := src.File != dst.File
		if diagonal && !occupied {
			return Move{}, RejectPawnCannotCaptureEmpty
		}
		if !diagonal && occupied {
			return Move{}, RejectPawnCannotAdvanceBlocked
		}
		// pawns only care about the destination square, a double advance
		// may pass over an occupied square
	}
	if piece.Kind != Knight && piece.Kind != Pawn && !pathClear(b, src, dst) {
		return Move{}, RejectBlockedPath
	}

	if !occupied {
		return Move{From: src, To: dst, Kind: Relocation, Piece: piece}, RejectNone
	}
	if target.Color == turn {
		return Move{}, RejectCaptureOwnPiece
	}
	if piece.Kind == King {
		return Move{}, RejectKingCannotCapture
	}
	return Move{From: src, To: dst, Kind: Capture, Piece: piece}, RejectNone
}

// pathClear walks the straight or diagonal line between from and to,
// both ends excluded, and reports whether every square on it is empty.
func pathClear(b *Board, from, to Coord) bool {
	df, dr := sign8(to.File-from.File), sign8(to.Rank-from.Rank)
	for c := from.offset(df, dr); c != to; c = c.offset(df, dr) {
		if !c.Valid() {
			return false
		}
		if _, occupied := b.Get(c); occupied {
			return false
		}
	}
	return true
}

func sign8(v int8) int8 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

