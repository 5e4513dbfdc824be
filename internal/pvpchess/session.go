package pvpchess

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/park285/atomic-chess-bot/internal/chess"
)

// NewGameID returns a fresh game identifier.
func NewGameID() string { return "atomic-" + uuid.NewString() }

// NewGame builds an ACTIVE game record from p. Colors follow p.Color; random
// uses crypto/rand.
func NewGame(p CreateParams, now time.Time) (*Game, error) {
	challenger := strings.TrimSpace(p.ChallengerID)
	target := strings.TrimSpace(p.TargetID)
	if challenger == "" || target == "" {
		return nil, ErrInvalidArgs
	}
	if challenger == target {
		return nil, ErrSelfChallenge
	}

	start := strings.TrimSpace(p.Placement)
	if start == "" {
		start = chess.StartPlacement
	}
	startTurn := p.StartTurn
	if startTurn != Black {
		startTurn = White
	}
	eng, err := chess.NewGameFromPlacement(start, startTurn.Engine())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}

	whiteID, whiteName := challenger, strings.TrimSpace(p.ChallengerName)
	blackID, blackName := target, strings.TrimSpace(p.TargetName)
	switch strings.ToLower(strings.TrimSpace(p.Color)) {
	case "white", "w":
	case "black", "b":
		whiteID, whiteName, blackID, blackName = blackID, blackName, whiteID, whiteName
	default:
		if n, _ := rand.Int(rand.Reader, big.NewInt(2)); n != nil && n.Int64() == 0 {
			whiteID, whiteName, blackID, blackName = blackID, blackName, whiteID, whiteName
		}
	}

	return &Game{
		ID:             NewGameID(),
		StartPlacement: start,
		StartTurn:      startTurn,
		Placement:      eng.Placement(),
		Moves:          []MoveRecord{},
		Turn:           startTurn,
		Status:         StatusActive,
		Result:         eng.Status().String(),
		WhiteID:        whiteID,
		WhiteName:      whiteName,
		BlackID:        blackID,
		BlackName:      blackName,
		OriginRoom:     strings.TrimSpace(p.OriginRoom),
		ResolveRoom:    strings.TrimSpace(p.ResolveRoom),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Engine replays the stored moves on a fresh engine.
func (g *Game) Engine() (*chess.Game, error) {
	start := g.StartPlacement
	if start == "" {
		start = chess.StartPlacement
	}
	eng, err := chess.NewGameFromPlacement(start, g.StartTurn.Engine())
	if err != nil {
		return nil, fmt.Errorf("rebuild %s: %w", g.ID, err)
	}
	for i, mv := range g.Moves {
		if res := eng.SubmitMove(mv.From, mv.To); !res.Accepted {
			return nil, fmt.Errorf("rebuild %s: ply %d %s rejected: %s", g.ID, i+1, mv.Notation(), res.Reason)
		}
	}
	return eng, nil
}

// ColorOf returns the side userID plays.
func (g *Game) ColorOf(userID string) (Color, bool) {
	switch strings.TrimSpace(userID) {
	case "":
		return "", false
	case g.WhiteID:
		return White, true
	case g.BlackID:
		return Black, true
	}
	return "", false
}

// OpponentID returns the other player's ID, or "" for non-participants.
func (g *Game) OpponentID(userID string) string {
	switch strings.TrimSpace(userID) {
	case g.WhiteID:
		return g.BlackID
	case g.BlackID:
		return g.WhiteID
	}
	return ""
}

// NameOf returns the display name for a side.
func (g *Game) NameOf(c Color) string {
	if c == Black {
		return g.BlackName
	}
	return g.WhiteName
}

// IDOf returns the player ID for a side.
func (g *Game) IDOf(c Color) string {
	if c == Black {
		return g.BlackID
	}
	return g.WhiteID
}

// InRoom reports whether the game is bound to room.
func (g *Game) InRoom(room string) bool {
	room = strings.TrimSpace(room)
	return room != "" && (g.OriginRoom == room || g.ResolveRoom == room)
}

// Apply plays text for userID on the record. The record is only modified
// when the move is accepted.
func (g *Game) Apply(userID, text string, now time.Time) (MoveOutcome, error) {
	var out MoveOutcome
	color, ok := g.ColorOf(userID)
	if !ok {
		return out, ErrNotParticipant
	}
	if g.Status != StatusActive {
		out.Result = chess.MoveResult{Reason: chess.RejectGameOver}
		return out, nil
	}
	if color != g.Turn {
		out.NotYourTurn = true
		return out, nil
	}
	from, to, ok := chess.ParseMoveText(text)
	if !ok {
		out.Result = chess.MoveResult{Reason: chess.RejectInvalidFormat}
		return out, nil
	}

	eng, err := g.Engine()
	if err != nil {
		return out, err
	}
	res := eng.SubmitMove(from, to)
	out.Result = res
	if !res.Accepted {
		return out, nil
	}

	rec := MoveRecord{From: res.From.String(), To: res.To.String(), Capture: res.Captured}
	for _, c := range res.Cleared {
		rec.Cleared = append(rec.Cleared, c.String())
	}
	g.Moves = append(g.Moves, rec)
	g.LastCleared = rec.Cleared
	g.Placement = eng.Placement()
	g.Turn = ColorOf(eng.Turn())
	g.Result = eng.Status().String()
	g.UpdatedAt = now
	if winner, done := eng.Status().Winner(); done {
		g.Status = StatusFinished
		g.Outcome = string(ColorOf(winner))
		g.Winner = g.IDOf(ColorOf(winner))
	}
	return out, nil
}

// Resign ends the game in the opponent's favour. The engine result is left
// as it was; resignation is a session event.
func (g *Game) Resign(userID string, now time.Time) error {
	if _, ok := g.ColorOf(userID); !ok {
		return ErrNotParticipant
	}
	if g.Status != StatusActive {
		return ErrNotActive
	}
	g.Status = StatusResigned
	g.Winner = g.OpponentID(userID)
	g.Outcome = "resign"
	g.UpdatedAt = now
	return nil
}

// Clone returns a deep copy.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	cp := *g
	cp.Moves = make([]MoveRecord, len(g.Moves))
	for i, mv := range g.Moves {
		mv.Cleared = append([]string(nil), mv.Cleared...)
		cp.Moves[i] = mv
	}
	cp.LastCleared = append([]string(nil), g.LastCleared...)
	return &cp
}

// Explosions counts captures played so far.
func (g *Game) Explosions() int {
	n := 0
	for _, mv := range g.Moves {
		if mv.Capture {
			n++
		}
	}
	return n
}

// ResultMethod names how a finished game ended.
func (g *Game) ResultMethod() string {
	switch g.Status {
	case StatusFinished:
		return "explosion"
	case StatusResigned:
		return "resignation"
	}
	return ""
}
