package pvpchess

import (
	"context"
	"errors"
	"time"

	"github.com/park285/atomic-chess-bot/internal/chess"
)

// Color identifies chess side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// ColorOf converts an engine color.
func ColorOf(c chess.Color) Color {
	if c == chess.White {
		return White
	}
	return Black
}

// Engine converts back to the engine color. Anything but "black" is white.
func (c Color) Engine() chess.Color {
	if c == Black {
		return chess.Black
	}
	return chess.White
}

// Status represents a PvP game lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
	StatusResigned Status = "RESIGNED"
)

// MoveRecord is one accepted ply.
type MoveRecord struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Capture bool     `json:"capture,omitempty"`
	Cleared []string `json:"cleared,omitempty"`
}

// Notation renders the ply as e2-e4 or d5xe7.
func (r MoveRecord) Notation() string {
	if r.Capture {
		return r.From + "x" + r.To
	}
	return r.From + "-" + r.To
}

// Game is the persisted state of a PvP match. The board is rebuilt by
// replaying Moves from StartPlacement; Placement is kept for display.
type Game struct {
	ID             string       `json:"id"`
	StartPlacement string       `json:"start_placement"`
	StartTurn      Color        `json:"start_turn"`
	Placement      string       `json:"placement"`
	Moves          []MoveRecord `json:"moves"`
	Turn           Color        `json:"turn"`
	Status         Status       `json:"status"`
	// Result is the engine status token (UNFINISHED, WHITE_WON, BLACK_WON).
	Result      string    `json:"result"`
	WhiteID     string    `json:"white_id"`
	WhiteName   string    `json:"white_name"`
	BlackID     string    `json:"black_id"`
	BlackName   string    `json:"black_name"`
	OriginRoom  string    `json:"origin_room"`
	ResolveRoom string    `json:"resolve_room"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Winner      string    `json:"winner,omitempty"`
	Outcome     string    `json:"outcome,omitempty"` // white | black | resign
	LastCleared []string  `json:"last_cleared,omitempty"`
}

// MoveOutcome describes what happened to a submitted move. Illegal moves are
// reported through Result.Reason, not as errors.
type MoveOutcome struct {
	Result      chess.MoveResult
	NotYourTurn bool
	// Conflict means another move landed first; nothing was applied.
	Conflict bool
}

// Applied reports whether the move changed the game.
func (o MoveOutcome) Applied() bool {
	return !o.NotYourTurn && !o.Conflict && o.Result.Accepted
}

// CreateParams describes a new game between a challenger and a target.
type CreateParams struct {
	OriginRoom     string
	ResolveRoom    string
	ChallengerID   string
	ChallengerName string
	TargetID       string
	TargetName     string
	// Color is the challenger's preference: white, black or random.
	Color string
	// Placement optionally replaces the standard start position.
	Placement string
	StartTurn Color
}

var (
	ErrInvalidArgs    = errors.New("invalid arguments")
	ErrSelfChallenge  = errors.New("cannot challenge yourself")
	ErrGameNotFound   = errors.New("game not found")
	ErrNotParticipant = errors.New("user not in game")
	ErrNotActive      = errors.New("game no longer active")
)

// Backend is the session store behind the bot: redis for deployments,
// memory for local play.
type Backend interface {
	CreateGame(ctx context.Context, p CreateParams) (*Game, error)
	PlayMove(ctx context.Context, userID, text string) (*Game, MoveOutcome, error)
	PlayMoveByRoom(ctx context.Context, userID, room, text string) (*Game, MoveOutcome, error)
	Resign(ctx context.Context, userID string) (*Game, error)
	ResignByRoom(ctx context.Context, userID, room string) (*Game, error)
	ActiveGameByUser(ctx context.Context, userID string) (*Game, error)
	ActiveGameByUserInRoom(ctx context.Context, userID, room string) (*Game, error)
	Load(ctx context.Context, id string) (*Game, error)
	Close() error
}
