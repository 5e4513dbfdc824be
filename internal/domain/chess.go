package domain

import "time"

// GameResult is the archived record of a finished atomic game.
type GameResult struct {
	GameID string

	WhiteID   string
	WhiteName string
	BlackID   string
	BlackName string

	OriginRoom  string
	ResolveRoom string

	Result   string // 1-0 | 0-1
	Method   string // explosion | resignation
	WinnerID string

	Moves    []string // e2-e4, d5xe7
	MoveText string   // 1. e2-e4 e7-e5 2. ...

	StartPlacement string
	FinalPlacement string
	Explosions     int

	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
}

// Plies is the number of half-moves played.
func (r *GameResult) Plies() int {
	if r == nil {
		return 0
	}
	return len(r.Moves)
}
