package chessdto

import "time"

// GameRecord is an archived game as shown by the history command.
type GameRecord struct {
	GameID     string
	WhiteName  string
	BlackName  string
	Result     string // 1-0 | 0-1
	Method     string // explosion | resignation
	Plies      int
	Explosions int
	MoveText   string
	EndedAt    time.Time
	Duration   time.Duration
}
