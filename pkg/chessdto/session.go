package chessdto

import "time"

// SessionState is the presenter view of one atomic game.
type SessionState struct {
	GameID      string
	WhiteName   string
	BlackName   string
	Placement   string
	Moves       []string
	MoveCount   int
	Turn        string // white | black
	TurnName    string
	Status      string // ACTIVE | FINISHED | RESIGNED
	Result      string // UNFINISHED | WHITE_WON | BLACK_WON
	Outcome     string // white | black | resign
	WinnerName  string
	LastCleared []string
	BoardImage  []byte
	BoardText   string
	UpdatedAt   time.Time
}

// Finished reports whether the game has ended by explosion or resignation.
func (s *SessionState) Finished() bool {
	return s != nil && s.Status != "" && s.Status != "ACTIVE"
}
