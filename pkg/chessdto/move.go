package chessdto

// MoveSummary describes one submitted move for the presenter.
type MoveSummary struct {
	State *SessionState
	// Mover is the display name of the player who sent the move.
	Mover string
	From  string
	To    string

	Accepted    bool
	Reason      string
	NotYourTurn bool
	Conflict    bool

	Captured      bool
	KingDestroyed bool
	Cleared       []string
}

// Rejected reports whether the move was refused for any reason.
func (m *MoveSummary) Rejected() bool {
	return m == nil || !m.Accepted || m.NotYourTurn || m.Conflict
}
