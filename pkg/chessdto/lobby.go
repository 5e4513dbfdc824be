package chessdto

import "time"

// LobbyEntry is a waiting lobby channel.
type LobbyEntry struct {
	Code      string
	Creator   string
	Room      string
	CreatedAt time.Time
}
