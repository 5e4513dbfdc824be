package chesspresenter

import (
    "github.com/park285/atomic-chess-bot/internal/pvpchan"
    "github.com/park285/atomic-chess-bot/pkg/chessdto"
)

// ToLobbyEntries converts waiting lobby channels for the lobby listing.
func ToLobbyEntries(list []*pvpchan.ChannelMeta) []chessdto.LobbyEntry {
    out := make([]chessdto.LobbyEntry, 0, len(list))
    for _, m := range list {
        if m == nil { continue }
        creator := m.CreatorName
        if creator == "" { creator = m.CreatorID }
        out = append(out, chessdto.LobbyEntry{
            Code:      m.ID,
            Creator:   creator,
            Room:      m.CreatorRoom,
            CreatedAt: m.CreatedAt,
        })
    }
    return out
}
