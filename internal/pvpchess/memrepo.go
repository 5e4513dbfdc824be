package pvpchess

import (
    "context"
    "sort"
    "strings"
    "sync"

    "github.com/park285/atomic-chess-bot/internal/domain"
)

// memrepo is the in-process archive used when no DATABASE_URL is configured.
type memrepo struct {
    mu     sync.RWMutex
    byID   map[string]*domain.GameResult
    byUser map[string][]string // userID -> game IDs
}

var _ ResultRepository = (*memrepo)(nil)

func NewMemoryRepository() ResultRepository {
    return &memrepo{
        byID:   make(map[string]*domain.GameResult),
        byUser: make(map[string][]string),
    }
}

func (m *memrepo) SaveResult(_ context.Context, g *Game, method string) error {
    if g == nil {
        return nil
    }
    res := ResultFromGame(g, method)

    m.mu.Lock()
    defer m.mu.Unlock()
    if _, exists := m.byID[res.GameID]; !exists {
        for _, u := range []string{res.WhiteID, res.BlackID} {
            m.byUser[u] = append(m.byUser[u], res.GameID)
        }
    }
    m.byID[res.GameID] = res
    return nil
}

func (m *memrepo) Recent(_ context.Context, userID string, limit int) ([]*domain.GameResult, error) {
    if limit <= 0 {
        limit = 10
    }
    m.mu.RLock()
    ids := m.byUser[strings.TrimSpace(userID)]
    out := make([]*domain.GameResult, 0, len(ids))
    for _, id := range ids {
        cp := *m.byID[id]
        cp.Moves = append([]string(nil), cp.Moves...)
        out = append(out, &cp)
    }
    m.mu.RUnlock()

    sort.SliceStable(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
    if len(out) > limit {
        out = out[:limit]
    }
    return out, nil
}

func (m *memrepo) Close() error { return nil }
