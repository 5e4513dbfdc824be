package pvp

import (
    "context"
    "errors"
    "fmt"
    "sort"
    "strings"
    "sync"
    "time"

    lru "github.com/hashicorp/golang-lru/v2"
    "go.uber.org/zap"

    "github.com/park285/atomic-chess-bot/internal/metrics"
    "github.com/park285/atomic-chess-bot/internal/obslog"
    "github.com/park285/atomic-chess-bot/internal/pvpchess"
)

var ErrClosed = errors.New("pvp manager closed")

// entry owns one game. Its mutex serializes moves on that game; player IDs
// never change after creation and may be read without it.
type entry struct {
    mu   sync.Mutex
    game *pvpchess.Game
}

// Manager keeps games in process memory, bounded by an LRU. It is the
// backend for the CLI and for bots running without redis.
type Manager struct {
    mu sync.Mutex
    // games and byUser change together under mu
    games  *lru.Cache[string, *entry]
    byUser map[string]map[string]struct{}

    repo    pvpchess.ResultRepository
    metrics metrics.Recorder
    now     func() time.Time
    closed  bool
}

var _ pvpchess.Backend = (*Manager)(nil)

type Option func(*Manager)

func WithMetrics(r metrics.Recorder) Option {
    return func(m *Manager) { if r != nil { m.metrics = r } }
}

func WithClock(now func() time.Time) Option {
    return func(m *Manager) { if now != nil { m.now = now } }
}

func WithRepository(r pvpchess.ResultRepository) Option {
    return func(m *Manager) { m.repo = r }
}

// NewManager holds at most capacity games; the least recently used game is
// dropped when a new one does not fit.
func NewManager(capacity int, opts ...Option) (*Manager, error) {
    if capacity <= 0 { capacity = DefaultCapacity }
    m := &Manager{
        byUser:  make(map[string]map[string]struct{}),
        metrics: metrics.Nop{},
        now:     time.Now,
    }
    cache, err := lru.NewWithEvict[string, *entry](capacity, m.onEvict)
    if err != nil { return nil, fmt.Errorf("game cache: %w", err) }
    m.games = cache
    for _, o := range opts { o(m) }
    return m, nil
}

// onEvict runs inside cache calls made while m.mu is held.
func (m *Manager) onEvict(id string, e *entry) {
    for _, u := range []string{e.game.WhiteID, e.game.BlackID} {
        set := m.byUser[u]
        delete(set, id)
        if len(set) == 0 { delete(m.byUser, u) }
    }
    obslog.L().Debug("atomic_game_evicted", zap.String("game_id", id))
}

func (m *Manager) CreateGame(ctx context.Context, p pvpchess.CreateParams) (*pvpchess.Game, error) {
    g, err := pvpchess.NewGame(p, m.now())
    if err != nil { return nil, err }

    m.mu.Lock()
    if m.closed {
        m.mu.Unlock()
        return nil, ErrClosed
    }
    m.games.Add(g.ID, &entry{game: g})
    for _, u := range []string{g.WhiteID, g.BlackID} {
        if m.byUser[u] == nil { m.byUser[u] = make(map[string]struct{}) }
        m.byUser[u][g.ID] = struct{}{}
    }
    m.mu.Unlock()

    m.metrics.GameStarted("memory")
    obslog.L().Info("atomic_game_create",
        zap.String("backend", "memory"),
        zap.String("game_id", g.ID),
        zap.String("origin_room", g.OriginRoom),
        zap.String("white_id", g.WhiteID),
        zap.String("black_id", g.BlackID),
        zap.String("start", g.StartPlacement),
    )
    return g.Clone(), nil
}

func (m *Manager) ActiveGameByUser(ctx context.Context, userID string) (*pvpchess.Game, error) {
    e := m.latestActive(userID, "")
    if e == nil { return nil, nil }
    return e.snapshot(), nil
}

func (m *Manager) ActiveGameByUserInRoom(ctx context.Context, userID, room string) (*pvpchess.Game, error) {
    if strings.TrimSpace(room) == "" { return nil, nil }
    e := m.latestActive(userID, room)
    if e == nil { return nil, nil }
    return e.snapshot(), nil
}

func (m *Manager) entriesOf(userID string) []*entry {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []*entry
    for id := range m.byUser[strings.TrimSpace(userID)] {
        if e, ok := m.games.Peek(id); ok { out = append(out, e) }
    }
    return out
}

func (m *Manager) latestActive(userID, room string) *entry {
    type cand struct {
        e       *entry
        updated time.Time
    }
    var list []cand
    for _, e := range m.entriesOf(userID) {
        e.mu.Lock()
        ok := e.game.Status == pvpchess.StatusActive && (room == "" || e.game.InRoom(room))
        updated := e.game.UpdatedAt
        e.mu.Unlock()
        if ok { list = append(list, cand{e, updated}) }
    }
    if len(list) == 0 { return nil }
    sort.Slice(list, func(i, j int) bool { return list[i].updated.After(list[j].updated) })
    return list[0].e
}

func (e *entry) snapshot() *pvpchess.Game {
    e.mu.Lock()
    defer e.mu.Unlock()
    return e.game.Clone()
}

func (m *Manager) PlayMove(ctx context.Context, userID, text string) (*pvpchess.Game, pvpchess.MoveOutcome, error) {
    e := m.latestActive(userID, "")
    if e == nil { return nil, pvpchess.MoveOutcome{}, pvpchess.ErrGameNotFound }
    return m.play(ctx, e, userID, "", text)
}

func (m *Manager) PlayMoveByRoom(ctx context.Context, userID, room, text string) (*pvpchess.Game, pvpchess.MoveOutcome, error) {
    if strings.TrimSpace(userID) == "" || strings.TrimSpace(room) == "" {
        return nil, pvpchess.MoveOutcome{}, pvpchess.ErrInvalidArgs
    }
    e := m.latestActive(userID, room)
    if e == nil { return nil, pvpchess.MoveOutcome{}, pvpchess.ErrGameNotFound }
    return m.play(ctx, e, userID, room, text)
}

func (m *Manager) play(ctx context.Context, e *entry, userID, room, text string) (*pvpchess.Game, pvpchess.MoveOutcome, error) {
    e.mu.Lock()
    if room != "" && !e.game.InRoom(room) {
        e.mu.Unlock()
        return nil, pvpchess.MoveOutcome{}, pvpchess.ErrGameNotFound
    }
    out, err := e.game.Apply(userID, text, m.now())
    g := e.game.Clone()
    e.mu.Unlock()
    if err != nil { return nil, out, err }

    m.touch(g.ID)
    pvpchess.ObserveMove(m.metrics, "memory", g, userID, text, out)
    if out.Applied() && g.Status != pvpchess.StatusActive {
        _ = pvpchess.PersistResult(ctx, m.repo, g)
    }
    return g, out, nil
}

// touch marks the game as recently used.
func (m *Manager) touch(id string) {
    m.mu.Lock()
    m.games.Get(id)
    m.mu.Unlock()
}

func (m *Manager) Resign(ctx context.Context, userID string) (*pvpchess.Game, error) {
    e := m.latestActive(userID, "")
    if e == nil { return nil, pvpchess.ErrGameNotFound }
    return m.resign(ctx, e, userID, "")
}

func (m *Manager) ResignByRoom(ctx context.Context, userID, room string) (*pvpchess.Game, error) {
    if strings.TrimSpace(userID) == "" || strings.TrimSpace(room) == "" {
        return nil, pvpchess.ErrInvalidArgs
    }
    e := m.latestActive(userID, room)
    if e == nil { return nil, pvpchess.ErrGameNotFound }
    return m.resign(ctx, e, userID, room)
}

func (m *Manager) resign(ctx context.Context, e *entry, userID, room string) (*pvpchess.Game, error) {
    e.mu.Lock()
    err := e.game.Resign(userID, m.now())
    g := e.game.Clone()
    e.mu.Unlock()
    if err != nil { return nil, err }

    m.metrics.GameFinished(string(g.Status))
    obslog.L().Info("atomic_resign",
        zap.String("backend", "memory"),
        zap.String("game_id", g.ID),
        zap.String("resigner", strings.TrimSpace(userID)),
        zap.String("room_id", room),
        zap.String("winner", g.Winner),
    )
    _ = pvpchess.PersistResult(ctx, m.repo, g)
    return g, nil
}

func (m *Manager) Load(ctx context.Context, id string) (*pvpchess.Game, error) {
    m.mu.Lock()
    e, ok := m.games.Peek(strings.TrimSpace(id))
    m.mu.Unlock()
    if !ok { return nil, pvpchess.ErrGameNotFound }
    return e.snapshot(), nil
}

// Len returns the number of games held.
func (m *Manager) Len() int {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.games.Len()
}

func (m *Manager) Close() error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.closed { return nil }
    m.closed = true
    m.games.Purge()
    return nil
}
