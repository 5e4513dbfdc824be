package pvpchess

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "sort"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/park285/atomic-chess-bot/internal/metrics"
    "github.com/park285/atomic-chess-bot/internal/obslog"
)

// DefaultTTL is how long an untouched game stays in redis.
const DefaultTTL = 24 * time.Hour

// Manager keeps PvP games in redis. Moves run inside WATCH transactions on
// the game key, so concurrent bot instances never apply two moves to the
// same position.
type Manager struct {
    rdb     *redis.Client
    repo    ResultRepository
    metrics metrics.Recorder
    ttl     time.Duration
    now     func() time.Time
}

var _ Backend = (*Manager)(nil)

type Option func(*Manager)

func WithTTL(d time.Duration) Option {
    return func(m *Manager) { if d > 0 { m.ttl = d } }
}

func WithMetrics(r metrics.Recorder) Option {
    return func(m *Manager) { if r != nil { m.metrics = r } }
}

func WithClock(now func() time.Time) Option {
    return func(m *Manager) { if now != nil { m.now = now } }
}

func NewManager(redisURL string, opts ...Option) (*Manager, error) {
    if strings.TrimSpace(redisURL) == "" {
        return nil, fmt.Errorf("REDIS_URL required for PvP manager")
    }
    ropts, err := redisOptions(redisURL)
    if err != nil { return nil, err }
    rdb := redis.NewClient(ropts)
    if err := rdb.Ping(context.Background()).Err(); err != nil {
        _ = rdb.Close()
        return nil, fmt.Errorf("redis ping: %w", err)
    }
    return NewManagerWithClient(rdb, opts...), nil
}

// NewManagerWithClient uses an existing client; Close will close it.
func NewManagerWithClient(rdb *redis.Client, opts ...Option) *Manager {
    m := &Manager{rdb: rdb, metrics: metrics.Nop{}, ttl: DefaultTTL, now: time.Now}
    for _, o := range opts { o(m) }
    return m
}

// Client exposes the redis client so the lobby can share the connection pool.
func (m *Manager) Client() *redis.Client { return m.rdb }

func (m *Manager) Close() error {
    if m == nil || m.rdb == nil { return nil }
    return m.rdb.Close()
}

// AttachRepository wires a result archive for finished games.
func (m *Manager) AttachRepository(r ResultRepository) {
    if m != nil {
        m.repo = r
    }
}

// CreateGame stores a new ACTIVE game and indexes both players.
func (m *Manager) CreateGame(ctx context.Context, p CreateParams) (*Game, error) {
    if m == nil || m.rdb == nil { return nil, fmt.Errorf("pvp manager not initialized") }
    g, err := NewGame(p, m.now())
    if err != nil { return nil, err }
    if err := m.save(ctx, g); err != nil { return nil, err }
    if err := m.indexParticipants(ctx, g.ID, g.WhiteID, g.BlackID); err != nil { return nil, err }
    m.metrics.GameStarted("redis")
    obslog.L().Info("atomic_game_create",
        zap.String("game_id", g.ID),
        zap.String("origin_room", g.OriginRoom),
        zap.String("resolve_room", g.ResolveRoom),
        zap.String("white_id", g.WhiteID),
        zap.String("black_id", g.BlackID),
        zap.String("start", g.StartPlacement),
    )
    return g, nil
}

// ActiveGameByUser returns the latest active game for a user, or nil.
func (m *Manager) ActiveGameByUser(ctx context.Context, userID string) (*Game, error) {
    return m.latestActive(ctx, userID, "")
}

// ActiveGameByUserInRoom returns the most recent ACTIVE game for the user in the given room.
// 방 기준 중복 대국 금지 정책 구현을 위해 사용.
func (m *Manager) ActiveGameByUserInRoom(ctx context.Context, userID, room string) (*Game, error) {
    if strings.TrimSpace(room) == "" { return nil, nil }
    return m.latestActive(ctx, userID, room)
}

func (m *Manager) latestActive(ctx context.Context, userID, room string) (*Game, error) {
    if m == nil || m.rdb == nil { return nil, fmt.Errorf("pvp manager not initialized") }
    userID = strings.TrimSpace(userID)
    if userID == "" { return nil, nil }
    ids, err := m.rdb.SMembers(ctx, idxUserKey(userID)).Result()
    if err != nil { return nil, err }
    var list []*Game
    for _, id := range ids {
        g, gerr := m.get(ctx, id)
        if gerr != nil || g == nil { continue }
        if g.Status != StatusActive { continue }
        if room != "" && !g.InRoom(room) { continue }
        list = append(list, g)
    }
    if len(list) == 0 { return nil, nil }
    // prefer most recently updated
    sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
    return list[0], nil
}

// PlayMove applies move text ("e2 e4", "e2e4") to the user's active game.
func (m *Manager) PlayMove(ctx context.Context, userID, text string) (*Game, MoveOutcome, error) {
    g, err := m.ActiveGameByUser(ctx, userID)
    if err != nil { return nil, MoveOutcome{}, err }
    if g == nil { return nil, MoveOutcome{}, ErrGameNotFound }
    return m.play(ctx, g, userID, "", text)
}

// PlayMoveByRoom is PlayMove restricted to the user's ACTIVE game in roomID.
// 왜: 동일 사용자가 여러 방에서 동시에 대국할 때 다른 방 게임에 수가 적용되는 문제를 방지.
func (m *Manager) PlayMoveByRoom(ctx context.Context, userID, roomID, text string) (*Game, MoveOutcome, error) {
    if strings.TrimSpace(userID) == "" || strings.TrimSpace(roomID) == "" {
        return nil, MoveOutcome{}, ErrInvalidArgs
    }
    g, err := m.ActiveGameByUserInRoom(ctx, userID, roomID)
    if err != nil { return nil, MoveOutcome{}, err }
    if g == nil { return nil, MoveOutcome{}, ErrGameNotFound }
    return m.play(ctx, g, userID, roomID, text)
}

var errNotInRoom = errors.New("game not in room")

func (m *Manager) play(ctx context.Context, g *Game, userID, room, text string) (*Game, MoveOutcome, error) {
    gameK := gameKey(g.ID)
    oldLen := len(g.Moves)
    var out MoveOutcome

    // optimistic concurrency control using WATCH on game key
    err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
        raw, err := tx.Get(ctx, gameK).Bytes()
        if err == redis.Nil { return ErrGameNotFound }
        if err != nil { return err }
        var cur Game
        if jerr := json.Unmarshal(raw, &cur); jerr != nil { return jerr }
        // a move that landed in between is a conflict; a game that ended in
        // between falls through to Apply, which rejects with GAME_OVER
        if cur.Status == StatusActive && len(cur.Moves) != oldLen { return redis.TxFailedErr }
        // 스코프 확인: 여전히 같은 방이어야 함
        if room != "" && !cur.InRoom(room) { return errNotInRoom }

        o, aerr := cur.Apply(userID, text, m.now())
        if aerr != nil { return aerr }
        out = o
        g = &cur
        if !o.Applied() { return nil }

        newRaw, merr := json.Marshal(&cur)
        if merr != nil { return merr }
        pipe := tx.TxPipeline()
        pipe.Set(ctx, gameK, newRaw, m.ttl)
        _, perr := pipe.Exec(ctx)
        return perr
    }, gameK)

    if err != nil {
        if errors.Is(err, redis.TxFailedErr) {
            m.metrics.Conflict()
            obslog.L().Warn("atomic_move_conflict", zap.String("game_id", g.ID), zap.String("user_id", userID))
            return g, MoveOutcome{Conflict: true}, nil
        }
        return nil, MoveOutcome{}, err
    }

    m.observe(g, userID, text, out)
    if out.Applied() && g.Status != StatusActive {
        _ = m.persistIfFinal(ctx, g)
    }
    return g, out, nil
}

func (m *Manager) observe(g *Game, userID, text string, out MoveOutcome) {
    ObserveMove(m.metrics, "redis", g, userID, text, out)
}

// Resign ends the user's active game.
func (m *Manager) Resign(ctx context.Context, userID string) (*Game, error) {
    g, err := m.ActiveGameByUser(ctx, userID)
    if err != nil { return nil, err }
    if g == nil { return nil, ErrGameNotFound }
    return m.resign(ctx, g, userID, "")
}

// ResignByRoom resigns the active game for a user limited to a specific room scope.
// 같은 유저가 여러 방에서 대국 중이어도 정확히 해당 방의 게임만 기권 처리.
func (m *Manager) ResignByRoom(ctx context.Context, userID, roomID string) (*Game, error) {
    if strings.TrimSpace(userID) == "" || strings.TrimSpace(roomID) == "" {
        return nil, ErrInvalidArgs
    }
    g, err := m.ActiveGameByUserInRoom(ctx, userID, roomID)
    if err != nil { return nil, err }
    if g == nil { return nil, ErrGameNotFound }
    return m.resign(ctx, g, userID, roomID)
}

func (m *Manager) resign(ctx context.Context, g *Game, userID, room string) (*Game, error) {
    gameK := gameKey(g.ID)
    err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
        raw, err := tx.Get(ctx, gameK).Bytes()
        if err == redis.Nil { return ErrGameNotFound }
        if err != nil { return err }
        var cur Game
        if jerr := json.Unmarshal(raw, &cur); jerr != nil { return jerr }
        if cur.Status != StatusActive { return redis.TxFailedErr }
        if room != "" && !cur.InRoom(room) { return errNotInRoom }
        if rerr := cur.Resign(userID, m.now()); rerr != nil { return rerr }
        newRaw, merr := json.Marshal(&cur)
        if merr != nil { return merr }
        pipe := tx.TxPipeline()
        pipe.Set(ctx, gameK, newRaw, m.ttl)
        if _, err := pipe.Exec(ctx); err != nil { return err }
        g = &cur
        return nil
    }, gameK)
    if err != nil {
        if errors.Is(err, redis.TxFailedErr) {
            return nil, ErrNotActive
        }
        return nil, err
    }
    m.metrics.GameFinished(string(g.Status))
    obslog.L().Info("atomic_resign",
        zap.String("game_id", g.ID),
        zap.String("resigner", strings.TrimSpace(userID)),
        zap.String("room_id", room),
        zap.String("winner", g.Winner),
    )
    _ = m.persistIfFinal(ctx, g)
    return g, nil
}

// Load returns the game by ID.
func (m *Manager) Load(ctx context.Context, id string) (*Game, error) {
    g, err := m.get(ctx, id)
    if err != nil { return nil, err }
    if g == nil { return nil, ErrGameNotFound }
    return g, nil
}

// Persistence
func (m *Manager) save(ctx context.Context, g *Game) error {
    raw, err := json.Marshal(g)
    if err != nil { return err }
    return m.rdb.Set(ctx, gameKey(g.ID), raw, m.ttl).Err()
}

func (m *Manager) get(ctx context.Context, id string) (*Game, error) {
    raw, err := m.rdb.Get(ctx, gameKey(id)).Bytes()
    if err == redis.Nil { return nil, nil }
    if err != nil { return nil, err }
    var g Game
    if err := json.Unmarshal(raw, &g); err != nil { return nil, err }
    return &g, nil
}

func (m *Manager) indexParticipants(ctx context.Context, id string, users ...string) error {
    for _, u := range users {
        if strings.TrimSpace(u) == "" { continue }
        key := idxUserKey(u)
        if err := m.rdb.SAdd(ctx, key, id).Err(); err != nil { return err }
        // 인덱스 키 TTL도 게임 TTL과 동일하게 갱신
        _ = m.rdb.Expire(ctx, key, m.ttl).Err()
    }
    return nil
}

func gameKey(id string) string { return "atomic:game:" + strings.TrimSpace(id) }
func idxUserKey(userID string) string { return "atomic:index:user:" + strings.TrimSpace(userID) }

// redisOptions accepts redis:// and rediss:// (TLS) URLs with optional
// password and db path.
func redisOptions(raw string) (*redis.Options, error) {
    o, err := redis.ParseURL(strings.TrimSpace(raw))
    if err != nil { return nil, fmt.Errorf("parse REDIS_URL: %w", err) }
    return o, nil
}

// persistIfFinal saves the final game result to repository if available.
func (m *Manager) persistIfFinal(ctx context.Context, g *Game) error {
    return PersistResult(ctx, m.repo, g)
}
