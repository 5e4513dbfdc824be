package pvpchan

import (
    "context"
    "encoding/json"
    "errors"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/park285/atomic-chess-bot/internal/obslog"
    "github.com/park285/atomic-chess-bot/internal/pvp"
    "github.com/park285/atomic-chess-bot/internal/pvpchess"
)

const (
    codeAttempts  = 5
    watchAttempts = 3
)

// Manager runs lobby channels in redis. The second participant to join
// starts a game on the session backend.
type Manager struct {
    rdb   *redis.Client
    store *Store
    games pvpchess.Backend
    now   func() time.Time
}

func NewManager(rdb *redis.Client, games pvpchess.Backend) *Manager {
    return &Manager{rdb: rdb, store: NewStore(rdb), games: games, now: time.Now}
}

// Make opens a waiting lobby for userID in room and returns its join code.
func (m *Manager) Make(ctx context.Context, room, userID, userName string, color pvp.ColorChoice) (*MakeResult, error) {
    room, userID = strings.TrimSpace(room), strings.TrimSpace(userID)
    if room == "" || userID == "" {
        return nil, ErrInvalidArgs
    }
    // 같은 방에서 진행 중인 대국이 있으면 대기방을 만들 수 없다
    if g, _ := m.games.ActiveGameByUserInRoom(ctx, userID, room); g != nil {
        return nil, ErrPlayerBusyInRoom
    }
    if code, _ := m.waitingLobbyOf(ctx, userID); code != "" {
        return nil, ErrCreatorHasLobby
    }
    if color == "" {
        color = pvp.ColorRandom
    }

    code, err := m.reserveCode(ctx)
    if err != nil {
        return nil, err
    }
    meta := &ChannelMeta{
        ID:           code,
        State:        StateLobby,
        CreatedAt:    m.now(),
        CreatorID:    userID,
        CreatorName:  userName,
        CreatorRoom:  room,
        CreatorColor: color,
    }
    // the creator counts as the first participant
    if err := m.store.Enter(ctx, code, room, userID); err != nil {
        return nil, err
    }
    if err := m.store.SaveMeta(ctx, meta); err != nil {
        return nil, err
    }
    if err := m.store.MarkWaiting(ctx, meta); err != nil {
        return nil, err
    }
    obslog.L().Info("lobby_make",
        zap.String("code", code),
        zap.String("room", room),
        zap.String("creator_id", userID),
        zap.String("color", string(color)),
    )
    return &MakeResult{Code: code, Meta: meta}, nil
}

func (m *Manager) reserveCode(ctx context.Context) (string, error) {
    for range codeAttempts {
        code, err := newCode()
        if err != nil {
            return "", err
        }
        ok, err := m.store.Reserve(ctx, code)
        if err != nil {
            return "", err
        }
        if ok {
            return code, nil
        }
    }
    return "", errors.New("no free lobby code")
}

// waitingLobbyOf returns the code of a LOBBY channel created by userID.
func (m *Manager) waitingLobbyOf(ctx context.Context, userID string) (string, error) {
    codes, err := m.store.CodesByUser(ctx, userID)
    if err != nil {
        return "", err
    }
    for _, c := range codes {
        meta, _ := m.store.LoadMeta(ctx, c)
        if meta != nil && meta.State == StateLobby && meta.CreatorID == userID {
            return c, nil
        }
    }
    return "", nil
}

// Join adds userID to the lobby and starts the game.
func (m *Manager) Join(ctx context.Context, room, code, userID, userName string, pref pvp.ColorChoice) (*JoinResult, error) {
    k := keyFor(code)
    room, userID = strings.TrimSpace(room), strings.TrimSpace(userID)
    if room == "" || k == "" || userID == "" {
        return nil, ErrInvalidArgs
    }
    meta, err := m.store.LoadMeta(ctx, string(k))
    if err != nil {
        return nil, err
    }
    switch {
    case meta == nil || meta.ID == "":
        return nil, ErrChannelGone
    case meta.State != StateLobby:
        return nil, ErrChannelActive
    case meta.CreatorID == userID:
        return nil, ErrSelfJoin
    }

    // 참가자와 생성자 모두 각자의 방에서 진행 중인 대국이 없어야 한다
    if busy, _ := m.games.ActiveGameByUserInRoom(ctx, userID, room); busy != nil {
        return nil, ErrPlayerBusyInRoom
    }
    if busy, _ := m.games.ActiveGameByUserInRoom(ctx, meta.CreatorID, meta.CreatorRoom); busy != nil {
        return nil, ErrPlayerBusyInRoom
    }

    if err := m.claimSeat(ctx, k, room, userID); err != nil {
        obslog.L().Warn("lobby_join_error",
            zap.String("code", string(k)),
            zap.String("room", room),
            zap.String("user_id", userID),
            zap.Error(err),
        )
        return nil, err
    }
    // from here on a failure must give the seat back, or the lobby stays full
    release := func(cause error) error {
        if err := m.store.Leave(ctx, k, room, userID, room == meta.CreatorRoom); err != nil {
            obslog.L().Error("lobby_seat_release_failed", zap.String("code", string(k)), zap.String("user_id", userID), zap.Error(err))
        }
        return cause
    }

    g, err := m.games.CreateGame(ctx, pvpchess.CreateParams{
        OriginRoom:     meta.CreatorRoom,
        ResolveRoom:    room,
        ChallengerID:   meta.CreatorID,
        ChallengerName: meta.CreatorName,
        TargetID:       userID,
        TargetName:     userName,
        Color:          string(creatorColor(meta.CreatorColor, pref)),
    })
    if err != nil {
        return nil, release(err)
    }

    meta.State = StateActive
    meta.GameID = g.ID
    meta.WhiteID, meta.WhiteName = g.WhiteID, g.WhiteName
    meta.BlackID, meta.BlackName = g.BlackID, g.BlackName
    if err := m.store.SaveMeta(ctx, meta); err != nil {
        return nil, release(err)
    }
    _ = m.store.Unlist(ctx, meta.ID)
    obslog.L().Info("lobby_start_game",
        zap.String("code", meta.ID),
        zap.String("game_id", g.ID),
        zap.String("white_id", g.WhiteID),
        zap.String("black_id", g.BlackID),
    )
    return &JoinResult{Started: true, GameID: g.ID, Meta: meta}, nil
}

// claimSeat takes the second seat under WATCH on the metadata and the
// participant set, so neither a racing joiner nor a Cancel can interleave.
func (m *Manager) claimSeat(ctx context.Context, k lobbyKey, room, userID string) error {
    return m.watchLobby(ctx, k, func(tx *redis.Tx, meta *ChannelMeta, seated int64) error {
        if meta.State != StateLobby {
            return ErrChannelActive
        }
        if seated >= 2 {
            return ErrFull
        }
        _, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
            enter(ctx, p, k, room, userID)
            return nil
        })
        return err
    })
}

// watchLobby runs fn inside a WATCH of the lobby keys with the current
// metadata and seat count, retrying when a concurrent writer wins.
func (m *Manager) watchLobby(ctx context.Context, k lobbyKey, fn func(tx *redis.Tx, meta *ChannelMeta, seated int64) error) error {
    for range watchAttempts {
        err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
            raw, err := tx.Get(ctx, k.meta()).Bytes()
            if errors.Is(err, redis.Nil) {
                return ErrChannelGone
            }
            if err != nil {
                return err
            }
            meta, err := decodeMeta(string(k), raw)
            if err != nil {
                return err
            }
            seated, err := tx.SCard(ctx, k.participants()).Result()
            if err != nil {
                return err
            }
            return fn(tx, meta, seated)
        }, k.meta(), k.participants())
        if !errors.Is(err, redis.TxFailedErr) {
            return err
        }
    }
    return ErrFull
}

// creatorColor resolves the creator's side. The creator's explicit choice
// wins; otherwise the joiner's preference decides.
func creatorColor(creator, joiner pvp.ColorChoice) pvp.ColorChoice {
    if creator == pvp.ColorWhite || creator == pvp.ColorBlack {
        return creator
    }
    switch joiner {
    case pvp.ColorWhite:
        return pvp.ColorBlack
    case pvp.ColorBlack:
        return pvp.ColorWhite
    }
    return pvp.ColorRandom
}

// Cancel aborts the user's waiting lobby and returns its code.
func (m *Manager) Cancel(ctx context.Context, userID string) (string, error) {
    userID = strings.TrimSpace(userID)
    code, err := m.waitingLobbyOf(ctx, userID)
    if err != nil {
        return "", err
    }
    if code == "" {
        return "", ErrNoLobby
    }
    k := keyFor(code)
    err = m.watchLobby(ctx, k, func(tx *redis.Tx, meta *ChannelMeta, seated int64) error {
        // a joiner holding the second seat is already starting the game
        if meta.State != StateLobby || seated >= 2 {
            return ErrChannelActive
        }
        meta.State = StateAborted
        raw, err := json.Marshal(meta)
        if err != nil {
            return err
        }
        _, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
            p.Set(ctx, k.meta(), raw, lobbyTTL)
            return nil
        })
        return err
    })
    if err != nil {
        return "", err
    }
    _ = m.store.Unlist(ctx, code)
    obslog.L().Info("lobby_cancel", zap.String("code", code), zap.String("creator_id", userID))
    return code, nil
}

func (m *Manager) Rooms(ctx context.Context, code string) ([]string, error) {
    return m.store.Rooms(ctx, code)
}

// ListLobby returns the waiting lobbies, oldest first.
func (m *Manager) ListLobby(ctx context.Context) ([]*ChannelMeta, error) {
    return m.store.ListWaiting(ctx)
}
