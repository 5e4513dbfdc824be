package pvpchan

import (
    "context"
    "crypto/rand"
    "encoding/json"
    "errors"
    "fmt"
    "sort"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

const (
    lobbyTTL     = 24 * time.Hour
    codeLen      = 6
    codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// lobbyKey namespaces every redis key of one lobby code.
type lobbyKey string

func keyFor(code string) lobbyKey { return lobbyKey(strings.ToUpper(strings.TrimSpace(code))) }

func (k lobbyKey) meta() string         { return "atomic:lobby:" + string(k) }
func (k lobbyKey) rooms() string        { return k.meta() + ":rooms" }
func (k lobbyKey) participants() string { return k.meta() + ":participants" }

func userLobbiesKey(userID string) string { return "atomic:lobby:index:user:" + strings.TrimSpace(userID) }

// waitingKey is a sorted set of waiting codes scored by creation time.
const waitingKey = "atomic:lobby:waiting"

// Store keeps lobby metadata, its room and participant sets and the
// waiting index. Every key carries lobbyTTL.
type Store struct{ rdb *redis.Client }

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// Reserve claims code. It reports false when the code is already taken.
func (s *Store) Reserve(ctx context.Context, code string) (bool, error) {
    return s.rdb.SetNX(ctx, keyFor(code).meta(), "{}", lobbyTTL).Result()
}

func (s *Store) SaveMeta(ctx context.Context, meta *ChannelMeta) error {
    raw, err := json.Marshal(meta)
    if err != nil {
        return fmt.Errorf("encode lobby %s: %w", meta.ID, err)
    }
    k := keyFor(meta.ID)
    _, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
        p.Set(ctx, k.meta(), raw, lobbyTTL)
        p.Expire(ctx, k.rooms(), lobbyTTL)
        p.Expire(ctx, k.participants(), lobbyTTL)
        return nil
    })
    return err
}

// LoadMeta returns nil without error when the code does not exist.
func (s *Store) LoadMeta(ctx context.Context, code string) (*ChannelMeta, error) {
    raw, err := s.rdb.Get(ctx, keyFor(code).meta()).Bytes()
    if errors.Is(err, redis.Nil) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return decodeMeta(code, raw)
}

func decodeMeta(code string, raw []byte) (*ChannelMeta, error) {
    var m ChannelMeta
    if err := json.Unmarshal(raw, &m); err != nil {
        return nil, fmt.Errorf("decode lobby %s: %w", code, err)
    }
    return &m, nil
}

// Enter records that userID takes part in the lobby from room.
func (s *Store) Enter(ctx context.Context, code, room, userID string) error {
    k := keyFor(code)
    _, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
        enter(ctx, p, k, room, userID)
        return nil
    })
    return err
}

func enter(ctx context.Context, p redis.Pipeliner, k lobbyKey, room, userID string) {
    if room = strings.TrimSpace(room); room != "" {
        p.SAdd(ctx, k.rooms(), room)
        p.Expire(ctx, k.rooms(), lobbyTTL)
    }
    if userID = strings.TrimSpace(userID); userID != "" {
        p.SAdd(ctx, k.participants(), userID)
        p.Expire(ctx, k.participants(), lobbyTTL)
        p.SAdd(ctx, userLobbiesKey(userID), string(k))
        p.Expire(ctx, userLobbiesKey(userID), lobbyTTL)
    }
}

// Leave undoes enter for a joiner whose game failed to start. keepRoom
// leaves the room attached when the creator shares it.
func (s *Store) Leave(ctx context.Context, k lobbyKey, room, userID string, keepRoom bool) error {
    _, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
        p.SRem(ctx, k.participants(), userID)
        p.SRem(ctx, userLobbiesKey(userID), string(k))
        if !keepRoom {
            p.SRem(ctx, k.rooms(), room)
        }
        return nil
    })
    return err
}

// Rooms lists the chat rooms attached to the lobby in sorted order.
func (s *Store) Rooms(ctx context.Context, code string) ([]string, error) {
    rooms, err := s.rdb.SMembers(ctx, keyFor(code).rooms()).Result()
    if err != nil {
        return nil, err
    }
    sort.Strings(rooms)
    return rooms, nil
}

func (s *Store) ParticipantCount(ctx context.Context, code string) (int64, error) {
    return s.rdb.SCard(ctx, keyFor(code).participants()).Result()
}

func (s *Store) CodesByUser(ctx context.Context, userID string) ([]string, error) {
    return s.rdb.SMembers(ctx, userLobbiesKey(userID)).Result()
}

func (s *Store) MarkWaiting(ctx context.Context, meta *ChannelMeta) error {
    _, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
        p.ZAdd(ctx, waitingKey, redis.Z{Score: float64(meta.CreatedAt.UnixMilli()), Member: meta.ID})
        p.Expire(ctx, waitingKey, lobbyTTL)
        return nil
    })
    return err
}

func (s *Store) Unlist(ctx context.Context, code string) error {
    return s.rdb.ZRem(ctx, waitingKey, string(keyFor(code))).Err()
}

// ListWaiting returns waiting lobbies, oldest first. Codes whose metadata
// expired are pruned from the index.
func (s *Store) ListWaiting(ctx context.Context) ([]*ChannelMeta, error) {
    codes, err := s.rdb.ZRange(ctx, waitingKey, 0, -1).Result()
    if err != nil || len(codes) == 0 {
        return nil, err
    }
    keys := make([]string, len(codes))
    for i, c := range codes {
        keys[i] = keyFor(c).meta()
    }
    raws, err := s.rdb.MGet(ctx, keys...).Result()
    if err != nil {
        return nil, err
    }
    var out []*ChannelMeta
    for i, v := range raws {
        raw, ok := v.(string)
        if !ok {
            _ = s.Unlist(ctx, codes[i])
            continue
        }
        m, err := decodeMeta(codes[i], []byte(raw))
        if err != nil || m.State != StateLobby {
            continue
        }
        out = append(out, m)
    }
    return out, nil
}

// newCode returns codeLen characters from an alphabet without 0/O and 1/I.
func newCode() (string, error) {
    b := make([]byte, codeLen)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }
    for i := range b {
        b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
    }
    return string(b), nil
}
