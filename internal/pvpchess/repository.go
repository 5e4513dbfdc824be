package pvpchess

import (
    "context"
    "database/sql"
    "encoding/json"
    "fmt"
    "strings"
    "time"

    _ "github.com/lib/pq"

    "github.com/park285/atomic-chess-bot/internal/domain"
)

// ResultRepository archives finished games.
type ResultRepository interface {
    SaveResult(ctx context.Context, g *Game, method string) error
    Recent(ctx context.Context, userID string, limit int) ([]*domain.GameResult, error)
    Close() error
}

// Repository is the postgres archive.
type Repository struct {
    db *sql.DB
}

var _ ResultRepository = (*Repository)(nil)

func NewRepository(databaseURL string) (*Repository, error) {
    if strings.TrimSpace(databaseURL) == "" {
        return nil, fmt.Errorf("DATABASE_URL is required")
    }
    db, err := sql.Open("postgres", databaseURL)
    if err != nil {
        return nil, err
    }
    db.SetMaxOpenConns(16)
    db.SetMaxIdleConns(8)
    db.SetConnMaxLifetime(30 * time.Minute)
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        _ = db.Close()
        return nil, err
    }
    r := &Repository{db: db}
    if err := r.EnsureSchema(ctx); err != nil {
        _ = db.Close()
        return nil, fmt.Errorf("ensure schema: %w", err)
    }
    return r, nil
}

func (r *Repository) Close() error {
    if r == nil || r.db == nil { return nil }
    return r.db.Close()
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS atomic_games (
    game_id         TEXT PRIMARY KEY,
    white_id        TEXT NOT NULL,
    white_name      TEXT NOT NULL DEFAULT '',
    black_id        TEXT NOT NULL,
    black_name      TEXT NOT NULL DEFAULT '',
    origin_room     TEXT NOT NULL DEFAULT '',
    resolve_room    TEXT NOT NULL DEFAULT '',
    result          TEXT NOT NULL,
    result_method   TEXT NOT NULL,
    winner_id       TEXT NOT NULL DEFAULT '',
    moves           JSONB NOT NULL,
    move_text       TEXT NOT NULL,
    start_placement TEXT NOT NULL,
    final_placement TEXT NOT NULL,
    explosions      INTEGER NOT NULL DEFAULT 0,
    started_at      TIMESTAMPTZ NOT NULL,
    ended_at        TIMESTAMPTZ NOT NULL,
    duration_ms     BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS atomic_games_white_ended_idx ON atomic_games (white_id, ended_at DESC);
CREATE INDEX IF NOT EXISTS atomic_games_black_ended_idx ON atomic_games (black_id, ended_at DESC);`

// EnsureSchema creates the archive table if missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
    _, err := r.db.ExecContext(ctx, schemaSQL)
    return err
}

// SaveResult upserts a final PvP game result into the database.
func (r *Repository) SaveResult(ctx context.Context, g *Game, method string) error {
    if r == nil || r.db == nil || g == nil {
        return nil
    }
    res := ResultFromGame(g, method)
    movesRaw, err := json.Marshal(res.Moves)
    if err != nil {
        return fmt.Errorf("marshal moves: %w", err)
    }

    q := `INSERT INTO atomic_games (
        game_id, white_id, white_name, black_id, black_name,
        origin_room, resolve_room, result, result_method, winner_id,
        moves, move_text, start_placement, final_placement, explosions,
        started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
      ) ON CONFLICT (game_id) DO UPDATE SET
        result=EXCLUDED.result,
        result_method=EXCLUDED.result_method,
        winner_id=EXCLUDED.winner_id,
        moves=EXCLUDED.moves,
        move_text=EXCLUDED.move_text,
        final_placement=EXCLUDED.final_placement,
        explosions=EXCLUDED.explosions,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

    _, err = r.db.ExecContext(ctx, q,
        res.GameID,
        res.WhiteID, res.WhiteName,
        res.BlackID, res.BlackName,
        res.OriginRoom, res.ResolveRoom,
        res.Result, res.Method, res.WinnerID,
        string(movesRaw), res.MoveText, res.StartPlacement, res.FinalPlacement, res.Explosions,
        res.StartedAt, res.EndedAt, res.Duration.Milliseconds(),
    )
    return err
}

// Recent lists the user's archived games, newest first.
func (r *Repository) Recent(ctx context.Context, userID string, limit int) ([]*domain.GameResult, error) {
    if r == nil || r.db == nil {
        return nil, nil
    }
    if limit <= 0 {
        limit = 10
    }
    rows, err := r.db.QueryContext(ctx, `SELECT
        game_id, white_id, white_name, black_id, black_name, origin_room, resolve_room,
        result, result_method, winner_id, moves, move_text, start_placement, final_placement,
        explosions, started_at, ended_at, duration_ms
      FROM atomic_games
      WHERE white_id = $1 OR black_id = $1
      ORDER BY ended_at DESC
      LIMIT $2`, strings.TrimSpace(userID), limit)
    if err != nil {
        return nil, fmt.Errorf("query recent games: %w", err)
    }
    defer rows.Close()

    var out []*domain.GameResult
    for rows.Next() {
        var (
            res        domain.GameResult
            movesRaw   []byte
            durationMs int64
        )
        if err := rows.Scan(
            &res.GameID, &res.WhiteID, &res.WhiteName, &res.BlackID, &res.BlackName,
            &res.OriginRoom, &res.ResolveRoom, &res.Result, &res.Method, &res.WinnerID,
            &movesRaw, &res.MoveText, &res.StartPlacement, &res.FinalPlacement,
            &res.Explosions, &res.StartedAt, &res.EndedAt, &durationMs,
        ); err != nil {
            return nil, fmt.Errorf("scan game: %w", err)
        }
        if err := json.Unmarshal(movesRaw, &res.Moves); err != nil {
            return nil, fmt.Errorf("decode moves %s: %w", res.GameID, err)
        }
        res.Duration = time.Duration(durationMs) * time.Millisecond
        out = append(out, &res)
    }
    return out, rows.Err()
}

// ResultFromGame converts a finished session into its archive record.
func ResultFromGame(g *Game, method string) *domain.GameResult {
    moves := make([]string, 0, len(g.Moves))
    for _, mv := range g.Moves {
        moves = append(moves, mv.Notation())
    }
    token := resultToken(g)
    duration := g.UpdatedAt.Sub(g.CreatedAt)
    if duration < 0 { duration = 0 }
    return &domain.GameResult{
        GameID:         g.ID,
        WhiteID:        g.WhiteID,
        WhiteName:      g.WhiteName,
        BlackID:        g.BlackID,
        BlackName:      g.BlackName,
        OriginRoom:     g.OriginRoom,
        ResolveRoom:    g.ResolveRoom,
        Result:         token,
        Method:         strings.TrimSpace(method),
        WinnerID:       g.Winner,
        Moves:          moves,
        MoveText:       buildMoveText(moves, g.StartTurn, token),
        StartPlacement: g.StartPlacement,
        FinalPlacement: g.Placement,
        Explosions:     g.Explosions(),
        StartedAt:      g.CreatedAt,
        EndedAt:        g.UpdatedAt,
        Duration:       duration,
    }
}

func resultToken(g *Game) string {
    switch {
    case g.Winner != "" && g.Winner == g.WhiteID:
        return "1-0"
    case g.Winner != "" && g.Winner == g.BlackID:
        return "0-1"
    default:
        return "*"
    }
}

// buildMoveText numbers plies like PGN movetext. A game started with Black
// to move opens with "1. ..".
func buildMoveText(moves []string, startTurn Color, result string) string {
    var b strings.Builder
    plies := moves
    n := 1
    if startTurn == Black && len(plies) > 0 {
        fmt.Fprintf(&b, "%d. .. %s ", n, plies[0])
        plies = plies[1:]
        n++
    }
    for i := 0; i < len(plies); i += 2 {
        fmt.Fprintf(&b, "%d. %s", n, plies[i])
        if i+1 < len(plies) {
            b.WriteString(" ")
            b.WriteString(plies[i+1])
        }
        b.WriteString(" ")
        n++
    }
    b.WriteString(result)
    return b.String()
}
