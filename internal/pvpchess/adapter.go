package pvpchess

import (
    "context"
    "fmt"

    "github.com/park285/atomic-chess-bot/internal/chess"
    "github.com/park285/atomic-chess-bot/internal/domain"
    "github.com/park285/atomic-chess-bot/internal/render"
    "github.com/park285/atomic-chess-bot/pkg/chessdto"
)

// ToDTO renders the board for viewerID and returns the presenter state.
// Participants see their own side at the bottom; anyone else sees the side to move.
func ToDTO(ctx context.Context, r render.BoardRenderer, g *Game, viewerID string) (*chessdto.SessionState, error) {
    if g == nil { return nil, nil }
    eng, err := g.Engine()
    if err != nil { return nil, err }
    snap := eng.Snapshot()

    perspective := g.Turn
    if c, ok := g.ColorOf(viewerID); ok { perspective = c }

    state := &chessdto.SessionState{
        GameID:      g.ID,
        WhiteName:   g.WhiteName,
        BlackName:   g.BlackName,
        Placement:   g.Placement,
        MoveCount:   len(g.Moves),
        Turn:        string(g.Turn),
        TurnName:    g.NameOf(g.Turn),
        Status:      string(g.Status),
        Result:      g.Result,
        Outcome:     g.Outcome,
        LastCleared: append([]string(nil), g.LastCleared...),
        BoardText:   render.Text(snap, perspective.Engine()),
        UpdatedAt:   g.UpdatedAt,
    }
    for _, mv := range g.Moves { state.Moves = append(state.Moves, mv.Notation()) }
    if g.Winner != "" {
        if c, ok := g.ColorOf(g.Winner); ok { state.WinnerName = g.NameOf(c) }
    }

    if r == nil { return state, nil }
    opts := render.Options{
        Header:      fmt.Sprintf("%s vs %s", g.WhiteName, g.BlackName),
        Turn:        hudTurn(g),
        Perspective: perspective.Engine(),
        Highlight:   lastHighlight(g),
        Blast:       parseCoords(g.LastCleared),
    }
    png, err := r.RenderPNG(ctx, snap, opts)
    if err != nil { return nil, err }
    state.BoardImage = png
    return state, nil
}

// ToMoveSummary describes a processed move. state may be nil when no image is needed.
func ToMoveSummary(g *Game, userID string, out MoveOutcome, state *chessdto.SessionState) *chessdto.MoveSummary {
    s := &chessdto.MoveSummary{
        State:         state,
        Accepted:      out.Result.Accepted,
        Reason:        string(out.Result.Reason),
        NotYourTurn:   out.NotYourTurn,
        Conflict:      out.Conflict,
        Captured:      out.Result.Captured,
        KingDestroyed: out.Result.KingDestroyed,
    }
    if g != nil {
        if c, ok := g.ColorOf(userID); ok { s.Mover = g.NameOf(c) }
    }
    if out.Result.Accepted {
        s.From = out.Result.From.String()
        s.To = out.Result.To.String()
        for _, c := range out.Result.Cleared { s.Cleared = append(s.Cleared, c.String()) }
    }
    return s
}

// ToRecords converts archived results for the history command.
func ToRecords(list []*domain.GameResult) []chessdto.GameRecord {
    out := make([]chessdto.GameRecord, 0, len(list))
    for _, r := range list {
        if r == nil { continue }
        out = append(out, chessdto.GameRecord{
            GameID:     r.GameID,
            WhiteName:  r.WhiteName,
            BlackName:  r.BlackName,
            Result:     r.Result,
            Method:     r.Method,
            Plies:      r.Plies(),
            Explosions: r.Explosions,
            MoveText:   r.MoveText,
            EndedAt:    r.EndedAt,
            Duration:   r.Duration,
        })
    }
    return out
}

func hudTurn(g *Game) string {
    moveNo := len(g.Moves)/2 + 1
    switch g.Status {
    case StatusFinished:
        return fmt.Sprintf("%s wins • %d", sideLabel(Color(g.Outcome)), moveNo)
    case StatusResigned:
        return fmt.Sprintf("Resigned • %d", moveNo)
    }
    return fmt.Sprintf("%s • %d", sideLabel(g.Turn), moveNo)
}

func sideLabel(c Color) string {
    if c == Black { return "Black" }
    return "White"
}

// lastHighlight marks the last ply. The mover is derived from parity since
// the piece is gone after a capture.
func lastHighlight(g *Game) *render.Highlight {
    n := len(g.Moves)
    if n == 0 { return nil }
    mv := g.Moves[n-1]
    from, r1 := chess.ParseCoord(mv.From)
    to, r2 := chess.ParseCoord(mv.To)
    if r1 != chess.RejectNone || r2 != chess.RejectNone { return nil }
    mover := g.StartTurn.Engine()
    if n%2 == 0 { mover = mover.Opponent() }
    return &render.Highlight{From: from, To: to, Mover: mover}
}

func parseCoords(list []string) []chess.Coord {
    var out []chess.Coord
    for _, s := range list {
        if c, r := chess.ParseCoord(s); r == chess.RejectNone { out = append(out, c) }
    }
    return out
}
