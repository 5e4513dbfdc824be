package pvpchess

import (
    "context"
    "strings"
    "testing"
    "time"

    "github.com/park285/atomic-chess-bot/internal/chess"
    "github.com/park285/atomic-chess-bot/internal/domain"
    "github.com/park285/atomic-chess-bot/internal/render"
)

func playedGame(t *testing.T, placement string, moves ...string) *Game {
    t.Helper()
    now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
    g, err := NewGame(CreateParams{ChallengerID: "w", ChallengerName: "W", TargetID: "b", TargetName: "B", Color: "white", Placement: placement}, now)
    if err != nil { t.Fatalf("NewGame: %v", err) }
    for i, mv := range moves {
        user := g.IDOf(g.Turn)
        out, err := g.Apply(user, mv, now.Add(time.Duration(i+1)*time.Minute))
        if err != nil || !out.Applied() { t.Fatalf("move %s: %v %+v", mv, err, out) }
    }
    return g
}

func TestToDTOForViewer_FlipDifferent(t *testing.T) {
    g := playedGame(t, "", "e2e4")
    r := render.NewRenderer()
    ctx := context.Background()

    dtoW, err := ToDTO(ctx, r, g, "w")
    if err != nil || dtoW == nil || len(dtoW.BoardImage) == 0 { t.Fatalf("white dto render failed: %v", err) }
    dtoB, err := ToDTO(ctx, r, g, "b")
    if err != nil || dtoB == nil || len(dtoB.BoardImage) == 0 { t.Fatalf("black dto render failed: %v", err) }
    if string(dtoW.BoardImage) == string(dtoB.BoardImage) {
        t.Fatalf("expected different images for flipped viewpoints")
    }
    if dtoW.BoardText == dtoB.BoardText {
        t.Fatalf("expected different text boards for flipped viewpoints")
    }
    if dtoW.MoveCount != 1 || dtoW.Moves[0] != "e2-e4" || dtoW.Turn != "black" || dtoW.TurnName != "B" {
        t.Fatalf("unexpected state: %+v", dtoW)
    }
}

func TestToDTO_WithoutRenderer(t *testing.T) {
    g := playedGame(t, knightMate, "d5e7")
    st, err := ToDTO(context.Background(), nil, g, "spectator")
    if err != nil { t.Fatalf("ToDTO: %v", err) }
    if st.BoardImage != nil { t.Fatalf("unexpected image without renderer") }
    if !st.Finished() || st.WinnerName != "W" || st.Result != "WHITE_WON" {
        t.Fatalf("unexpected final state: %+v", st)
    }
    if len(st.LastCleared) != 3 { t.Fatalf("LastCleared = %v", st.LastCleared) }
    if !strings.Contains(st.BoardText, "♚") { t.Fatalf("white king missing from text board:\n%s", st.BoardText) }
}

func TestLastHighlightMover(t *testing.T) {
    g := playedGame(t, "", "e2e4", "e7e5")
    h := lastHighlight(g)
    if h == nil || h.Mover != chess.Black || h.From != chess.MustCoord("e7") || h.To != chess.MustCoord("e5") {
        t.Fatalf("highlight = %+v", h)
    }
    if lastHighlight(playedGame(t, "")) != nil {
        t.Fatalf("expected no highlight before the first move")
    }
    if got := hudTurn(g); got != "White • 2" {
        t.Fatalf("hudTurn = %q", got)
    }
}

func TestToMoveSummary(t *testing.T) {
    g := playedGame(t, knightMate)
    out, err := g.Apply("w", "d5 e7", time.Now())
    if err != nil { t.Fatalf("Apply: %v", err) }
    s := ToMoveSummary(g, "w", out, nil)
    if s.Rejected() || !s.KingDestroyed || s.Mover != "W" || s.From != "d5" || s.To != "e7" || len(s.Cleared) != 3 {
        t.Fatalf("summary = %+v", s)
    }
    rej := ToMoveSummary(g, "b", MoveOutcome{NotYourTurn: true}, nil)
    if !rej.Rejected() || rej.Mover != "B" || rej.From != "" {
        t.Fatalf("rejected summary = %+v", rej)
    }
}

func TestToRecords(t *testing.T) {
    list := []*domain.GameResult{
        nil,
        {GameID: "x", WhiteName: "W", BlackName: "B", Result: "0-1", Method: "resignation", Moves: []string{"e2-e4"}},
    }
    recs := ToRecords(list)
    if len(recs) != 1 || recs[0].Plies != 1 || recs[0].Result != "0-1" {
        t.Fatalf("records = %+v", recs)
    }
}
