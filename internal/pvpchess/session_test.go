package pvpchess

import (
    "errors"
    "testing"
    "time"

    "github.com/park285/atomic-chess-bot/internal/chess"
)

func TestNewGame_ColorAssignment(t *testing.T) {
    now := time.Now()
    g, err := NewGame(CreateParams{ChallengerID: "a", ChallengerName: "A", TargetID: "b", TargetName: "B", Color: "black"}, now)
    if err != nil { t.Fatalf("NewGame: %v", err) }
    if g.WhiteID != "b" || g.BlackID != "a" || g.WhiteName != "B" {
        t.Fatalf("black preference ignored: %+v", g)
    }
    for i := 0; i < 8; i++ {
        g, err := NewGame(CreateParams{ChallengerID: "a", TargetID: "b", Color: "random"}, now)
        if err != nil { t.Fatalf("NewGame random: %v", err) }
        if (g.WhiteID != "a" || g.BlackID != "b") && (g.WhiteID != "b" || g.BlackID != "a") {
            t.Fatalf("random colors broke pairing: %+v", g)
        }
    }
}

func TestApply_NonParticipant(t *testing.T) {
    g := playedGame(t, "")
    if _, err := g.Apply("intruder", "e2e4", time.Now()); !errors.Is(err, ErrNotParticipant) {
        t.Fatalf("err = %v", err)
    }
}

func TestApply_RejectionLeavesRecord(t *testing.T) {
    g := playedGame(t, "", "e2e4")
    before := g.Clone()
    out, err := g.Apply("b", "e7 e4", time.Now())
    if err != nil { t.Fatalf("Apply: %v", err) }
    if out.Applied() || out.Result.Reason != chess.RejectIllegalShape {
        t.Fatalf("outcome = %+v", out)
    }
    if len(g.Moves) != len(before.Moves) || g.Placement != before.Placement || g.Turn != before.Turn {
        t.Fatalf("record changed on rejection")
    }
}

func TestApply_AfterFinishIsGameOver(t *testing.T) {
    g := playedGame(t, knightMate, "d5e7")
    out, err := g.Apply("w", "e1e2", time.Now())
    if err != nil { t.Fatalf("Apply: %v", err) }
    if out.Result.Reason != chess.RejectGameOver { t.Fatalf("reason = %s", out.Result.Reason) }
    if g.ResultMethod() != "explosion" || g.Explosions() != 1 { t.Fatalf("method=%s explosions=%d", g.ResultMethod(), g.Explosions()) }
}

func TestResignRecord(t *testing.T) {
    g := playedGame(t, "")
    if err := g.Resign("w", time.Now()); err != nil { t.Fatalf("Resign: %v", err) }
    if g.Winner != "b" || g.ResultMethod() != "resignation" { t.Fatalf("resigned game = %+v", g) }
    if err := g.Resign("b", time.Now()); !errors.Is(err, ErrNotActive) { t.Fatalf("second resign err = %v", err) }
}

func TestEngineReplayWithBlackToMove(t *testing.T) {
    g, err := NewGame(CreateParams{ChallengerID: "a", TargetID: "b", Color: "white", StartTurn: Black}, time.Now())
    if err != nil { t.Fatalf("NewGame: %v", err) }
    if _, err := g.Apply("b", "e7e5", time.Now()); err != nil { t.Fatalf("Apply: %v", err) }
    eng, err := g.Engine()
    if err != nil { t.Fatalf("Engine: %v", err) }
    if eng.Turn() != chess.White || g.Turn != White { t.Fatalf("turn after black opener = %s/%s", eng.Turn(), g.Turn) }

    clone := g.Clone()
    clone.Moves[0].From = "a1"
    if g.Moves[0].From != "e7" { t.Fatalf("Clone shares move slice") }
}

func TestMoveRecordNotation(t *testing.T) {
    if got := (MoveRecord{From: "d5", To: "e7", Capture: true}).Notation(); got != "d5xe7" {
        t.Fatalf("capture notation = %q", got)
    }
    if got := (MoveRecord{From: "e2", To: "e4"}).Notation(); got != "e2-e4" {
        t.Fatalf("move notation = %q", got)
    }
}
