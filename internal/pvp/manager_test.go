package pvp

import (
    "context"
    "errors"
    "sync"
    "testing"

    "github.com/park285/atomic-chess-bot/internal/pvpchess"
)

func newGame(t *testing.T, m *Manager, white, black, room string) *pvpchess.Game {
    t.Helper()
    g, err := m.CreateGame(context.Background(), pvpchess.CreateParams{
        OriginRoom: room, ResolveRoom: room,
        ChallengerID: white, ChallengerName: white,
        TargetID: black, TargetName: black,
        Color: string(ColorWhite),
    })
    if err != nil { t.Fatalf("CreateGame: %v", err) }
    return g
}

func TestParseColorChoice(t *testing.T) {
    cases := map[string]ColorChoice{"white": ColorWhite, " B ": ColorBlack, "흑": ColorBlack, "": ColorRandom, "purple": ColorRandom}
    for in, want := range cases {
        if got := ParseColorChoice(in); got != want {
            t.Errorf("ParseColorChoice(%q) = %s, want %s", in, got, want)
        }
    }
    if !IsColorWord("random") || IsColorWord("e2e4") {
        t.Fatalf("IsColorWord misclassified")
    }
}

func TestMemoryManager_PlayAndFinish(t *testing.T) {
    repo := pvpchess.NewMemoryRepository()
    m, err := NewManager(4, WithRepository(repo))
    if err != nil { t.Fatalf("NewManager: %v", err) }
    ctx := context.Background()
    g := newGame(t, m, "alice", "bob", "room")

    if _, out, _ := m.PlayMove(ctx, "bob", "e7e5"); !out.NotYourTurn {
        t.Fatalf("expected not your turn")
    }
    // e4xd5 explodes on d5
    for _, mv := range []struct{ user, text string }{
        {"alice", "e2e4"}, {"bob", "d7d5"}, {"alice", "e4d5"},
    } {
        if _, out, err := m.PlayMoveByRoom(ctx, mv.user, "room", mv.text); err != nil || !out.Applied() {
            t.Fatalf("%s %s: %v %+v", mv.user, mv.text, err, out)
        }
    }
    cur, err := m.Load(ctx, g.ID)
    if err != nil { t.Fatalf("Load: %v", err) }
    if len(cur.Moves) != 3 || !cur.Moves[2].Capture || cur.Turn != pvpchess.Black {
        t.Fatalf("after capture: %+v", cur.Moves)
    }

    if _, err := m.ResignByRoom(ctx, "bob", "room"); err != nil { t.Fatalf("ResignByRoom: %v", err) }
    if active, _ := m.ActiveGameByUser(ctx, "alice"); active != nil {
        t.Fatalf("resigned game still active")
    }
    list, _ := repo.Recent(ctx, "alice", 10)
    if len(list) != 1 || list[0].Result != "1-0" || list[0].Explosions != 1 {
        t.Fatalf("archive = %+v", list)
    }
}

func TestMemoryManager_ReturnsCopies(t *testing.T) {
    m, _ := NewManager(4)
    g := newGame(t, m, "a", "b", "r")
    g.Moves = append(g.Moves, pvpchess.MoveRecord{From: "e2", To: "e4"})
    cur, _ := m.Load(context.Background(), g.ID)
    if len(cur.Moves) != 0 { t.Fatalf("caller mutation leaked into manager") }
}

func TestMemoryManager_ConcurrentMovesApplyOnce(t *testing.T) {
    m, _ := NewManager(4)
    g := newGame(t, m, "a", "b", "r")
    ctx := context.Background()

    var wg sync.WaitGroup
    var mu sync.Mutex
    applied := 0
    for i := 0; i < 16; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            _, out, err := m.PlayMove(ctx, "a", "e2e4")
            if err != nil { return }
            if out.Applied() {
                mu.Lock()
                applied++
                mu.Unlock()
            }
        }()
    }
    wg.Wait()
    if applied != 1 { t.Fatalf("applied %d times, want 1", applied) }
    cur, _ := m.Load(ctx, g.ID)
    if len(cur.Moves) != 1 { t.Fatalf("moves = %d", len(cur.Moves)) }
}

func TestMemoryManager_EvictsLeastRecentlyUsed(t *testing.T) {
    m, _ := NewManager(2)
    ctx := context.Background()
    g1 := newGame(t, m, "a", "b", "r")
    newGame(t, m, "c", "d", "r")
    // touch g1 so the second game becomes the eviction candidate
    if _, out, err := m.PlayMove(ctx, "a", "e2e4"); err != nil || !out.Applied() {
        t.Fatalf("PlayMove: %v", err)
    }
    newGame(t, m, "e", "f", "r")

    if m.Len() != 2 { t.Fatalf("Len = %d", m.Len()) }
    if _, err := m.Load(ctx, g1.ID); err != nil { t.Fatalf("recently used game evicted: %v", err) }
    if g, _ := m.ActiveGameByUser(ctx, "c"); g != nil { t.Fatalf("evicted game still indexed") }
    if _, _, err := m.PlayMove(ctx, "d", "e7e5"); !errors.Is(err, pvpchess.ErrGameNotFound) {
        t.Fatalf("err = %v", err)
    }
}

func TestMemoryManager_Close(t *testing.T) {
    m, _ := NewManager(2)
    newGame(t, m, "a", "b", "r")
    if err := m.Close(); err != nil { t.Fatalf("Close: %v", err) }
    if m.Len() != 0 { t.Fatalf("games kept after close") }
    if _, err := m.CreateGame(context.Background(), pvpchess.CreateParams{ChallengerID: "x", TargetID: "y"}); !errors.Is(err, ErrClosed) {
        t.Fatalf("err = %v", err)
    }
}
