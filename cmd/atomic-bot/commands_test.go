package main

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/park285/atomic-chess-bot/internal/adapter/chesspresenter"
	"github.com/park285/atomic-chess-bot/internal/chessbuilder"
	appcfg "github.com/park285/atomic-chess-bot/internal/config"
	"github.com/park285/atomic-chess-bot/internal/irisfast"
)

type sent struct {
	room  string
	text  string
	image bool
}

type outbox struct {
	mu   sync.Mutex
	msgs []sent
}

func (o *outbox) take() []sent {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.msgs
	o.msgs = nil
	return out
}

func newTestBot(t *testing.T, redisURL string) (*bot, *outbox) {
	t.Helper()
	cfg := &appcfg.AppConfig{
		BotPrefix:          "!",
		Command:            "atomic",
		MaxConcurrentGames: 8,
		GameTTLSec:         3600,
		MessagesLang:       "en",
		RedisURL:           redisURL,
		AllowedRooms:       []string{"room-a", "room-b"},
	}
	deps, err := chessbuilder.New(cfg, nil)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	t.Cleanup(func() { _ = deps.Close() })

	box := &outbox{}
	p := chesspresenter.NewPresenter(
		func(room, message string) error {
			box.mu.Lock()
			box.msgs = append(box.msgs, sent{room: room, text: message})
			box.mu.Unlock()
			return nil
		},
		func(room, image string) error {
			box.mu.Lock()
			box.msgs = append(box.msgs, sent{room: room, image: image != ""})
			box.mu.Unlock()
			return nil
		},
	)
	return newBot(cfg, deps, p), box
}

func chat(room, userID, name, text string) *irisfast.Message {
	return &irisfast.Message{Room: room, Msg: text, Sender: &name, JSON: &irisfast.MessageJSON{UserID: userID}}
}

func lastText(t *testing.T, msgs []sent) string {
	t.Helper()
	for i := len(msgs) - 1; i >= 0; i-- {
		if !msgs[i].image {
			return msgs[i].text
		}
	}
	t.Fatalf("no text in %+v", msgs)
	return ""
}

func countImages(msgs []sent) int {
	n := 0
	for _, m := range msgs {
		if m.image {
			n++
		}
	}
	return n
}

func TestCommandFilter(t *testing.T) {
	b, _ := newTestBot(t, "")
	cases := []struct {
		msg  *irisfast.Message
		ok   bool
		args int
	}{
		{chat("room-a", "u", "U", "!atomic e2 e4"), true, 2},
		{chat("room-a", "u", "U", "!ATOMIC"), true, 0},
		{chat("room-a", "u", "U", "!other e2 e4"), false, 0},
		{chat("room-a", "u", "U", "atomic e2 e4"), false, 0},
		{chat("room-z", "u", "U", "!atomic e2 e4"), false, 0},
		{chat("room-a", "u", "U", "   "), false, 0},
		{nil, false, 0},
	}
	for i, tc := range cases {
		args, ok := b.command(tc.msg)
		if ok != tc.ok || len(args) != tc.args {
			t.Errorf("case %d: got ok=%v args=%v", i, ok, args)
		}
	}
}

func TestChallengePlayResignHistory(t *testing.T) {
	b, box := newTestBot(t, "")
	ctx := context.Background()
	alice := func(text string) { b.handle(ctx, chat("room-a", "alice", "Alice", text)) }
	bob := func(text string) { b.handle(ctx, chat("room-a", "bob", "bob", text)) }

	alice("!atomic")
	if got := lastText(t, box.take()); !strings.Contains(got, "Atomic chess") {
		t.Fatalf("help = %q", got)
	}

	alice("!atomic @bob white")
	msgs := box.take()
	if got := lastText(t, msgs); !strings.HasPrefix(got, "💥 Atomic game started: Alice (white) vs bob (black)") {
		t.Fatalf("start = %q", got)
	}
	if countImages(msgs) != 1 {
		t.Fatalf("expected one board image, got %+v", msgs)
	}

	alice("!atomic @bob")
	if got := lastText(t, box.take()); got != "You already have a game in progress in this room." {
		t.Fatalf("busy = %q", got)
	}

	bob("!atomic e7 e5")
	if got := lastText(t, box.take()); got != "It is your opponent's turn." {
		t.Fatalf("out of turn = %q", got)
	}

	alice("!atomic e2 e5")
	msgs = box.take()
	if got := lastText(t, msgs); got != "Your piece cannot make that move." || countImages(msgs) != 0 {
		t.Fatalf("illegal move = %+v", msgs)
	}

	alice("!atomic e2e4")
	msgs = box.take()
	if got := lastText(t, msgs); !strings.HasPrefix(got, "Alice: e2 → e4\n• To move: Black (bob)") || countImages(msgs) != 1 {
		t.Fatalf("move = %+v", msgs)
	}

	bob("!atomic status")
	if got := lastText(t, box.take()); !strings.Contains(got, "1 moves played") {
		t.Fatalf("status = %q", got)
	}

	bob("!atomic resign")
	if got := lastText(t, box.take()); got != "🛑 bob resigned. Winner: Alice" {
		t.Fatalf("resign = %q", got)
	}

	bob("!atomic resign")
	if got := lastText(t, box.take()); got != "You have no atomic game in progress." {
		t.Fatalf("second resign = %q", got)
	}

	bob("!atomic history")
	if got := lastText(t, box.take()); !strings.Contains(got, "Alice vs bob 1-0 (resignation, 1 plies)") {
		t.Fatalf("history = %q", got)
	}

	bob("!atomic record 1")
	if got := lastText(t, box.take()); !strings.Contains(got, "1. e2-e4") || !strings.Contains(got, "Result: 1-0 (resignation)") {
		t.Fatalf("record = %q", got)
	}

	bob("!atomic record 2")
	if got := lastText(t, box.take()); got != "No game with that number." {
		t.Fatalf("missing record = %q", got)
	}
}

func TestSelfChallengeAndMissingLobby(t *testing.T) {
	b, box := newTestBot(t, "")
	ctx := context.Background()

	b.handle(ctx, chat("room-a", "alice", "Alice", "!atomic @alice"))
	if got := lastText(t, box.take()); got != "You cannot challenge yourself." {
		t.Fatalf("self challenge = %q", got)
	}
	b.handle(ctx, chat("room-a", "alice", "Alice", "!atomic make"))
	if got := lastText(t, box.take()); got != "Lobbies need a Redis backend." {
		t.Fatalf("make without redis = %q", got)
	}
	b.handle(ctx, chat("room-a", "alice", "Alice", "!atomic e2 e4"))
	if got := lastText(t, box.take()); got != "You have no atomic game in progress." {
		t.Fatalf("move without game = %q", got)
	}
}

func TestLobbyAcrossRooms(t *testing.T) {
	mr := miniredis.RunT(t)
	b, box := newTestBot(t, "redis://"+mr.Addr())
	ctx := context.Background()

	b.handle(ctx, chat("room-a", "alice", "Alice", "!atomic make white"))
	made := lastText(t, box.take())
	fields := strings.Fields(made)
	if len(fields) < 2 || fields[0] != "Lobby" {
		t.Fatalf("made = %q", made)
	}
	code := fields[1]

	b.handle(ctx, chat("room-b", "bob", "Bob", "!atomic lobby"))
	if got := lastText(t, box.take()); !strings.Contains(got, code+" (Alice)") {
		t.Fatalf("lobby list = %q", got)
	}

	b.handle(ctx, chat("room-b", "alice", "Alice", "!atomic join "+code))
	if got := lastText(t, box.take()); got != "You cannot join your own lobby." {
		t.Fatalf("self join = %q", got)
	}

	b.handle(ctx, chat("room-b", "bob", "Bob", "!atomic join "+strings.ToLower(code)))
	msgs := box.take()
	rooms := map[string]int{}
	for _, m := range msgs {
		if m.image {
			rooms[m.room]++
		}
	}
	if rooms["room-a"] != 1 || rooms["room-b"] != 1 {
		t.Fatalf("board not broadcast to both rooms: %+v", msgs)
	}
	if got := lastText(t, msgs); !strings.HasPrefix(got, "💥 Atomic game started: Alice (white) vs Bob (black)") {
		t.Fatalf("start = %q", got)
	}

	b.handle(ctx, chat("room-b", "bob", "Bob", "!atomic e2 e4"))
	if got := lastText(t, box.take()); got != "It is your opponent's turn." {
		t.Fatalf("bob first = %q", got)
	}
	b.handle(ctx, chat("room-a", "alice", "Alice", "!atomic cancel"))
	if got := lastText(t, box.take()); got != "You have no waiting lobby." {
		t.Fatalf("cancel = %q", got)
	}
	b.handle(ctx, chat("room-a", "carol", "Carol", "!atomic join NOPE42"))
	if got := lastText(t, box.take()); got != "Lobby not found or expired." {
		t.Fatalf("unknown code = %q", got)
	}
}
