package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/atomic-chess-bot/internal/chess"
	"github.com/park285/atomic-chess-bot/internal/msgcat"
)

func englishCatalog(t *testing.T) *msgcat.Catalog {
	t.Helper()
	cat, err := msgcat.NewLang("en", "")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func TestPlaySessionToExplosion(t *testing.T) {
	g, err := newEngine("4k3/4p3/8/3N4/8/8/8/4K3", "white")
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}
	// off-board square, a king move over two prompts, then full moves on one line
	in := strings.NewReader("z9\ne1\ne1\nd1\ne8f8\nd5e7\n")
	var out bytes.Buffer
	if err := playSession(in, &out, g, englishCatalog(t)); err != nil {
		t.Fatalf("playSession: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"White's turn!",
		"Move piece from: ",
		"Move piece to: ",
		"Move is out of bounds.",
		"Black's turn!",
		"Explosion on e7!",
		"White wins!",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if w, _ := g.Status().Winner(); !g.Status().Finished() || w != chess.White {
		t.Fatalf("status = %s", g.Status())
	}
}

func TestPlaySessionStopsAtEOF(t *testing.T) {
	g := chess.NewGame()
	var out bytes.Buffer
	if err := playSession(strings.NewReader("e2\n"), &out, g, englishCatalog(t)); err != nil {
		t.Fatalf("playSession: %v", err)
	}
	if g.Status().Finished() || g.Turn() != chess.White {
		t.Fatalf("game should be untouched")
	}
}

func TestReplayAndRenderCommand(t *testing.T) {
	g := chess.NewGame()
	opts, err := replay(g, "e2e4, d7d5 e4d5")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if opts.Highlight == nil || opts.Highlight.To != chess.MustCoord("d5") || len(opts.Blast) == 0 {
		t.Fatalf("last move not marked: %+v", opts)
	}
	if _, err := replay(chess.NewGame(), "e2e5"); err == nil || !strings.Contains(err.Error(), "ILLEGAL_SHAPE") {
		t.Fatalf("expected ILLEGAL_SHAPE, got %v", err)
	}

	out := filepath.Join(t.TempDir(), "b.png")
	rootCmd.SetArgs([]string{"render", "--moves", "e2e4 d7d5 e4d5", "--out", out, "--perspective", "black"})
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil || !bytes.HasPrefix(raw, []byte("\x89PNG")) {
		t.Fatalf("not a png: %v", err)
	}
	if !strings.Contains(stdout.String(), "UNFINISHED") {
		t.Fatalf("stdout = %q", stdout.String())
	}
}
