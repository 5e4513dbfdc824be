package msgcat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/park285/atomic-chess-bot/internal/chess"
)

func TestEmbeddedCoversRejectReasons(t *testing.T) {
	for _, lang := range []string{"ko", "en"} {
		c, err := NewLang(lang, "")
		if err != nil {
			t.Fatalf("NewLang(%s): %v", lang, err)
		}
		for _, r := range chess.RejectReasons {
			if !c.Has("reject." + string(r)) {
				t.Errorf("%s: missing reject.%s", lang, r)
			}
		}
	}
}

func TestRenderTemplate(t *testing.T) {
	c, err := NewLang("en", "")
	if err != nil {
		t.Fatalf("NewLang: %v", err)
	}
	got, err := c.Render("atomic.explosion", map[string]any{"Square": "e7", "Count": 5})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "💥 Explosion on e7! 5 squares cleared." {
		t.Fatalf("Render = %q", got)
	}
	if _, err := c.Render("atomic.explosion", map[string]any{"Square": "e7"}); err == nil {
		t.Fatalf("expected missingkey error")
	}
	if got := c.Text("no.such.key", nil); got != "no.such.key" {
		t.Fatalf("Text fallback = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("a.yaml", "atomic:\n  no_game: \"nothing here\"\n")
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Text("atomic.no_game", nil); got != "nothing here" {
		t.Fatalf("override not applied: %q", got)
	}

	write("b.yml", "atomic:\n  no_game: \"again\"\n")
	if _, err := New(dir); err == nil {
		t.Fatalf("expected duplicate override error")
	}
}

func TestUnknownLanguage(t *testing.T) {
	if _, err := NewLang("xx", ""); err == nil {
		t.Fatalf("expected error for missing language")
	}
}
