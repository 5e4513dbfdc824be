package chessbuilder

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/park285/atomic-chess-bot/internal/config"
	"github.com/park285/atomic-chess-bot/internal/pvpchess"
)

func baseConfig() *config.AppConfig {
	return &config.AppConfig{
		BotPrefix:          "!",
		Command:            "atomic",
		MaxConcurrentGames: 4,
		GameTTLSec:         3600,
		MessagesLang:       "en",
	}
}

func TestNewMemoryBackend(t *testing.T) {
	d, err := New(baseConfig(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()
	if d.Backend != "memory" || d.Lobby != nil {
		t.Fatalf("expected memory backend without lobby, got %s lobby=%v", d.Backend, d.Lobby != nil)
	}
	ctx := context.Background()
	g, err := d.Games.CreateGame(ctx, pvpchess.CreateParams{
		OriginRoom: "r", ChallengerID: "a", ChallengerName: "A", TargetID: "b", TargetName: "B", Color: "white",
	})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := d.Games.Resign(ctx, "a"); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	recent, err := d.Repo.Recent(ctx, "b", 5)
	if err != nil || len(recent) != 1 || recent[0].GameID != g.ID {
		t.Fatalf("archive not wired: %v %+v", err, recent)
	}
	if got := d.Formatter.Help(); got == "" {
		t.Fatalf("formatter not wired")
	}
}

func TestNewRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.Backend != "redis" || d.Lobby == nil {
		t.Fatalf("expected redis backend with lobby")
	}
	if _, err := d.Games.CreateGame(context.Background(), pvpchess.CreateParams{
		OriginRoom: "r", ChallengerID: "a", TargetID: "b", Color: "black",
	}); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if keys := mr.Keys(); len(keys) == 0 {
		t.Fatalf("nothing written to redis")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewRejectsBadInputs(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Fatalf("expected nil config error")
	}
	cfg := baseConfig()
	cfg.MessagesLang = "xx"
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("expected unknown language error")
	}
	cfg = baseConfig()
	cfg.RedisURL = "http://not-redis"
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("expected redis url error")
	}
}
