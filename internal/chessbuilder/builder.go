package chessbuilder

import (
    "errors"
    "fmt"
    "strings"

    "github.com/prometheus/client_golang/prometheus"
    "go.uber.org/zap"

    "github.com/park285/atomic-chess-bot/internal/adapter/chesspresenter"
    "github.com/park285/atomic-chess-bot/internal/config"
    "github.com/park285/atomic-chess-bot/internal/metrics"
    "github.com/park285/atomic-chess-bot/internal/msgcat"
    "github.com/park285/atomic-chess-bot/internal/obslog"
    "github.com/park285/atomic-chess-bot/internal/pvp"
    "github.com/park285/atomic-chess-bot/internal/pvpchan"
    "github.com/park285/atomic-chess-bot/internal/pvpchess"
    "github.com/park285/atomic-chess-bot/internal/render"
)

// Deps is everything the command layer needs, wired from AppConfig.
type Deps struct {
    Games     pvpchess.Backend
    Repo      pvpchess.ResultRepository
    // Lobby is nil unless redis is configured.
    Lobby     *pvpchan.Manager
    Renderer  render.BoardRenderer
    Catalog   *msgcat.Catalog
    Formatter *chesspresenter.Formatter
    Metrics   metrics.Recorder
    Backend   string

    closers []func() error
}

// New builds the session backend, archive, renderer and formatter.
// REDIS_URL selects the redis backend, otherwise games live in memory.
// DATABASE_URL selects the postgres archive, otherwise results are kept in memory.
// reg may be nil to skip metrics.
func New(cfg *config.AppConfig, reg prometheus.Registerer) (*Deps, error) {
    if cfg == nil {
        return nil, fmt.Errorf("nil config")
    }
    d := &Deps{Metrics: metrics.Nop{}}

    if reg != nil {
        rec, err := metrics.New(reg)
        if err != nil { return nil, fmt.Errorf("init metrics: %w", err) }
        d.Metrics = rec
    }

    cat, err := msgcat.NewLang(cfg.MessagesLang, cfg.MessagesDir)
    if err != nil { return nil, fmt.Errorf("load messages: %w", err) }
    d.Catalog = cat
    d.Formatter = chesspresenter.NewFormatter(chesspresenter.StaticPrefix(cfg.BotPrefix), cfg.Command, cat)

    var ropts []render.Option
    if dir := strings.TrimSpace(cfg.PiecesDir); dir != "" {
        ropts = append(ropts, render.WithPieceDir(dir))
    }
    d.Renderer = render.NewRenderer(ropts...)

    if strings.TrimSpace(cfg.DatabaseURL) != "" {
        repo, err := pvpchess.NewRepository(cfg.DatabaseURL)
        if err != nil { return nil, fmt.Errorf("init repository: %w", err) }
        d.Repo = repo
    } else {
        d.Repo = pvpchess.NewMemoryRepository()
    }
    d.closers = append(d.closers, d.Repo.Close)

    if strings.TrimSpace(cfg.RedisURL) != "" {
        mgr, err := pvpchess.NewManager(cfg.RedisURL,
            pvpchess.WithTTL(cfg.GameTTL()),
            pvpchess.WithMetrics(d.Metrics),
        )
        if err != nil {
            _ = d.Close()
            return nil, fmt.Errorf("init redis sessions: %w", err)
        }
        mgr.AttachRepository(d.Repo)
        d.Games = mgr
        d.Lobby = pvpchan.NewManager(mgr.Client(), mgr)
        d.Backend = "redis"
    } else {
        mgr, err := pvp.NewManager(cfg.MaxConcurrentGames,
            pvp.WithMetrics(d.Metrics),
            pvp.WithRepository(d.Repo),
        )
        if err != nil {
            _ = d.Close()
            return nil, fmt.Errorf("init memory sessions: %w", err)
        }
        d.Games = mgr
        d.Backend = "memory"
    }
    d.closers = append(d.closers, d.Games.Close)

    obslog.L().Info("atomic_deps_ready",
        zap.String("backend", d.Backend),
        zap.Bool("postgres", strings.TrimSpace(cfg.DatabaseURL) != ""),
        zap.Bool("lobby", d.Lobby != nil),
        zap.String("lang", cfg.MessagesLang),
    )
    return d, nil
}

// Close releases sessions first, then the archive.
func (d *Deps) Close() error {
    if d == nil { return nil }
    var errs []error
    for i := len(d.closers) - 1; i >= 0; i-- {
        if err := d.closers[i](); err != nil {
            errs = append(errs, err)
        }
    }
    d.closers = nil
    return errors.Join(errs...)
}
