package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "go.uber.org/zap"
    "golang.org/x/sync/errgroup"

    "github.com/park285/atomic-chess-bot/internal/adapter/chesspresenter"
    "github.com/park285/atomic-chess-bot/internal/chessbuilder"
    appcfg "github.com/park285/atomic-chess-bot/internal/config"
    "github.com/park285/atomic-chess-bot/internal/irisfast"
    "github.com/park285/atomic-chess-bot/internal/obslog"
)

const sendTimeout = 15 * time.Second

func main() {
    cfg, err := appcfg.Load()
    if err != nil {
        log.Fatalf("config error: %v", err)
    }
    if err := obslog.Init(cfg.Log); err != nil {
        log.Fatalf("logger init error: %v", err)
    }
    logger := obslog.L()
    defer func() { _ = logger.Sync() }()

    if err := run(cfg); err != nil {
        logger.Error("atomic_bot_exit", zap.Error(err))
        os.Exit(1)
    }
}

func run(cfg *appcfg.AppConfig) error {
    logger := obslog.L()
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    deps, err := chessbuilder.New(cfg, prometheus.DefaultRegisterer)
    if err != nil {
        return err
    }
    defer func() { _ = deps.Close() }()

    headers := func() map[string]string {
        h := map[string]string{}
        if cfg.XUserID != "" {
            h["X-User-Id"] = cfg.XUserID
        }
        if cfg.XUserEmail != "" {
            h["X-User-Email"] = cfg.XUserEmail
        }
        if cfg.XSessionID != "" {
            h["X-Session-Id"] = cfg.XSessionID
        }
        return h
    }

    client := irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(headers))
    ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
    ws.SetHeaderProvider(headers)
    egress := irisfast.NewEgress(cfg.EgressMode, cfg.EgressDryRun, client, ws)

    presenter := chesspresenter.NewPresenter(
        func(room, message string) error {
            sctx, cancel := context.WithTimeout(ctx, sendTimeout)
            defer cancel()
            return egress.SendText(sctx, room, message)
        },
        func(room, imageBase64 string) error {
            sctx, cancel := context.WithTimeout(ctx, sendTimeout)
            defer cancel()
            return egress.SendImage(sctx, room, imageBase64)
        },
    )
    b := newBot(cfg, deps, presenter)

    ws.OnMessage(func(msg *irisfast.Message) {
        if _, ok := b.command(msg); !ok {
            return
        }
        // keep the read loop free
        go b.handle(ctx, msg)
    })

    g, gctx := errgroup.WithContext(ctx)

    if cfg.MetricsAddr != "" {
        srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
        g.Go(func() error {
            logger.Info("metrics_listen", zap.String("addr", cfg.MetricsAddr))
            if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
                return err
            }
            return nil
        })
        g.Go(func() error {
            <-gctx.Done()
            sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
            defer cancel()
            return srv.Shutdown(sctx)
        })
    }

    g.Go(func() error {
        cctx, cancel := context.WithTimeout(gctx, 10*time.Second)
        err := ws.Connect(cctx)
        cancel()
        if err != nil {
            return err
        }
        logger.Info("atomic_bot_ready",
            zap.String("backend", deps.Backend),
            zap.String("egress", cfg.EgressMode),
            zap.Strings("allowed_rooms", cfg.AllowedRooms),
        )
        <-gctx.Done()
        sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer scancel()
        return ws.Close(sctx)
    })

    err = g.Wait()
    logger.Info("atomic_bot_stop")
    return err
}

func metricsMux() *http.ServeMux {
    mux := http.NewServeMux()
    mux.Handle("/metrics", promhttp.Handler())
    mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    return mux
}
