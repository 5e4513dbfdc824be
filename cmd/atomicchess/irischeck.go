package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	appcfg "github.com/park285/atomic-chess-bot/internal/config"
	"github.com/park285/atomic-chess-bot/internal/irisfast"
)

var irisCheckCmd = &cobra.Command{
	Use:   "iris-check",
	Short: "Check the Iris gateway configured in the environment",
	Long: `Fetch /config from IRIS_BASE_URL and, when IRIS_WS_URL is set, listen on
the websocket for a short window, printing every chat message seen.`,
	Args: cobra.NoArgs,
	RunE: runIrisCheck,
}

var irisWatch time.Duration

func init() {
	irisCheckCmd.Flags().DurationVar(&irisWatch, "watch", 10*time.Second, "how long to listen on the websocket")
	rootCmd.AddCommand(irisCheckCmd)
}

func runIrisCheck(cmd *cobra.Command, args []string) error {
	cfg, err := appcfg.LoadCLI()
	if err != nil {
		return err
	}
	if cfg.IrisBaseURL == "" {
		return errors.New("IRIS_BASE_URL is required")
	}
	out := cmd.OutOrStdout()
	headers := func() map[string]string {
		return map[string]string{
			"X-User-Id":    cfg.XUserID,
			"X-User-Email": cfg.XUserEmail,
			"X-Session-Id": cfg.XSessionID,
		}
	}

	client := irisfast.NewClient(cfg.IrisBaseURL,
		irisfast.WithHeaderProvider(headers),
		irisfast.WithTimeout(8*time.Second),
	)
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	icfg, err := client.GetConfig(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(out, "/config error: %v\n", err)
	} else {
		fmt.Fprintf(out, "/config ok: bot=%s port=%d polling=%d rate=%d endpoint=%s\n",
			icfg.BotName, icfg.Port, icfg.PollingSpeed, icfg.MessageRate, icfg.WebserverEndpoint)
	}

	if cfg.IrisWSURL == "" {
		fmt.Fprintln(out, "IRIS_WS_URL not set; skipping WS check")
		return err
	}

	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 0, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		fmt.Fprintf(out, "WS state: %s\n", state)
	})
	ws.OnMessage(func(msg *irisfast.Message) {
		fmt.Fprintf(out, "WS msg room=%s user=%s from=%s text=%q\n", msg.Room, msg.UserID(), msg.SenderName(), msg.Msg)
	})

	cctx, ccancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		return fmt.Errorf("ws connect: %w", err)
	}

	select {
	case <-time.After(irisWatch):
	case <-cmd.Context().Done():
	}
	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	return ws.Close(closeCtx)
}
