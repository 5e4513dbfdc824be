package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/park285/atomic-chess-bot/internal/chess"
	"github.com/park285/atomic-chess-bot/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write a PNG of a position",
	Long: `Render a position to PNG, optionally after replaying moves.

The last move is highlighted and, if it was a capture, the blast squares
are marked.

Examples:
  atomicchess render --out start.png
  atomicchess render --placement "4k3/4p3/8/3N4/8/8/8/4K3" --moves d5e7 --out mate.png`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

var (
	renderPlacement   string
	renderTurn        string
	renderMoves       string
	renderOut         string
	renderPerspective string
	renderPieces      string
)

func init() {
	renderCmd.Flags().StringVar(&renderPlacement, "placement", chess.StartPlacement, "starting piece placement")
	renderCmd.Flags().StringVar(&renderTurn, "turn", "white", "side to move first")
	renderCmd.Flags().StringVar(&renderMoves, "moves", "", "space or comma separated moves to replay (e2e4 d7d5 ...)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "board.png", "output file")
	renderCmd.Flags().StringVar(&renderPerspective, "perspective", "", "side at the bottom (default: side to move)")
	renderCmd.Flags().StringVar(&renderPieces, "pieces-dir", os.Getenv("PIECES_DIR"), "directory of piece SVGs")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	g, err := newEngine(renderPlacement, renderTurn)
	if err != nil {
		return err
	}
	opts, err := replay(g, renderMoves)
	if err != nil {
		return err
	}
	opts.Perspective = g.Turn()
	if renderPerspective != "" {
		c, ok := chess.ParseColor(renderPerspective)
		if !ok {
			return fmt.Errorf("unknown side %q", renderPerspective)
		}
		opts.Perspective = c
	}

	var ropts []render.Option
	if renderPieces != "" {
		ropts = append(ropts, render.WithPieceDir(renderPieces))
	}
	png, err := render.NewRenderer(ropts...).RenderPNG(cmd.Context(), g.Snapshot(), opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := os.WriteFile(renderOut, png, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", renderOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %s)\n", renderOut, len(png), g.Status())
	return nil
}

// replay applies moves in order and returns render options marking the last one.
func replay(g *chess.Game, moves string) (render.Options, error) {
	opts := render.Options{Header: "Atomic chess", Turn: time.Now().Format("2006-01-02")}
	fields := strings.FieldsFunc(moves, func(r rune) bool { return r == ' ' || r == ',' })
	for i, mv := range fields {
		from, to, ok := chess.ParseMoveText(mv)
		if !ok {
			return opts, fmt.Errorf("move %d %q: %s", i+1, mv, chess.RejectInvalidFormat)
		}
		res := g.SubmitMove(from, to)
		if !res.Accepted {
			return opts, fmt.Errorf("move %d %q: %s", i+1, mv, res.Reason)
		}
		opts.Highlight = &render.Highlight{From: res.From, To: res.To, Mover: res.Mover}
		opts.Blast = res.Cleared
	}
	return opts, nil
}
