package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/park285/atomic-chess-bot/internal/chess"
	"github.com/park285/atomic-chess-bot/internal/msgcat"
	"github.com/park285/atomic-chess-bot/internal/render"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a hot-seat game in the terminal",
	Long: `Play atomic chess with two players sharing one terminal.

Each turn asks for the square to move from and the square to move to.
A full move such as "e2e4" or "e2 e4" may also be typed at the first prompt.
The board is printed from the side to move. End input (Ctrl-D) to quit.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

var (
	playPlacement string
	playTurn      string
)

func init() {
	playCmd.Flags().StringVar(&playPlacement, "placement", chess.StartPlacement, "starting piece placement")
	playCmd.Flags().StringVar(&playTurn, "turn", "white", "side to move first")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	g, err := newEngine(playPlacement, playTurn)
	if err != nil {
		return err
	}
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	return playSession(cmd.InOrStdin(), cmd.OutOrStdout(), g, cat)
}

func newEngine(placement, turn string) (*chess.Game, error) {
	c, ok := chess.ParseColor(turn)
	if !ok {
		return nil, fmt.Errorf("unknown side %q", turn)
	}
	return chess.NewGameFromPlacement(placement, c)
}

// playSession runs the prompt loop until the game ends or in is exhausted.
func playSession(in io.Reader, out io.Writer, g *chess.Game, cat *msgcat.Catalog) error {
	sc := bufio.NewScanner(in)
	read := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return "", false
		}
		return strings.TrimSpace(sc.Text()), true
	}
	colorName := func(c chess.Color) string { return cat.Text("color."+c.String(), nil) }

	for !g.Status().Finished() {
		fmt.Fprintln(out, render.Text(g.Snapshot(), g.Turn()))
		fmt.Fprintln(out, cat.Text("cli.turn", map[string]any{"Color": colorName(g.Turn())}))

		first, ok := read(cat.Text("cli.prompt_from", nil))
		if !ok {
			return sc.Err()
		}
		from, to, full := chess.ParseMoveText(first)
		if !full || len(first) <= 2 {
			from = first
			if to, ok = read(cat.Text("cli.prompt_to", nil)); !ok {
				return sc.Err()
			}
		}

		res := g.SubmitMove(from, to)
		if !res.Accepted {
			fmt.Fprintln(out, cat.Text("reject."+string(res.Reason), nil))
			continue
		}
		if res.Captured {
			fmt.Fprintln(out, cat.Text("atomic.explosion", map[string]any{"Square": res.To.String(), "Count": len(res.Cleared)}))
		}
	}

	winner, ok := g.Status().Winner()
	if !ok {
		return errors.New("game ended without a winner")
	}
	fmt.Fprintln(out, render.Text(g.Snapshot(), winner))
	fmt.Fprintln(out, cat.Text("cli.winner", map[string]any{"Color": colorName(winner)}))
	return nil
}
