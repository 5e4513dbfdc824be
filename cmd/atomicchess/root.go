package main

import (
	"github.com/spf13/cobra"

	"github.com/park285/atomic-chess-bot/internal/msgcat"
	"github.com/park285/atomic-chess-bot/internal/obslog"
)

var (
	// Global flags.
	lang        string
	messagesDir string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "atomicchess",
	Short: "Atomic chess on the terminal",
	Long: `atomicchess runs the atomic chess rules engine locally.

A capture explodes the destination square together with every non-pawn
piece around it. Destroying the enemy king wins.

Examples:
  # Two players at one keyboard
  atomicchess play

  # Draw a position after a few moves
  atomicchess render --moves "e2e4 d7d5 e4d5" --out board.png

  # Check the Iris gateway configured in the environment
  atomicchess iris-check`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			return nil
		}
		return obslog.Init(obslog.Options{Level: "debug", Console: true, Format: "console"})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&lang, "lang", "l", msgcat.DefaultLang, "message language (ko, en)")
	rootCmd.PersistentFlags().StringVar(&messagesDir, "messages-dir", "", "directory of YAML message overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func loadCatalog() (*msgcat.Catalog, error) {
	return msgcat.NewLang(lang, messagesDir)
}
