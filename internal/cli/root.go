// Package cli defines Cobra command definitions for the lifesim CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lifesim-dev/lifesim/internal/tui"
	"github.com/lifesim-dev/lifesim/internal/tui/app"
)

var (
	serverFlag string
	version    = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "lifesim",
	Short: "Play a simulated life, one year at a time",
	Long: `lifesim is a client for the life-simulation backend. Create a
character, answer a few questions about them, then live their life one
year at a time and pass it on to the next generation.

Without a subcommand it opens the interactive client.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		fallback := tui.NewFallbackRunner(cmd.OutOrStdout(), e.session)
		return tui.Run(app.New(e.cfg, e.session), fallback)
	}),
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Backend base URL (overrides config and LIFESIM_SERVER)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(skipCmd)
	rootCmd.AddCommand(legacyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(continueCmd)
	rootCmd.AddCommand(useTemplateCmd)
	rootCmd.AddCommand(sheetCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(devserverCmd)
}
