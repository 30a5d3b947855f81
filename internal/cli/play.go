// play.go implements the yearly game loop: "next", "skip", "legacy" and
// "continue".
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/ui"
)

var nextCmd = &cobra.Command{
	Use:   "next [choice...]",
	Short: "Live the next year",
	Long: `Submit a choice for the coming year: either one of the offered
choices with --pick N, or your own words.`,
	RunE: withEnv(runNext),
}

var pickFlag int

func init() {
	nextCmd.Flags().IntVar(&pickFlag, "pick", 0, "Pick offered choice N (1-based)")
}

func runNext(cmd *cobra.Command, args []string, e *env) error {
	s := e.session
	choice := strings.Join(args, " ")
	if pickFlag != 0 {
		choices := s.Profile().AvailableChoices
		if pickFlag < 1 || pickFlag > len(choices) {
			return fmt.Errorf("--pick must be between 1 and %d", len(choices))
		}
		choice = choices[pickFlag-1]
	}
	if strings.TrimSpace(choice) == "" {
		return fmt.Errorf("a choice is required: lifesim next <choice> or --pick N")
	}

	if err := track("living the year", func() error {
		return s.AdvanceYear(cmd.Context(), choice)
	}); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	printYear(cmd.OutOrStdout(), s.Profile(), s.Scenario())
	return nil
}

var skipCmd = &cobra.Command{
	Use:   "skip [years]",
	Short: "Fast-forward several years",
	Long: `Let several years pass without making choices. Only the last year's
outcome is shown. Defaults to game.default_skip_years from the config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withEnv(runSkip),
}

var yesFlag bool

func init() {
	skipCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Do not ask for confirmation")
}

func runSkip(cmd *cobra.Command, args []string, e *env) error {
	years := e.cfg.Game.DefaultSkipYears
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("years must be a number, got %q", args[0])
		}
		years = n
	}

	var progress *ui.ProgressDisplay
	confirm := func(n int) bool {
		if !yesFlag && !askYesNo(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Skip %d years?", n)) {
			return false
		}
		progress = ui.NewProgressDisplay(fmt.Sprintf("skipping %d years", n))
		progress.Start()
		return true
	}

	s := e.session
	skipped, err := s.SkipYears(cmd.Context(), years, confirm)
	if progress != nil {
		if err != nil {
			progress.Finish(ui.OutcomeFailed)
		} else {
			progress.Finish(ui.OutcomeDone)
		}
	}
	if err != nil {
		return err
	}
	if !skipped {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing skipped.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout())
	printYear(cmd.OutOrStdout(), s.Profile(), s.Scenario())
	return nil
}

// askYesNo prompts on out and reads one line from in. Anything but y/yes
// declines.
func askYesNo(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

var legacyCmd = &cobra.Command{
	Use:   "legacy",
	Short: "End this life and continue as the next generation",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		s := e.session
		parent := s.Profile().ID
		if err := track("passing on the legacy", func() error {
			return s.CreateLegacy(cmd.Context())
		}); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Profile %s continues as profile %s.\n\n", parent, s.Profile().ID)
		printYear(out, s.Profile(), s.Scenario())
		return nil
	}),
}

var continueCmd = &cobra.Command{
	Use:   "continue <gameID>",
	Short: "Resume a saved game from your history",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		if _, err := e.requireUser(); err != nil {
			return err
		}
		s := e.session
		if err := track("loading game "+args[0], func() error {
			return s.ContinueByID(cmd.Context(), profile.ID(args[0]))
		}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		printYear(cmd.OutOrStdout(), s.Profile(), s.Scenario())
		return nil
	}),
}
