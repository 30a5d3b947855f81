// new.go implements character creation: "lifesim new", "answer", "start"
// and "sheet".
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lifesim-dev/lifesim/internal/profile"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a character and get the interview questions",
	Long: `Submit a character sheet to the backend. Without --from the current
sheet is used: the defaults, or whatever a template filled in. The
backend answers with a few questions about the character; answer them
with "lifesim answer" and begin with "lifesim start".`,
	Args: cobra.NoArgs,
	RunE: withEnv(runNew),
}

var (
	fromFlag       string
	difficultyFlag string
)

func init() {
	newCmd.Flags().StringVar(&fromFlag, "from", "", "Read the character sheet from a YAML file")
	newCmd.Flags().StringVar(&difficultyFlag, "difficulty", "", "Easy, Normal, Hard or Hell")
}

func runNew(cmd *cobra.Command, _ []string, e *env) error {
	if _, err := e.requireUser(); err != nil {
		return err
	}
	s := e.session

	p := s.Profile()
	if fromFlag != "" {
		sheet, err := profile.ReadSheet(fromFlag)
		if err != nil {
			return err
		}
		p = sheet
	}
	if difficultyFlag != "" {
		p.Difficulty = profile.Difficulty(difficultyFlag)
	}

	if err := s.SetProfile(p); err != nil {
		return err
	}
	if err := track("creating character", func() error {
		return s.SubmitProfile(cmd.Context())
	}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Character saved as profile %s.\n\n", s.Profile().ID)
	printProbes(out, s.Probes(), s.Answers())
	if len(s.Probes()) > 0 {
		fmt.Fprintln(out, "\nAnswer with: lifesim answer <n> <text>  (unanswered questions count as silence)")
		fmt.Fprintln(out, "Then begin:  lifesim start")
	}
	return nil
}

var answerCmd = &cobra.Command{
	Use:   "answer <n> [text...]",
	Short: "Answer interview question n",
	Long:  `Record the answer to question n (1-based). An empty answer means silence.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		probes := e.session.Probes()
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(probes) {
			return fmt.Errorf("question number must be between 1 and %d, got %q", len(probes), args[0])
		}
		text := strings.Join(args[1:], " ")
		if err := e.session.RecordAnswer(probes[n-1], text); err != nil {
			return err
		}
		printProbes(cmd.OutOrStdout(), probes, e.session.Answers())
		return nil
	}),
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Begin the simulation with the current answers",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		s := e.session
		if err := track("starting your life", func() error {
			return s.StartSimulation(cmd.Context())
		}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		printYear(cmd.OutOrStdout(), s.Profile(), s.Scenario())
		return nil
	}),
}

var sheetCmd = &cobra.Command{
	Use:   "sheet [path]",
	Short: "Write the current character sheet to a YAML file",
	Long: `Write the sheet being edited (defaults to sheet.yaml) so it can be
changed by hand and submitted with "lifesim new --from".`,
	Args: cobra.MaximumNArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		path := "sheet.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := profile.WriteSheet(path, e.session.Profile()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	}),
}
