// status.go implements the "lifesim status" command showing where the
// current life stands.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lifesim-dev/lifesim/internal/game"
	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/session"
	"github.com/lifesim-dev/lifesim/internal/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Display the logged-in user, the current step and what the step is
showing: the character sheet, the interview questions or the current year.`,
	Args: cobra.NoArgs,
	RunE: withEnv(runStatus),
}

var (
	journalFlag int
	logFlag     int
	answersFlag bool
)

func init() {
	statusCmd.Flags().IntVar(&journalFlag, "journal", 0, "Show the last N years of the playthrough (-1 for all)")
	statusCmd.Flags().IntVar(&logFlag, "log", 0, "Show the last N events from the event log")
	statusCmd.Flags().BoolVar(&answersFlag, "answers", false, "List the stored interview answers with their times")
}

func runStatus(cmd *cobra.Command, _ []string, e *env) error {
	out := cmd.OutOrStdout()
	s := e.session

	fmt.Fprintln(out, "lifesim status")
	fmt.Fprintf(out, "Server: %s\n", e.cfg.Server.BaseURL)
	u, loggedIn := s.User()
	if loggedIn {
		fmt.Fprintf(out, "User:   %s\n", u.ID)
	}
	fmt.Fprintf(out, "Step:   %s\n", s.Step())

	var sum *session.Summary
	if loggedIn {
		var err error
		if sum, err = e.store.Current(u.ID); err != nil {
			return fmt.Errorf("reading session: %w", err)
		}
	}
	if sum != nil {
		fmt.Fprintf(out, "Saved:  %s (%d answers, %d years journaled)\n",
			sum.UpdatedAt.Local().Format("2006-01-02 15:04"), sum.Answers, sum.Years)
	}
	fmt.Fprintln(out)

	switch s.Step() {
	case game.StepInit:
		printSheet(out, s.Profile())
	case game.StepProbes:
		printSheet(out, s.Profile())
		fmt.Fprintln(out)
		printProbes(out, s.Probes(), s.Answers())
	case game.StepGame:
		printYear(out, s.Profile(), s.Scenario())
	}
	fmt.Fprintf(out, "\nNext: %s\n", tui.NextCommand(s.Step()))

	if answersFlag && sum != nil {
		if err := printAnswers(out, e, sum.ID); err != nil {
			return err
		}
	}
	if journalFlag != 0 && loggedIn {
		if err := printJournal(out, e, u.ID, journalFlag); err != nil {
			return err
		}
	}
	if logFlag > 0 {
		if err := printEvents(out, e, logFlag); err != nil {
			return err
		}
	}
	return nil
}

func printAnswers(out io.Writer, e *env, sessionID string) error {
	answers, err := e.store.GetAnswers(sessionID)
	if err != nil {
		return fmt.Errorf("reading answers: %w", err)
	}
	fmt.Fprintln(out, "\nAnswers:")
	for _, a := range answers {
		fmt.Fprintf(out, "  [%s] %s\n    > %s\n", a.Timestamp.Local().Format("15:04:05"), a.Probe, a.Answer)
	}
	return nil
}

// printJournal lists the years of the tracked profile. Earlier generations
// and other games have journals of their own.
func printJournal(out io.Writer, e *env, userID profile.ID, limit int) error {
	if limit < 0 {
		limit = 0
	}
	entries, err := e.store.Journal(userID, e.session.Profile().ID, limit)
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}
	fmt.Fprintln(out, "\nJournal:")
	if len(entries) == 0 {
		fmt.Fprintln(out, "  (empty)")
	}
	for _, j := range entries {
		fmt.Fprintf(out, "  gen %d, age %d: %s\n", max(j.Generation, 1), j.Age, j.Scenario.Event)
		if j.Choice != "" {
			fmt.Fprintf(out, "    chose: %s\n", j.Choice)
		}
	}
	return nil
}

func printEvents(out io.Writer, e *env, n int) error {
	events, err := e.events.Tail(n)
	if err != nil {
		return fmt.Errorf("reading event log: %w", err)
	}
	fmt.Fprintf(out, "\nEvents (%s):\n", e.events.Path())
	for _, ev := range events {
		line := fmt.Sprintf("  %s %-18s", ev.Time.Local().Format("01-02 15:04:05"), ev.Event)
		if ev.Op != "" {
			line += " " + ev.Op
		}
		if ev.Error != "" {
			line += " error=" + ev.Error
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
