// login.go implements "lifesim login" and "lifesim logout".
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <phone>",
	Short: "Log in with a phone number",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		if err := track("logging in", func() error {
			return e.session.Login(cmd.Context(), args[0])
		}); err != nil {
			return err
		}
		u, _ := e.session.User()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Logged in as user %s.\n", u.ID)
		if n := len(e.session.History()); n > 0 {
			fmt.Fprintf(out, "%d saved games; see: lifesim history\n", n)
		}
		fmt.Fprintln(out, "Create a character with: lifesim new [--from sheet.yaml]")
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored login and session",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		if err := e.session.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	}),
}
