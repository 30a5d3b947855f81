// lists.go implements "history", "templates" and "use-template", with
// fuzzy filtering of names.
package cli

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/lifesim-dev/lifesim/internal/api"
	"github.com/lifesim-dev/lifesim/internal/profile"
)

// gameSource adapts history for fuzzy matching on character names.
type gameSource []api.GameInstance

func (g gameSource) String(i int) string { return g[i].Title() }
func (g gameSource) Len() int            { return len(g) }

// templateSource adapts templates for fuzzy matching on their names.
type templateSource []profile.Template

func (t templateSource) String(i int) string { return t[i].Name }
func (t templateSource) Len() int            { return len(t) }

// filterIndexes returns the indexes of src matching pattern, best match
// first, or all of them in order when pattern is empty.
func filterIndexes(pattern string, src fuzzy.Source) []int {
	if strings.TrimSpace(pattern) == "" {
		idx := make([]int, src.Len())
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	matches := fuzzy.FindFrom(pattern, src)
	idx := make([]int, len(matches))
	for i, m := range matches {
		idx[i] = m.Index
	}
	return idx
}

var historyCmd = &cobra.Command{
	Use:   "history [filter]",
	Short: "List your saved games",
	Args:  cobra.MaximumNArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		if _, err := e.requireUser(); err != nil {
			return err
		}
		e.session.Refresh(cmd.Context())
		games := gameSource(e.session.History())
		out := cmd.OutOrStdout()

		idx := filterIndexes(strings.Join(args, " "), games)
		if len(idx) == 0 {
			fmt.Fprintln(out, "No saved games.")
			return nil
		}
		for _, i := range idx {
			g := games[i]
			age := ""
			if g.UserProfile != nil {
				age = fmt.Sprintf("age %d", g.UserProfile.CurrentAge)
			}
			fmt.Fprintf(out, "  %-6s %-20s %-9s %-8s %s\n", g.ID, g.Title(), strings.ToLower(g.Status), age, g.LastUpdateTime)
		}
		fmt.Fprintln(out, "\nResume with: lifesim continue <id>")
		return nil
	}),
}

var templatesCmd = &cobra.Command{
	Use:   "templates [filter]",
	Short: "List your saved character templates",
	Args:  cobra.MaximumNArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		if _, err := e.requireUser(); err != nil {
			return err
		}
		e.session.Refresh(cmd.Context())
		templates := templateSource(e.session.Templates())
		out := cmd.OutOrStdout()

		idx := filterIndexes(strings.Join(args, " "), templates)
		if len(idx) == 0 {
			fmt.Fprintln(out, "No templates.")
			return nil
		}
		for _, i := range idx {
			t := templates[i]
			fmt.Fprintf(out, "  %-6s %-24s %s\n", t.ID, t.Name, t.CreateTime)
		}
		fmt.Fprintln(out, "\nApply with: lifesim use-template <id or name>")
		return nil
	}),
}

var useTemplateCmd = &cobra.Command{
	Use:   "use-template <id or name>",
	Short: "Fill the character sheet from a saved template",
	Long: `Merge a saved template into the character sheet and return to
character creation. The name may be abbreviated; the best fuzzy match
is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		if _, err := e.requireUser(); err != nil {
			return err
		}
		e.session.Refresh(cmd.Context())
		t, err := findTemplate(e.session.Templates(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := e.session.ApplyTemplate(t); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Applied template %q.\n\n", t.Name)
		printSheet(out, e.session.Profile())
		fmt.Fprintln(out, "\nSubmit with: lifesim new")
		return nil
	}),
}

// findTemplate resolves query as a template id, then as a fuzzy name.
func findTemplate(templates []profile.Template, query string) (profile.Template, error) {
	for _, t := range templates {
		if t.ID.String() == query {
			return t, nil
		}
	}
	idx := filterIndexes(query, templateSource(templates))
	if len(idx) == 0 {
		return profile.Template{}, fmt.Errorf("no template matches %q", query)
	}
	return templates[idx[0]], nil
}
