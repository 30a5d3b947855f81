package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/scenario"
)

// printYear writes the current year of a running game.
func printYear(w io.Writer, p profile.Profile, sc scenario.Scenario) {
	gen := p.Generation
	if gen < 1 {
		gen = 1
	}
	fmt.Fprintf(w, "%s, age %d (generation %d, %s)\n", p.BasicInfo.Name, p.CurrentAge, gen, p.Difficulty)
	fmt.Fprintf(w, "  energy %d  savings %.0f  debt %.0f\n\n", p.HealthStatus.EnergyLevel, p.EconomicStatus.Savings, p.EconomicStatus.Debt)
	fmt.Fprintln(w, sc.Event)
	fmt.Fprintf(w, "\n  Status:        %s\n", sc.StatusChange)
	fmt.Fprintf(w, "  Relationships: %s\n", sc.RelationshipChange)

	if len(p.AvailableChoices) > 0 {
		fmt.Fprintln(w, "\nChoices:")
		for i, c := range p.AvailableChoices {
			fmt.Fprintf(w, "  %d. %s\n", i+1, c)
		}
		fmt.Fprintln(w, "\nContinue with: lifesim next --pick N  or  lifesim next <your own choice>")
	}
}

// printProbes lists the interview questions with their answers.
func printProbes(w io.Writer, probes []string, answers map[string]string) {
	if len(probes) == 0 {
		fmt.Fprintln(w, "No questions this time. Run: lifesim start")
		return
	}
	for i, q := range probes {
		fmt.Fprintf(w, "  %d. %s\n", i+1, q)
		if a := strings.TrimSpace(answers[q]); a != "" {
			fmt.Fprintf(w, "     > %s\n", a)
		}
	}
}

// printSheet summarizes a character sheet.
func printSheet(w io.Writer, p profile.Profile) {
	b := p.BasicInfo
	fmt.Fprintf(w, "%s, %d, %s in %s (%s)\n", b.Name, b.StartAge, b.Profession, b.Location, b.EducationLevel)
	fmt.Fprintf(w, "  savings %.0f  debt %.0f  energy %d  difficulty %s\n",
		p.EconomicStatus.Savings, p.EconomicStatus.Debt, p.HealthStatus.EnergyLevel, p.Difficulty)
}
