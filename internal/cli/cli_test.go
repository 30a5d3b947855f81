package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/lifesim-dev/lifesim/internal/config"
	"github.com/lifesim-dev/lifesim/internal/game"
	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/testutil"
)

// runCLI executes the root command with args against baseURL and returns
// what the command printed.
func runCLI(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	pickFlag, yesFlag, fromFlag, difficultyFlag = 0, false, "", ""
	journalFlag, logFlag, answersFlag = 0, 0, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--server", baseURL}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func setupHome(t *testing.T) string {
	t.Helper()
	t.Setenv(config.EnvServer, "")
	t.Setenv(config.EnvTimeout, "")
	dir := testutil.DataDir(t)
	t.Setenv(config.EnvHome, dir)
	return dir
}

func mustRun(t *testing.T, baseURL string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, baseURL, args...)
	if err != nil {
		t.Fatalf("lifesim %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestPlaythroughAcrossInvocations(t *testing.T) {
	setupHome(t)
	_, url := testutil.Backend(t)

	out := mustRun(t, url, "login", "13800000000")
	if !strings.Contains(out, "Logged in as user") {
		t.Errorf("login output = %q", out)
	}

	out = mustRun(t, url, "new", "--difficulty", "Hard")
	if !strings.Contains(out, "1. ") {
		t.Fatalf("new should list the questions, got %q", out)
	}

	out = mustRun(t, url, "answer", "1", "my", "old", "band")
	if !strings.Contains(out, "> my old band") {
		t.Errorf("answer output = %q", out)
	}

	out = mustRun(t, url, "start")
	if !strings.Contains(out, "age") || !strings.Contains(out, "Hard") {
		t.Errorf("start output = %q", out)
	}

	out = mustRun(t, url, "next", "--pick", "1")
	if !strings.Contains(out, "Status:") {
		t.Errorf("next output = %q", out)
	}

	out = mustRun(t, url, "status", "--journal", "-1")
	if !strings.Contains(out, "Step:   game") || !strings.Contains(out, "Journal:") {
		t.Errorf("status output = %q", out)
	}
	if strings.Contains(out, "(empty)") {
		t.Error("journal should hold the started and advanced years")
	}

	out = mustRun(t, url, "skip", "2", "--yes")
	if strings.Contains(out, "Nothing skipped") {
		t.Errorf("skip --yes declined: %q", out)
	}

	out = mustRun(t, url, "legacy")
	if !strings.Contains(out, "continues as profile") {
		t.Errorf("legacy output = %q", out)
	}

	out = mustRun(t, url, "history")
	if strings.Contains(out, "No saved games") {
		t.Errorf("history output = %q", out)
	}

	mustRun(t, url, "logout")
	out = mustRun(t, url, "status")
	if !strings.Contains(out, "Step:   login") {
		t.Errorf("status after logout = %q", out)
	}
}

func TestDefaultDifficultyFromConfig(t *testing.T) {
	dir := setupHome(t)
	cfg := config.DefaultConfig()
	cfg.Game.DefaultDifficulty = string(profile.DifficultyHell)
	if err := config.WriteConfig(dir, cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	_, url := testutil.Backend(t)

	mustRun(t, url, "login", "1")
	mustRun(t, url, "new")
	out := mustRun(t, url, "status")
	if !strings.Contains(out, "difficulty Hell") {
		t.Errorf("new character should use the configured difficulty, status = %q", out)
	}
}

func TestJournalStartsOverWithLegacy(t *testing.T) {
	setupHome(t)
	_, url := testutil.Backend(t)
	mustRun(t, url, "login", "1")
	mustRun(t, url, "new")
	mustRun(t, url, "start")
	mustRun(t, url, "next", "--pick", "1")

	out := mustRun(t, url, "status", "--journal", "-1")
	if !strings.Contains(out, "gen 1,") {
		t.Fatalf("first generation journal missing: %q", out)
	}

	mustRun(t, url, "legacy")
	out = mustRun(t, url, "status", "--journal", "-1")
	if strings.Contains(out, "gen 1,") {
		t.Errorf("the heir's journal still lists the parent's years: %q", out)
	}
	if !strings.Contains(out, "gen 2,") || !strings.Contains(out, "1 years journaled") {
		t.Errorf("heir journal = %q", out)
	}
}

func TestInterviewIsNotKeptAfterStart(t *testing.T) {
	setupHome(t)
	_, url := testutil.Backend(t)
	mustRun(t, url, "login", "1")
	mustRun(t, url, "new")
	mustRun(t, url, "answer", "1", "secret", "answer")
	mustRun(t, url, "start")
	mustRun(t, url, "next", "--pick", "1")

	out := mustRun(t, url, "status", "--answers")
	if strings.Contains(out, "secret answer") {
		t.Errorf("answers survived the interview: %q", out)
	}
	if !strings.Contains(out, "(0 answers") {
		t.Errorf("status = %q, want no stored answers", out)
	}
}

func TestSkipWithoutConfirmationDoesNothing(t *testing.T) {
	setupHome(t)
	_, url := testutil.Backend(t)
	mustRun(t, url, "login", "1")
	mustRun(t, url, "new")
	mustRun(t, url, "start")

	out := mustRun(t, url, "skip", "3")
	if !strings.Contains(out, "Skip 3 years? [y/N]") || !strings.Contains(out, "Nothing skipped") {
		t.Errorf("skip output = %q", out)
	}
}

func TestCommandsNeedLogin(t *testing.T) {
	setupHome(t)
	_, url := testutil.Backend(t)

	for _, args := range [][]string{{"new"}, {"history"}, {"continue", "1"}} {
		_, err := runCLI(t, url, args...)
		if !errors.Is(err, game.ErrNotLoggedIn) {
			t.Errorf("lifesim %s: err = %v, want ErrNotLoggedIn", args[0], err)
		}
	}
}

func TestWrongStepIsReported(t *testing.T) {
	setupHome(t)
	_, url := testutil.Backend(t)
	mustRun(t, url, "login", "1")

	_, err := runCLI(t, url, "next", "work")
	if !errors.Is(err, game.ErrWrongStep) {
		t.Errorf("next before start: err = %v, want ErrWrongStep", err)
	}
}

func TestFilterIndexes(t *testing.T) {
	src := templateSource{
		{ID: "1", Name: "Farmer in the north"},
		{ID: "2", Name: "City programmer"},
		{ID: "3", Name: "Programmer abroad"},
	}

	if got := filterIndexes("", src); len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Errorf("empty pattern = %v, want all in order", got)
	}
	got := filterIndexes("prog", src)
	if len(got) != 2 {
		t.Fatalf("filterIndexes(prog) = %v", got)
	}
	for _, i := range got {
		if i == 0 {
			t.Errorf("farmer matched prog: %v", got)
		}
	}
	if got := filterIndexes("zzz", src); len(got) != 0 {
		t.Errorf("filterIndexes(zzz) = %v", got)
	}
}

func TestFindTemplate(t *testing.T) {
	templates := []profile.Template{
		{ID: "7", Name: "Farmer"},
		{ID: "8", Name: "Programmer"},
	}
	if tpl, err := findTemplate(templates, "8"); err != nil || tpl.Name != "Programmer" {
		t.Errorf("by id = %+v, %v", tpl, err)
	}
	if tpl, err := findTemplate(templates, "farm"); err != nil || tpl.ID != "7" {
		t.Errorf("by name = %+v, %v", tpl, err)
	}
	if _, err := findTemplate(templates, "astronaut"); err == nil {
		t.Error("expected no match")
	}
}

func TestAskYesNo(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if got := askYesNo(strings.NewReader(tt.in), &out, "Skip?"); got != tt.want {
			t.Errorf("askYesNo(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
