package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lifesim-dev/lifesim/internal/api"
	"github.com/lifesim-dev/lifesim/internal/devserver"
	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/scenario"
	"github.com/lifesim-dev/lifesim/internal/testutil"
)

func newClient(t *testing.T) (*devserver.Server, *api.Client) {
	t.Helper()
	srv, url := testutil.Backend(t)
	return srv, api.NewClient(url, 5*time.Second)
}

func TestAuthenticate(t *testing.T) {
	_, c := newClient(t)
	ctx := context.Background()

	u, err := c.Authenticate(ctx, "13800000000")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.ID == "" || u.Phone != "13800000000" {
		t.Errorf("user = %+v", u)
	}

	again, err := c.Authenticate(ctx, " 13800000000 ")
	if err != nil {
		t.Fatalf("Authenticate again: %v", err)
	}
	if again.ID != u.ID {
		t.Errorf("same phone should map to the same user: %q vs %q", again.ID, u.ID)
	}
}

func TestAuthenticateRequiresPhone(t *testing.T) {
	srv, c := newClient(t)
	if _, err := c.Authenticate(context.Background(), "  "); !errors.Is(err, api.ErrPhoneRequired) {
		t.Fatalf("Authenticate() error = %v, want ErrPhoneRequired", err)
	}
	if srv.Calls(devserver.OpLogin) != 0 {
		t.Error("blank phone must not reach the backend")
	}
}

func TestNonSuccessStatusIsTransportError(t *testing.T) {
	srv, c := newClient(t)
	srv.FailNext(devserver.OpLogin, http.StatusServiceUnavailable)

	_, err := c.Authenticate(context.Background(), "1")
	var te *api.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if te.StatusCode != http.StatusServiceUnavailable || te.Op != "login" {
		t.Errorf("TransportError = %+v", te)
	}
	if !api.IsTransport(err) {
		t.Error("IsTransport should be true")
	}
}

func TestUnreachableBackendIsTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := api.NewClient(url, time.Second)
	_, err := c.FetchHistory(context.Background(), "1")
	var te *api.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if te.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for a connection failure", te.StatusCode)
	}
}

func TestMalformedBodyIsTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer ts.Close()

	c := api.NewClient(ts.URL, time.Second)
	if _, err := c.GenerateProbes(context.Background(), profile.Default()); !api.IsTransport(err) {
		t.Fatalf("error = %v, want transport error", err)
	}
}

func TestFullPlaythrough(t *testing.T) {
	_, c := newClient(t)
	ctx := context.Background()

	u, err := c.Authenticate(ctx, "555")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	saved, err := c.PersistProfile(ctx, testutil.Sheet("Client Test"))
	if err != nil {
		t.Fatalf("PersistProfile: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("persisted profile has no id")
	}

	probes, err := c.GenerateProbes(ctx, saved)
	if err != nil {
		t.Fatalf("GenerateProbes: %v", err)
	}
	if len(probes) != len(devserver.DefaultProbes) {
		t.Errorf("got %d probes, want %d", len(probes), len(devserver.DefaultProbes))
	}

	if _, err := c.CreateTemplate(ctx, u.ID, saved); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	game, err := c.StartGameInstance(ctx, u.ID, saved)
	if err != nil {
		t.Fatalf("StartGameInstance: %v", err)
	}
	if game.UserProfile == nil || game.UserProfile.ID != saved.ID {
		t.Fatalf("game profile = %+v, want id %q", game.UserProfile, saved.ID)
	}

	started, err := c.AnalyzeAndStart(ctx, saved.ID, map[string]string{probes[0]: "nothing"})
	if err != nil {
		t.Fatalf("AnalyzeAndStart: %v", err)
	}
	if started.CurrentScenario.Kind != scenario.KindText {
		t.Errorf("first scenario kind = %s, want text", started.CurrentScenario.Kind)
	}
	if ev := started.Scenario().Event; ev == scenario.DefaultEvent {
		t.Errorf("first scenario event = %q, want narrative", ev)
	}

	next, err := c.AdvanceYear(ctx, saved.ID, "Change careers")
	if err != nil {
		t.Fatalf("AdvanceYear: %v", err)
	}
	if next.CurrentAge != started.CurrentAge+1 {
		t.Errorf("CurrentAge = %d, want %d", next.CurrentAge, started.CurrentAge+1)
	}

	skipped, err := c.SkipYears(ctx, saved.ID, 3)
	if err != nil {
		t.Fatalf("SkipYears: %v", err)
	}
	if skipped.CurrentAge != next.CurrentAge+3 {
		t.Errorf("CurrentAge = %d, want %d", skipped.CurrentAge, next.CurrentAge+3)
	}
	if skipped.CurrentScenario.Kind != scenario.KindRecord {
		t.Errorf("skip scenario kind = %s, want record", skipped.CurrentScenario.Kind)
	}

	heir, err := c.CreateLegacy(ctx, saved.ID)
	if err != nil {
		t.Fatalf("CreateLegacy: %v", err)
	}
	if heir.ID == saved.ID || heir.ParentProfileID != saved.ID {
		t.Errorf("heir id %q parent %q, original %q", heir.ID, heir.ParentProfileID, saved.ID)
	}

	history, err := c.FetchHistory(ctx, u.ID)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if len(history) != 1 || history[0].Status != api.StatusFinished {
		t.Errorf("history = %+v", history)
	}

	templates, err := c.FetchTemplates(ctx, u.ID)
	if err != nil {
		t.Fatalf("FetchTemplates: %v", err)
	}
	if len(templates) != 1 || templates[0].Name != "Client Test" {
		t.Errorf("templates = %+v", templates)
	}

	fetched, err := c.FetchGameInstance(ctx, game.ID)
	if err != nil {
		t.Fatalf("FetchGameInstance: %v", err)
	}
	if fetched.UserProfile.CurrentAge != skipped.CurrentAge {
		t.Errorf("fetched game age = %d, want %d", fetched.UserProfile.CurrentAge, skipped.CurrentAge)
	}
}

func TestSkipYearsRejectedByBackend(t *testing.T) {
	_, c := newClient(t)
	ctx := context.Background()

	saved, err := c.PersistProfile(ctx, testutil.Sheet("Skipper"))
	if err != nil {
		t.Fatalf("PersistProfile: %v", err)
	}
	_, err = c.SkipYears(ctx, saved.ID, 50)
	var te *api.TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusBadRequest {
		t.Fatalf("error = %v, want 400 transport error", err)
	}
}
