// Package testutil provides test helper utilities for lifesim tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lifesim-dev/lifesim/internal/devserver"
	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/scenario"
)

// Backend starts an in-memory backend for the duration of the test and
// returns it with its base URL.
func Backend(t *testing.T) (*devserver.Server, string) {
	t.Helper()
	srv := devserver.New(zerolog.New(io.Discard))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

// DataDir returns a fresh directory for config, log and database files.
func DataDir(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ".lifesim")
}

// Sheet returns a valid character sheet with the given name.
func Sheet(name string) profile.Profile {
	p := profile.Default()
	p.BasicInfo.Name = name
	return p
}

// RunningProfile returns a profile as the backend sends it mid-game,
// carrying id and a scenario with the given event text.
func RunningProfile(t *testing.T, id, event string) profile.Profile {
	t.Helper()
	p := Sheet("Runner")
	p.ID = profile.ID(id)
	p.CurrentAge = 30
	p.CurrentScenario = RecordEnvelope(t, map[string]string{"event": event})
	p.AvailableChoices = []string{"stay", "go"}
	return p
}

// RecordEnvelope returns v as a structured scenario envelope.
func RecordEnvelope(t *testing.T, v interface{}) scenario.Envelope {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return scenario.FromRaw(data)
}

// EncodedEnvelope returns v JSON-encoded levels times, as text.
func EncodedEnvelope(t *testing.T, v interface{}, levels int) scenario.Envelope {
	t.Helper()
	var cur interface{} = v
	var text string
	for i := 0; i < levels; i++ {
		data, err := json.Marshal(cur)
		if err != nil {
			t.Fatalf("marshal envelope: %v", err)
		}
		text = string(data)
		cur = text
	}
	return scenario.Text(text)
}
