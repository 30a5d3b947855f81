package log

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLoggerCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".lifesim")
	l, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("data dir not created: %v", err)
	}
	if l.Path() != filepath.Join(dir, "log.jsonl") {
		t.Errorf("Path() = %q", l.Path())
	}
}

func TestAppendAndReadAll(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll on missing file: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("got %d events before any append", len(events))
	}

	in := []LogEvent{
		{Event: EventLogin, UserID: "7"},
		{Event: EventYearAdvanced, ProfileID: "p-1", Age: 26, Choice: "Change careers"},
		{Event: EventSoftStepFailed, Op: "save template", Error: "boom"},
	}
	for _, e := range in {
		if err := l.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	out, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d events, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].Event != in[i].Event {
			t.Errorf("event %d = %q, want %q", i, out[i].Event, in[i].Event)
		}
		if out[i].Time.IsZero() {
			t.Errorf("event %d has no timestamp", i)
		}
	}
	if out[1].Age != 26 || out[1].Choice != "Change careers" {
		t.Errorf("year event = %+v", out[1])
	}
}

func TestTail(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	for _, name := range []string{EventLogin, EventProfilePersisted, EventProbesGenerated} {
		if err := l.Append(LogEvent{Event: name}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	tail, err := l.Tail(2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(tail) != 2 || tail[0].Event != EventProfilePersisted || tail[1].Event != EventProbesGenerated {
		t.Errorf("Tail(2) = %+v", tail)
	}
}

func TestReadAllRejectsCorruptLine(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if err := os.WriteFile(l.Path(), []byte("{\"event\":\"login\"}\nnot json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.ReadAll(); err == nil {
		t.Error("expected parse error for corrupt line")
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_ = r.Append(LogEvent{Event: EventLogin})
	_ = r.Append(LogEvent{Event: EventLogout})

	names := r.Names()
	if len(names) != 2 || names[0] != EventLogin || names[1] != EventLogout {
		t.Errorf("Names() = %v", names)
	}
	if r.Events()[0].Time.IsZero() {
		t.Error("Recorder should stamp events")
	}
}
