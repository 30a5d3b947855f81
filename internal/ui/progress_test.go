package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{400 * time.Millisecond, "0s"},
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m5s"},
		{2*time.Hour + 1*time.Minute + 9*time.Second, "2h1m9s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplayTo(&buf, "starting simulation", false)
	p.Start()
	p.Finish(OutcomeDone)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "[RUNNING] starting simulation" {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[DONE] starting simulation [") {
		t.Errorf("last line = %q", lines[1])
	}
}

func TestPlainFailure(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplayTo(&buf, "log in", false)
	p.Start()
	p.Finish(OutcomeFailed)
	if !strings.Contains(buf.String(), "[FAILED] log in") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTTYFinishStopsRedraw(t *testing.T) {
	var buf syncBuffer
	p := NewProgressDisplayTo(&buf, "skipping years", true)
	p.Start()
	time.Sleep(250 * time.Millisecond)
	p.Finish(OutcomeDone)

	out := buf.String()
	if !strings.Contains(out, "skipping years") || !strings.HasSuffix(out, "\n") {
		t.Errorf("output = %q", out)
	}
	n := len(out)
	time.Sleep(150 * time.Millisecond)
	if len(buf.String()) != n {
		t.Error("display kept drawing after Finish")
	}
}

// syncBuffer guards a bytes.Buffer shared with the redraw goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
