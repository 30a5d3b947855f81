package probe

import "testing"

func TestFinalizeFillsMissingAnswers(t *testing.T) {
	var c Collector
	c.Reset([]string{"p1", "p2"})
	c.Record("p1", "I would move to the coast")

	got := c.Finalize([]string{"p1", "p2"})
	if got["p1"] != "I would move to the coast" {
		t.Errorf("p1 = %q, want the recorded answer unchanged", got["p1"])
	}
	if got["p2"] != SilentAnswer {
		t.Errorf("p2 = %q, want SilentAnswer", got["p2"])
	}
}

func TestFinalizeTreatsBlankAsMissing(t *testing.T) {
	var c Collector
	c.Record("p1", "   \n\t")
	got := c.Finalize([]string{"p1"})
	if got["p1"] != SilentAnswer {
		t.Errorf("p1 = %q, want SilentAnswer", got["p1"])
	}
}

func TestFinalizeDoesNotMutateRecorded(t *testing.T) {
	var c Collector
	c.Reset([]string{"p1"})
	_ = c.Finalize([]string{"p1"})
	if _, ok := c.Answer("p1"); ok {
		t.Error("Finalize should not record the sentinel in the collector")
	}
	if c.Unanswered() != 1 {
		t.Errorf("Unanswered() = %d, want 1", c.Unanswered())
	}
}

func TestFinalizeEmptyProbeList(t *testing.T) {
	var c Collector
	got := c.Finalize(nil)
	if len(got) != 0 {
		t.Errorf("Finalize(nil) = %v, want empty", got)
	}
}

func TestRecordStoresVerbatim(t *testing.T) {
	var c Collector
	c.Record("p", "  padded  ")
	if a, _ := c.Answer("p"); a != "  padded  " {
		t.Errorf("Answer = %q, want verbatim", a)
	}
}

func TestCursorNavigation(t *testing.T) {
	var c Collector
	if _, ok := c.Current(); ok {
		t.Error("Current on an empty collector should report false")
	}

	c.Reset([]string{"a", "b", "c"})
	if c.Prev() {
		t.Error("Prev at the first probe should not move")
	}
	if !c.Next() || !c.Next() {
		t.Fatal("Next should move twice")
	}
	if c.Next() {
		t.Error("Next at the last probe should not move")
	}
	if p, _ := c.Current(); p != "c" {
		t.Errorf("Current = %q, want c", p)
	}
	c.Rewind()
	if c.Cursor() != 0 {
		t.Errorf("Cursor = %d after Rewind, want 0", c.Cursor())
	}
}

func TestResetDiscardsAnswers(t *testing.T) {
	var c Collector
	c.Reset([]string{"a"})
	c.Record("a", "yes")
	c.Reset([]string{"b"})
	if _, ok := c.Answer("a"); ok {
		t.Error("Reset should discard old answers")
	}
	if got := c.Probes(); len(got) != 1 || got[0] != "b" {
		t.Errorf("Probes() = %v", got)
	}
}
