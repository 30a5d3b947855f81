// Package probe collects the player's answers to backend-issued probe
// questions before a simulation starts.
package probe

import "strings"

// SilentAnswer is submitted for any probe the player left blank.
const SilentAnswer = "(the player chose to stay silent and gave no answer)"

// Collector holds the probes of one init cycle and the answers given so
// far. The zero value is ready to use.
type Collector struct {
	probes  []string
	answers map[string]string
	cursor  int
}

// Reset replaces the probe list and discards previous answers.
func (c *Collector) Reset(probes []string) {
	c.probes = append([]string(nil), probes...)
	c.answers = make(map[string]string, len(probes))
	c.cursor = 0
}

// Restore reloads a probe list and the answers saved with it.
func (c *Collector) Restore(probes []string, answers map[string]string) {
	c.Reset(probes)
	for k, v := range answers {
		c.answers[k] = v
	}
}

// Probes returns the current probe list.
func (c *Collector) Probes() []string {
	return append([]string(nil), c.probes...)
}

// Record stores text verbatim as the answer to probe.
func (c *Collector) Record(probe, text string) {
	if c.answers == nil {
		c.answers = make(map[string]string)
	}
	c.answers[probe] = text
}

// Answer returns the recorded answer for probe, if any.
func (c *Collector) Answer(probe string) (string, bool) {
	a, ok := c.answers[probe]
	return a, ok
}

// Answers returns a copy of everything recorded so far.
func (c *Collector) Answers() map[string]string {
	out := make(map[string]string, len(c.answers))
	for k, v := range c.answers {
		out[k] = v
	}
	return out
}

// Finalize returns the answers to submit for probes: recorded answers
// are kept, missing or blank ones become SilentAnswer. Answers recorded
// for probes outside the list are passed through.
func (c *Collector) Finalize(probes []string) map[string]string {
	out := c.Answers()
	for _, p := range probes {
		if strings.TrimSpace(out[p]) == "" {
			out[p] = SilentAnswer
		}
	}
	return out
}

// Cursor returns the index of the probe being answered.
func (c *Collector) Cursor() int { return c.cursor }

// Current returns the probe under the cursor.
func (c *Collector) Current() (string, bool) {
	if c.cursor < 0 || c.cursor >= len(c.probes) {
		return "", false
	}
	return c.probes[c.cursor], true
}

// Next moves the cursor forward and reports whether it moved.
func (c *Collector) Next() bool {
	if c.cursor >= len(c.probes)-1 {
		return false
	}
	c.cursor++
	return true
}

// Prev moves the cursor back and reports whether it moved.
func (c *Collector) Prev() bool {
	if c.cursor == 0 {
		return false
	}
	c.cursor--
	return true
}

// Rewind puts the cursor back on the first probe.
func (c *Collector) Rewind() { c.cursor = 0 }

// Unanswered counts probes without a non-blank answer.
func (c *Collector) Unanswered() int {
	n := 0
	for _, p := range c.probes {
		if strings.TrimSpace(c.answers[p]) == "" {
			n++
		}
	}
	return n
}
