package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Placeholder text used when the backend did not say anything about a
// field. Callers can compare against these to tell filler from content.
const (
	DefaultEvent              = "no event occurred"
	DefaultStatusChange       = "no significant change"
	DefaultRelationshipChange = "status quo"
)

// maxDecodeAttempts bounds how many layers of JSON-in-a-string are peeled.
const maxDecodeAttempts = 2

// previewLimit caps how much of an unparseable payload is echoed back.
const previewLimit = 80

// Scenario is the canonical outcome of a simulated year.
type Scenario struct {
	Event              string `json:"event" yaml:"event"`
	StatusChange       string `json:"status_change" yaml:"status_change"`
	RelationshipChange string `json:"relationship_change" yaml:"relationship_change"`
}

// Default returns the scenario shown when nothing happened.
func Default() Scenario {
	return Scenario{
		Event:              DefaultEvent,
		StatusChange:       DefaultStatusChange,
		RelationshipChange: DefaultRelationshipChange,
	}
}

// IsDefault reports whether every field holds placeholder text.
func (s Scenario) IsDefault() bool {
	return s == Default()
}

// NormalizeRaw classifies raw JSON and normalizes it.
func NormalizeRaw(raw json.RawMessage) Scenario {
	return Normalize(FromRaw(raw))
}

// Normalize converts any envelope into a Scenario. It never fails: payloads
// that cannot be interpreted end up as readable event text.
func Normalize(env Envelope) (s Scenario) {
	defer func() {
		if r := recover(); r != nil {
			s = withEvent(fmt.Sprintf("scenario parse error: %s: %v", preview(env), r))
		}
	}()
	return normalize(env)
}

func normalize(env Envelope) Scenario {
	cur := env
	for attempt := 0; cur.Kind == KindText; attempt++ {
		if attempt == maxDecodeAttempts {
			return withEvent(cur.Text)
		}
		next, ok := decodeText(cur.Text)
		if !ok {
			return withEvent(cur.Text)
		}
		cur = next
	}

	switch cur.Kind {
	case KindEmpty:
		return Default()
	case KindRecord:
		return fromRecord(cur.Record)
	case KindBool:
		if cur.Bool {
			return withEvent("true")
		}
		return withEvent("false")
	case KindNull:
		return withEvent("null")
	case KindNumber, KindList:
		return withEvent(compact(cur.Raw))
	default:
		panic(fmt.Sprintf("unhandled envelope kind %s", cur.Kind))
	}
}

func fromRecord(rec map[string]json.RawMessage) Scenario {
	s := Default()

	s.Event = field(rec, "event")
	if s.Event == "" {
		s.Event = field(rec, "message")
	}
	if s.Event == "" && !blank(rec, "event") && !blank(rec, "message") {
		data, err := json.Marshal(rec)
		if err != nil {
			panic(err)
		}
		s.Event = string(data)
	}

	if v := field(rec, "status_change"); v != "" {
		s.StatusChange = v
	}
	if v := field(rec, "relationship_change"); v != "" {
		s.RelationshipChange = v
	}
	return s
}

// field reads a record member as display text. Strings are taken verbatim,
// other JSON values as compact JSON. Null, blank and missing members are "".
func field(rec map[string]json.RawMessage, key string) string {
	raw, ok := rec[key]
	if !ok {
		return ""
	}
	v := FromRaw(raw)
	switch v.Kind {
	case KindEmpty:
		return ""
	case KindText:
		if strings.TrimSpace(v.Text) == "" {
			return ""
		}
		return v.Text
	default:
		return compact(raw)
	}
}

// blank reports whether a record member is a non-empty string of only
// whitespace. Such a member leaves the default event in place.
func blank(rec map[string]json.RawMessage, key string) bool {
	raw, ok := rec[key]
	if !ok {
		return false
	}
	v := FromRaw(raw)
	return v.Kind == KindText && v.Text != "" && strings.TrimSpace(v.Text) == ""
}

func withEvent(event string) Scenario {
	s := Default()
	if strings.TrimSpace(event) != "" {
		s.Event = event
	}
	return s
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}

func preview(env Envelope) string {
	var text string
	switch env.Kind {
	case KindText:
		text = env.Text
	default:
		data, err := env.MarshalJSON()
		if err != nil {
			return env.Kind.String()
		}
		text = string(data)
	}
	if utf8.RuneCountInString(text) > previewLimit {
		runes := []rune(text)
		text = string(runes[:previewLimit]) + "..."
	}
	return fmt.Sprintf("%q", text)
}
