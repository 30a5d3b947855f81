// Package scenario turns raw scenario payloads from the simulation backend
// into a single renderable shape.
package scenario

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind identifies which variant an Envelope holds.
type Kind int

const (
	KindEmpty  Kind = iota // null, absent or empty text
	KindText               // a JSON string value
	KindRecord             // a JSON object
	KindList               // a JSON array
	KindNumber             // a JSON number
	KindBool               // a JSON boolean
	KindNull               // a JSON null that came out of decoding text
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindRecord:
		return "record"
	case KindList:
		return "list"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Envelope is a scenario payload as received from the backend, classified
// one level deep. Only the field matching Kind is meaningful.
type Envelope struct {
	Kind   Kind
	Text   string
	Record map[string]json.RawMessage
	Raw    json.RawMessage // original bytes for List and Number
	Bool   bool
}

// Empty returns the empty envelope.
func Empty() Envelope { return Envelope{Kind: KindEmpty} }

// Text wraps plain text as an envelope.
func Text(s string) Envelope {
	if s == "" {
		return Empty()
	}
	return Envelope{Kind: KindText, Text: s}
}

// FromRaw classifies a raw JSON value. Bytes that are not valid JSON are
// kept as literal text so nothing the backend sent is lost.
func FromRaw(raw json.RawMessage) Envelope {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Empty()
	}
	env, ok := classify(trimmed)
	if !ok {
		return Text(string(raw))
	}
	if env.Kind == KindText && env.Text == "" {
		return Empty()
	}
	return env
}

// UnmarshalJSON lets an Envelope be embedded directly in response types.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	*e = FromRaw(data)
	return nil
}

// MarshalJSON writes the envelope back in its received form.
func (e Envelope) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindText:
		return json.Marshal(e.Text)
	case KindRecord:
		return json.Marshal(e.Record)
	case KindBool:
		return json.Marshal(e.Bool)
	case KindList, KindNumber:
		if len(e.Raw) > 0 {
			return e.Raw, nil
		}
	}
	return []byte("null"), nil
}

// decodeText performs one decode attempt on text. The second result is
// false when the text is not a JSON document.
func decodeText(s string) (Envelope, bool) {
	trimmed := bytes.TrimSpace([]byte(s))
	if len(trimmed) == 0 {
		return Envelope{}, false
	}
	if bytes.Equal(trimmed, []byte("null")) {
		// A decoded null is a value, not an absent payload.
		return Envelope{Kind: KindNull}, true
	}
	return classify(trimmed)
}

// classify decodes exactly one level of a JSON document.
func classify(data []byte) (Envelope, bool) {
	if !json.Valid(data) {
		return Envelope{}, false
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Envelope{}, false
		}
		return Envelope{Kind: KindText, Text: s}, true
	case '{':
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(data, &rec); err != nil {
			return Envelope{}, false
		}
		return Envelope{Kind: KindRecord, Record: rec}, true
	case '[':
		return Envelope{Kind: KindList, Raw: append(json.RawMessage(nil), data...)}, true
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return Envelope{}, false
		}
		return Envelope{Kind: KindBool, Bool: b}, true
	default:
		return Envelope{Kind: KindNumber, Raw: append(json.RawMessage(nil), data...)}, true
	}
}
