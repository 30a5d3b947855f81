package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrTemplateCorrupt is returned when a template part cannot be decoded.
var ErrTemplateCorrupt = errors.New("template data corrupt")

// Template is a saved sheet a player can reuse. The backend stores each
// part as JSON text, but older records and local fixtures carry objects,
// so the parts stay raw until applied.
type Template struct {
	ID                ID              `json:"id"`
	UserID            ID              `json:"userId"`
	Name              string          `json:"name"`
	BasicInfo         json.RawMessage `json:"basicInfo,omitempty"`
	FamilyBackground  json.RawMessage `json:"familyBackground,omitempty"`
	InitialAttributes json.RawMessage `json:"initialAttributes,omitempty"`
	CreateTime        string          `json:"createTime,omitempty"`
}

// ApplyTemplate merges the template's basic info, family background and
// economic attributes into p. Fields the template carries overwrite,
// others are kept. Either every part merges or p is left untouched.
// The profile id is never changed.
func (p *Profile) ApplyTemplate(t Template) error {
	next := p.Clone()

	parts := []struct {
		name string
		raw  json.RawMessage
		dst  interface{}
	}{
		{"basicInfo", t.BasicInfo, &next.BasicInfo},
		{"familyBackground", t.FamilyBackground, &next.FamilyBackground},
		{"initialAttributes", t.InitialAttributes, &next.EconomicStatus},
	}
	for _, part := range parts {
		if err := mergePart(part.dst, part.raw); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrTemplateCorrupt, part.name, err)
		}
	}

	next.ID = p.ID
	*p = next
	return nil
}

// mergePart decodes raw into dst. raw may be an object, JSON text holding
// an object, or null/absent (nothing to merge).
func mergePart(dst interface{}, raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		raw = bytes.TrimSpace([]byte(text))
		if len(raw) == 0 {
			return errors.New("empty text")
		}
		if bytes.Equal(raw, []byte("null")) {
			return nil
		}
	}

	if raw[0] != '{' {
		return errors.New("not an object")
	}
	return json.Unmarshal(raw, dst)
}

// NewTemplate builds a template from a sheet, encoding each part the way
// the backend stores it.
func NewTemplate(name string, p Profile) (Template, error) {
	basic, err := encodePart(p.BasicInfo)
	if err != nil {
		return Template{}, err
	}
	family, err := encodePart(p.FamilyBackground)
	if err != nil {
		return Template{}, err
	}
	economic, err := encodePart(p.EconomicStatus)
	if err != nil {
		return Template{}, err
	}
	return Template{
		Name:              name,
		BasicInfo:         basic,
		FamilyBackground:  family,
		InitialAttributes: economic,
	}, nil
}

func encodePart(v interface{}) (json.RawMessage, error) {
	inner, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding template part: %w", err)
	}
	outer, err := json.Marshal(string(inner))
	if err != nil {
		return nil, fmt.Errorf("encoding template part: %w", err)
	}
	return outer, nil
}
