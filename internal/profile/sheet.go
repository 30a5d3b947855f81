package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReadSheet loads a character sheet from a YAML file. Keys missing from
// the file keep the values of Default().
func ReadSheet(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading sheet: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing sheet: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// WriteSheet writes the sheet part of p as YAML.
func WriteSheet(path string, p Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshalling sheet: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing sheet: %w", err)
	}
	return nil
}
