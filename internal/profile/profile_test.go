package profile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	p := Default()
	if err := p.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if p.ID != "" {
		t.Errorf("default profile should have no id, got %q", p.ID)
	}
	if p.Difficulty != DifficultyNormal {
		t.Errorf("Difficulty = %q, want Normal", p.Difficulty)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
	}{
		{"negative age", func(p *Profile) { p.BasicInfo.StartAge = -1 }},
		{"negative savings", func(p *Profile) { p.EconomicStatus.Savings = -5 }},
		{"negative debt", func(p *Profile) { p.EconomicStatus.Debt = -1 }},
		{"energy above 100", func(p *Profile) { p.HealthStatus.EnergyLevel = 101 }},
		{"energy below 0", func(p *Profile) { p.HealthStatus.EnergyLevel = -3 }},
		{"unknown difficulty", func(p *Profile) { p.Difficulty = "Nightmare" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("Validate() = %v, want ErrInvalidProfile", err)
			}
		})
	}
}

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	var got struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"3f2c","b":42,"c":null}`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.A != "3f2c" || got.B != "42" || got.C != "" {
		t.Errorf("got %+v", got)
	}
	if n, err := got.B.Int64(); err != nil || n != 42 {
		t.Errorf("Int64() = %d, %v", n, err)
	}

	if err := json.Unmarshal([]byte(`{"a":true}`), &got); err == nil {
		t.Error("expected error for boolean id")
	}
}

func TestProfileDecodesBackendPayload(t *testing.T) {
	payload := `{
		"id": "p-1",
		"difficulty": "Hard",
		"basicInfo": {"name": "Li Si", "startAge": 30, "location": "Chengdu"},
		"economicStatus": {"savings": 1200.0, "debt": 300},
		"currentAge": 31,
		"currentScenario": "{\"event\":\"changed jobs\"}",
		"availableChoices": ["stay", "leave"],
		"generation": 2,
		"parentProfileId": "p-0"
	}`
	var p Profile
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ID != "p-1" || p.Generation != 2 || p.ParentProfileID != "p-0" {
		t.Errorf("identity fields wrong: %+v", p)
	}
	if p.EconomicStatus.Savings != 1200 {
		t.Errorf("Savings = %v, want 1200", p.EconomicStatus.Savings)
	}
	if got := p.Scenario().Event; got != "changed jobs" {
		t.Errorf("Scenario().Event = %q, want %q", got, "changed jobs")
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := Default()
	p.AvailableChoices = []string{"a", "b"}
	p.EconomicStatus.Assets = []string{"flat"}

	c := p.Clone()
	c.AvailableChoices[0] = "changed"
	c.EconomicStatus.Assets[0] = "car"

	if p.AvailableChoices[0] != "a" || p.EconomicStatus.Assets[0] != "flat" {
		t.Error("Clone shares slices with the original")
	}
}

func TestSheetYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.yaml")

	p := Default()
	p.BasicInfo.Name = "Wang Wu"
	p.Difficulty = DifficultyHell
	if err := WriteSheet(path, p); err != nil {
		t.Fatalf("WriteSheet: %v", err)
	}

	loaded, err := ReadSheet(path)
	if err != nil {
		t.Fatalf("ReadSheet: %v", err)
	}
	if loaded.BasicInfo.Name != "Wang Wu" || loaded.Difficulty != DifficultyHell {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestReadSheetKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	sheet := "basic_info:\n  name: Zhao Liu\n  start_age: 18\n"
	if err := os.WriteFile(path, []byte(sheet), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := ReadSheet(path)
	if err != nil {
		t.Fatalf("ReadSheet: %v", err)
	}
	if p.BasicInfo.Name != "Zhao Liu" || p.BasicInfo.StartAge != 18 {
		t.Errorf("BasicInfo = %+v", p.BasicInfo)
	}
	if p.HealthStatus.EnergyLevel != 80 {
		t.Errorf("EnergyLevel = %d, want default 80", p.HealthStatus.EnergyLevel)
	}
}

func TestReadSheetRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("health_status:\n  energy_level: 150\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSheet(path); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("ReadSheet() error = %v, want ErrInvalidProfile", err)
	}
}
