// Package profile holds the character sheet a player builds before a
// simulation starts, and the backend records that carry it.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/lifesim-dev/lifesim/internal/scenario"
)

// ErrInvalidProfile is returned by Validate for sheets the backend would reject.
var ErrInvalidProfile = errors.New("invalid profile")

// ID is a backend identifier. The backend emits profile ids as strings and
// user, game and template ids as numbers; both decode into an ID.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as text.
func (id ID) String() string { return string(id) }

// Int64 parses a numeric id. Non-numeric ids return an error.
func (id ID) Int64() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

// Difficulty scales how harsh the simulated world is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyNormal Difficulty = "Normal"
	DifficultyHard   Difficulty = "Hard"
	DifficultyHell   Difficulty = "Hell"
)

// Difficulties lists the accepted values in increasing order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyHell}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// BasicInfo describes who the character is at the start.
type BasicInfo struct {
	Name            string `json:"name" yaml:"name"`
	StartAge        int    `json:"startAge" yaml:"start_age"`
	Gender          string `json:"gender,omitempty" yaml:"gender,omitempty"`
	Location        string `json:"location" yaml:"location"`
	EducationLevel  string `json:"educationLevel" yaml:"education_level"`
	Profession      string `json:"profession" yaml:"profession"`
	LifeExperiences string `json:"lifeExperiences" yaml:"life_experiences"`
}

// EconomicStatus is the character's money situation.
type EconomicStatus struct {
	Savings       float64  `json:"savings" yaml:"savings"`
	Debt          float64  `json:"debt" yaml:"debt"`
	MonthlyIncome float64  `json:"monthlyIncome,omitempty" yaml:"monthly_income,omitempty"`
	Assets        []string `json:"assets,omitempty" yaml:"assets,omitempty"`
}

// HealthStatus tracks energy (0-100) and long-term conditions.
type HealthStatus struct {
	EnergyLevel       int      `json:"energyLevel" yaml:"energy_level"`
	ChronicConditions []string `json:"chronicConditions,omitempty" yaml:"chronic_conditions,omitempty"`
	FamilyHistory     string   `json:"familyHistory,omitempty" yaml:"family_history,omitempty"`
}

// FamilyBackground describes the household the character comes from.
type FamilyBackground struct {
	ParentsStatus    string `json:"parentsStatus" yaml:"parents_status"`
	EconomicSupport  string `json:"economicSupport,omitempty" yaml:"economic_support,omitempty"`
	SiblingCount     int    `json:"siblingCount,omitempty" yaml:"sibling_count,omitempty"`
	FamilyAssets     string `json:"familyAssets" yaml:"family_assets"`
	FatherProfession string `json:"fatherProfession" yaml:"father_profession"`
	MotherProfession string `json:"motherProfession" yaml:"mother_profession"`
}

// LifeEvent is one entry of the backend's per-profile life history.
type LifeEvent struct {
	Age              int    `json:"age"`
	EventDescription string `json:"eventDescription"`
	EventType        string `json:"eventType,omitempty"` // RANDOM, CHOICE, MACRO, SUMMARY
	ImpactAnalysis   string `json:"impactAnalysis,omitempty"`
}

// Profile is the character sheet plus the simulation state the backend
// attaches once a game is running. ID stays empty until the backend
// persists the sheet.
type Profile struct {
	ID               ID               `json:"id,omitempty" yaml:"-"`
	Difficulty       Difficulty       `json:"difficulty" yaml:"difficulty"`
	BasicInfo        BasicInfo        `json:"basicInfo" yaml:"basic_info"`
	EconomicStatus   EconomicStatus   `json:"economicStatus" yaml:"economic_status"`
	HealthStatus     HealthStatus     `json:"healthStatus" yaml:"health_status"`
	FamilyBackground FamilyBackground `json:"familyBackground" yaml:"family_background"`

	// Maintained by the backend; sent back unchanged.
	CurrentAge       int               `json:"currentAge,omitempty" yaml:"-"`
	CurrentScenario  scenario.Envelope `json:"currentScenario" yaml:"-"`
	AvailableChoices []string          `json:"availableChoices,omitempty" yaml:"-"`
	Generation       int               `json:"generation,omitempty" yaml:"-"`
	ParentProfileID  ID                `json:"parentProfileId,omitempty" yaml:"-"`
	LongTermMemory   string            `json:"longTermMemory,omitempty" yaml:"-"`
	LifeHistory      []LifeEvent       `json:"lifeHistory,omitempty" yaml:"-"`
}

// Default returns the sheet a new player starts from.
func Default() Profile {
	return Profile{
		Difficulty: DifficultyNormal,
		BasicInfo: BasicInfo{
			Name:           "Zhang San",
			StartAge:       25,
			Location:       "Tier-1 city",
			EducationLevel: "Bachelor",
			Profession:     "Programmer",
		},
		EconomicStatus: EconomicStatus{Savings: 50000},
		HealthStatus:   HealthStatus{EnergyLevel: 80},
		FamilyBackground: FamilyBackground{
			ParentsStatus: "Parents Alive",
		},
	}
}

// Scenario returns the normalized form of the profile's current scenario.
func (p Profile) Scenario() scenario.Scenario {
	return scenario.Normalize(p.CurrentScenario)
}

// Validate checks the ranges the character form enforces.
func (p Profile) Validate() error {
	switch {
	case p.BasicInfo.StartAge < 0:
		return fmt.Errorf("%w: start age %d is negative", ErrInvalidProfile, p.BasicInfo.StartAge)
	case p.EconomicStatus.Savings < 0:
		return fmt.Errorf("%w: savings cannot be negative", ErrInvalidProfile)
	case p.EconomicStatus.Debt < 0:
		return fmt.Errorf("%w: debt cannot be negative", ErrInvalidProfile)
	case p.HealthStatus.EnergyLevel < 0 || p.HealthStatus.EnergyLevel > 100:
		return fmt.Errorf("%w: energy level %d outside 0-100", ErrInvalidProfile, p.HealthStatus.EnergyLevel)
	case !p.Difficulty.Valid():
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidProfile, p.Difficulty)
	}
	return nil
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	c := p
	c.EconomicStatus.Assets = cloneStrings(p.EconomicStatus.Assets)
	c.HealthStatus.ChronicConditions = cloneStrings(p.HealthStatus.ChronicConditions)
	c.AvailableChoices = cloneStrings(p.AvailableChoices)
	if p.LifeHistory != nil {
		c.LifeHistory = append([]LifeEvent(nil), p.LifeHistory...)
	}
	if p.CurrentScenario.Record != nil {
		rec := make(map[string]json.RawMessage, len(p.CurrentScenario.Record))
		for k, v := range p.CurrentScenario.Record {
			rec[k] = v
		}
		c.CurrentScenario.Record = rec
	}
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
