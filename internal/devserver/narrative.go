package devserver

import (
	"encoding/json"
	"fmt"

	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/scenario"
)

const heirStartAge = 18

var choicePool = [][]string{
	{"Ask for a raise", "Change careers", "Take a sabbatical"},
	{"Buy a flat", "Keep renting and invest", "Move back home"},
	{"Start a side business", "Go back to school", "Focus on family"},
}

// Each generator emits its scenario in a different encoding: JSON text
// of JSON text, JSON text, a plain object and plain narrative.

func startYear(p *profile.Profile, answers map[string]string) {
	p.CurrentAge = p.BasicInfo.StartAge
	event := fmt.Sprintf("At %d, %s takes stock of life after answering %d questions.",
		p.CurrentAge, p.BasicInfo.Name, len(answers))
	p.CurrentScenario = doubleEncoded(map[string]string{
		"event":               event,
		"status_change":       "energy steady",
		"relationship_change": "parents are proud",
	})
	p.AvailableChoices = choicesFor(p.CurrentAge)
	record(p, event, "SUMMARY")
}

func advanceYear(p *profile.Profile, choice string) {
	p.CurrentAge++
	event := fmt.Sprintf("At %d you decided to %q. The year went by quickly.", p.CurrentAge, choice)
	p.CurrentScenario = singleEncoded(map[string]string{
		"event":         event,
		"status_change": fmt.Sprintf("energy %d", p.HealthStatus.EnergyLevel),
	})
	p.AvailableChoices = choicesFor(p.CurrentAge)
	record(p, event, "CHOICE")
}

func skipYears(p *profile.Profile, years int) {
	p.CurrentAge += years
	event := fmt.Sprintf("%d years passed in a blur. You are now %d.", years, p.CurrentAge)
	p.CurrentScenario = object(map[string]string{
		"message":             event,
		"relationship_change": "old friends drifted away",
	})
	p.AvailableChoices = choicesFor(p.CurrentAge)
	record(p, event, "MACRO")
}

func inherit(parent profile.Profile) profile.Profile {
	heir := parent.Clone()
	heir.ID = ""
	heir.ParentProfileID = parent.ID
	heir.Generation = parent.Generation + 1
	heir.BasicInfo.Name = parent.BasicInfo.Name + " Jr."
	heir.BasicInfo.StartAge = heirStartAge
	heir.CurrentAge = heirStartAge
	heir.LifeHistory = nil
	heir.LongTermMemory = ""
	heir.FamilyBackground.FatherProfession = parent.BasicInfo.Profession
	event := fmt.Sprintf("%s inherits the family legacy at %d.", heir.BasicInfo.Name, heirStartAge)
	heir.CurrentScenario = scenario.Text(event)
	heir.AvailableChoices = choicesFor(heirStartAge)
	record(&heir, event, "SUMMARY")
	return heir
}

func choicesFor(age int) []string {
	return append([]string(nil), choicePool[age%len(choicePool)]...)
}

func record(p *profile.Profile, event, kind string) {
	p.LifeHistory = append(p.LifeHistory, profile.LifeEvent{
		Age:              p.CurrentAge,
		EventDescription: event,
		EventType:        kind,
	})
}

func object(v interface{}) scenario.Envelope {
	data, _ := json.Marshal(v)
	return scenario.FromRaw(data)
}

func singleEncoded(v interface{}) scenario.Envelope {
	data, _ := json.Marshal(v)
	return scenario.Text(string(data))
}

func doubleEncoded(v interface{}) scenario.Envelope {
	inner, _ := json.Marshal(v)
	outer, _ := json.Marshal(string(inner))
	return scenario.Text(string(outer))
}
