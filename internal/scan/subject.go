package scan

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Subject captures demographic and medical details collected before a
// screening. Providers use these to sharpen the analysis; the persisted record
// stores a JSON snapshot taken once at persist time.
type Subject struct {
	Name             string  `json:"name,omitempty"`
	Age              int     `json:"age,omitempty"`
	Gender           string  `json:"gender,omitempty"`
	Ethnicity        string  `json:"ethnicity,omitempty"`
	Region           string  `json:"region,omitempty"`
	WeightKg         float64 `json:"weightKg,omitempty"`
	Diet             string  `json:"diet,omitempty"`
	KnownConditions  string  `json:"knownConditions,omitempty"`
	CurrentSymptoms  string  `json:"currentSymptoms,omitempty"`
	MenstrualStatus  string  `json:"menstrualStatus,omitempty"`
	PreviousAnemia   bool    `json:"previousAnemia,omitempty"`
	CurrentMedicines string  `json:"currentMedications,omitempty"`
}

// Normalized returns a copy with free-text categorical fields trimmed and
// title-cased so prompts and stored snapshots stay consistent regardless of
// how the values were entered.
func (s Subject) Normalized() Subject {
	s.Name = strings.TrimSpace(s.Name)
	s.Gender = titleCaser.String(strings.ToLower(strings.TrimSpace(s.Gender)))
	s.Ethnicity = strings.TrimSpace(s.Ethnicity)
	s.Region = strings.TrimSpace(s.Region)
	s.Diet = titleCaser.String(strings.ToLower(strings.TrimSpace(s.Diet)))
	s.KnownConditions = strings.TrimSpace(s.KnownConditions)
	s.CurrentSymptoms = strings.TrimSpace(s.CurrentSymptoms)
	s.MenstrualStatus = strings.TrimSpace(s.MenstrualStatus)
	s.CurrentMedicines = strings.TrimSpace(s.CurrentMedicines)
	return s
}

// IsZero reports whether no subject details were provided.
func (s Subject) IsZero() bool {
	return s == (Subject{})
}

// IsFemale reports whether the subject's gender matches "female", the only
// case where menstrual status is surfaced to providers.
func (s Subject) IsFemale() bool {
	return strings.EqualFold(strings.TrimSpace(s.Gender), "female")
}
