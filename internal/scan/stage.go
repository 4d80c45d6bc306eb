package scan

import "strings"

// Stage classifies a screening result using WHO anemia severity bands.
type Stage string

const (
	StageNormal   Stage = "NORMAL"
	StageMild     Stage = "MILD"
	StageModerate Stage = "MODERATE"
	StageSevere   Stage = "SEVERE"
	StageUnknown  Stage = "UNKNOWN"
	// StageInvalid marks submissions whose photos are not of a human
	// face/tongue/eye/hand, as judged by the provider.
	StageInvalid Stage = "INVALID"
)

var allStages = []Stage{
	StageNormal,
	StageMild,
	StageModerate,
	StageSevere,
	StageUnknown,
	StageInvalid,
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(allStages))
	for _, stage := range allStages {
		set[stage] = struct{}{}
	}
	return set
}()

var stageLabels = map[Stage]string{
	StageNormal:   "Normal",
	StageMild:     "Mild Anemia",
	StageModerate: "Moderate Anemia",
	StageSevere:   "Severe Anemia",
	StageUnknown:  "Unknown",
	StageInvalid:  "Invalid Images",
}

// AllStages returns the ordered list of known stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stageSet[normalized]
	return normalized, ok
}

// StageOrUnknown parses a stage string, falling back to StageUnknown for
// anything unrecognized. Stored documents and provider output both go through
// this so a garbled stage never escapes the enum.
func StageOrUnknown(value string) Stage {
	if stage, ok := ParseStage(value); ok {
		return stage
	}
	return StageUnknown
}

// Label returns the human-readable name for the stage.
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return stageLabels[StageUnknown]
}

// ClassifyHemoglobin maps a hemoglobin estimate (g/dL) onto a Stage using the
// WHO severity bands. Non-positive estimates classify as unknown.
func ClassifyHemoglobin(hb float64) Stage {
	switch {
	case hb >= 12.0:
		return StageNormal
	case hb >= 11.0:
		return StageMild
	case hb >= 8.0:
		return StageModerate
	case hb > 0:
		return StageSevere
	default:
		return StageUnknown
	}
}
