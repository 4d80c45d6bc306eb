package scan

import (
	"encoding/json"
	"time"
)

// Record is the authoritative persisted form of one screening. It is created
// once by the persistence pipeline; only ImageURLs may be patched afterwards.
type Record struct {
	ID            string
	OwnerID       string
	SubjectName   string
	SubjectAge    int
	SubjectGender string
	// SubjectJSON is the full Subject serialized once at persist time.
	SubjectJSON        string
	HemoglobinEstimate float64
	Stage              Stage
	Confidence         float64
	Explanation        string
	PerSlotFindings    map[string]string
	Insights           map[string]string
	Provider           string
	// ImageURLs holds 0..5 evidence URLs and may lag behind the record when
	// uploads are degraded.
	ImageURLs []string
	// Timestamp is epoch milliseconds.
	Timestamp int64
}

// NewRecord assembles a record from an analysis result and optional subject
// details. The ID is left empty for the store to assign.
func NewRecord(ownerID string, result Result, subject Subject) Record {
	subject = subject.Normalized()

	subjectJSON := ""
	if !subject.IsZero() {
		if encoded, err := json.Marshal(subject); err == nil {
			subjectJSON = string(encoded)
		}
	}

	return Record{
		OwnerID:            ownerID,
		SubjectName:        subject.Name,
		SubjectAge:         subject.Age,
		SubjectGender:      subject.Gender,
		SubjectJSON:        subjectJSON,
		HemoglobinEstimate: result.HemoglobinEstimate,
		Stage:              result.Stage,
		Confidence:         ClampConfidence(result.Confidence),
		Explanation:        result.Explanation,
		PerSlotFindings:    result.PerSlotFindings,
		Insights:           result.Insights,
		Provider:           result.Provider,
		ImageURLs:          nil,
		Timestamp:          time.Now().UnixMilli(),
	}
}

// Result reconstructs the embedded analysis result.
func (r Record) Result() Result {
	return Result{
		HemoglobinEstimate: r.HemoglobinEstimate,
		Stage:              r.Stage,
		Confidence:         r.Confidence,
		Explanation:        r.Explanation,
		PerSlotFindings:    r.PerSlotFindings,
		Insights:           r.Insights,
		Provider:           r.Provider,
	}
}

// CreatedAt returns the record timestamp as a time value.
func (r Record) CreatedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}
