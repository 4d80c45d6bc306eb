package daemon

import "hemascan/internal/scan"

type statusResponse struct {
	Running       bool     `json:"running"`
	PID           int      `json:"pid"`
	DatabasePath  string   `json:"database_path"`
	LockFilePath  string   `json:"lock_file_path"`
	ProviderChain []string `json:"provider_chain"`
}

type scanRequest struct {
	OwnerID string       `json:"owner_id"`
	Subject scan.Subject `json:"subject"`
	// Images are base64-encoded JPEGs, one to five, in capture order.
	Images []string `json:"images"`
}

type recordPayload struct {
	ID                 string            `json:"id"`
	OwnerID            string            `json:"owner_id"`
	SubjectName        string            `json:"subject_name,omitempty"`
	SubjectAge         int               `json:"subject_age,omitempty"`
	SubjectGender      string            `json:"subject_gender,omitempty"`
	HemoglobinEstimate float64           `json:"hemoglobin_estimate"`
	Stage              string            `json:"stage"`
	StageLabel         string            `json:"stage_label"`
	Confidence         float64           `json:"confidence"`
	Explanation        string            `json:"explanation,omitempty"`
	PerSlotFindings    map[string]string `json:"per_slot_findings,omitempty"`
	Insights           map[string]string `json:"insights,omitempty"`
	Provider           string            `json:"provider,omitempty"`
	ImageURLs          []string          `json:"image_urls,omitempty"`
	Timestamp          int64             `json:"timestamp"`
}

type scanResponse struct {
	Record recordPayload `json:"record"`
}

type scanListResponse struct {
	Records []recordPayload `json:"records"`
	// Skipped counts stored rows that could not be parsed.
	Skipped int `json:"skipped,omitempty"`
}

type corpusStatsResponse struct {
	TotalEntries  int64            `json:"total_entries"`
	ConsentedOnly int64            `json:"consented_entries"`
	MeanHb        float64          `json:"mean_hemoglobin"`
	StageCounts   map[string]int64 `json:"stage_counts"`
	OldestEntry   int64            `json:"oldest_entry,omitempty"`
	NewestEntry   int64            `json:"newest_entry,omitempty"`
}

func recordPayloadFrom(record scan.Record) recordPayload {
	return recordPayload{
		ID:                 record.ID,
		OwnerID:            record.OwnerID,
		SubjectName:        record.SubjectName,
		SubjectAge:         record.SubjectAge,
		SubjectGender:      record.SubjectGender,
		HemoglobinEstimate: record.HemoglobinEstimate,
		Stage:              string(record.Stage),
		StageLabel:         record.Stage.Label(),
		Confidence:         record.Confidence,
		Explanation:        record.Explanation,
		PerSlotFindings:    record.PerSlotFindings,
		Insights:           record.Insights,
		Provider:           record.Provider,
		ImageURLs:          record.ImageURLs,
		Timestamp:          record.Timestamp,
	}
}
