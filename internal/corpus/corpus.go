// Package corpus reports on and exports the anonymized research corpus.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"hemascan/internal/records"
	"hemascan/internal/scan"
)

// Service exposes corpus analytics over the records store.
type Service struct {
	store *records.Store
}

// NewService wraps the store.
func NewService(store *records.Store) *Service {
	return &Service{store: store}
}

// StageShare is one stage's slice of the corpus.
type StageShare struct {
	Stage   scan.Stage
	Count   int64
	Percent float64
}

// Summary is the analyst-facing corpus report.
type Summary struct {
	Stats  records.CorpusStats
	Shares []StageShare
}

// Summarize computes corpus aggregates plus per-stage shares in severity order.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	stats, err := s.store.GetCorpusStats(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize corpus: %w", err)
	}

	summary := Summary{Stats: stats}
	for _, stage := range scan.AllStages() {
		count := stats.StageCounts[stage]
		if count == 0 {
			continue
		}
		share := StageShare{Stage: stage, Count: count}
		if stats.TotalEntries > 0 {
			share.Percent = float64(count) / float64(stats.TotalEntries) * 100
		}
		summary.Shares = append(summary.Shares, share)
	}
	return summary, nil
}

// exportEntry is the JSON-lines export row.
type exportEntry struct {
	ID                 string            `json:"id"`
	Stage              string            `json:"stage"`
	HemoglobinEstimate float64           `json:"hemoglobin_estimate"`
	Confidence         float64           `json:"confidence"`
	SubjectAge         int               `json:"subject_age,omitempty"`
	SubjectGender      string            `json:"subject_gender,omitempty"`
	Region             string            `json:"region,omitempty"`
	Explanation        string            `json:"explanation,omitempty"`
	PerSlotFindings    map[string]string `json:"per_slot_findings,omitempty"`
	Provider           string            `json:"provider,omitempty"`
	ImageURLs          []string          `json:"image_urls,omitempty"`
	DataVersion        int               `json:"data_version"`
	CreatedAt          int64             `json:"created_at"`
}

// Export writes corpus entries as JSON lines. Only consented rows are
// exported; rows collected without consent never leave the local store.
func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	entries, err := s.store.ListCorpusEntries(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("export corpus: %w", err)
	}

	encoder := json.NewEncoder(w)
	for _, entry := range entries {
		row := exportEntry{
			ID:                 entry.ID,
			Stage:              string(entry.Stage),
			HemoglobinEstimate: entry.HemoglobinEstimate,
			Confidence:         entry.Confidence,
			SubjectAge:         entry.SubjectAge,
			SubjectGender:      entry.SubjectGender,
			Region:             entry.Region,
			Explanation:        entry.Explanation,
			PerSlotFindings:    entry.PerSlotFindings,
			Provider:           entry.Provider,
			ImageURLs:          entry.ImageURLs,
			DataVersion:        entry.DataVersion,
			CreatedAt:          entry.CreatedAt,
		}
		if err := encoder.Encode(row); err != nil {
			return 0, fmt.Errorf("export corpus: encode entry %s: %w", entry.ID, err)
		}
	}
	return len(entries), nil
}
