package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hemascan/internal/scan"
)

// corpusDataVersion tags corpus rows with the anonymization scheme they were
// written under.
const corpusDataVersion = 1

// CorpusEntry is one anonymized research-corpus row. It carries no subject
// name and no owner reference; only coarse demographics survive.
type CorpusEntry struct {
	ID                 string
	RecordID           string
	Stage              scan.Stage
	HemoglobinEstimate float64
	Confidence         float64
	SubjectAge         int
	SubjectGender      string
	Region             string
	Explanation        string
	PerSlotFindings    map[string]string
	Provider           string
	ImageURLs          []string
	ConsentGiven       bool
	DataVersion        int
	CreatedAt          int64
}

// NewCorpusEntry derives the anonymized corpus row from a stored record.
func NewCorpusEntry(record scan.Record, subject scan.Subject, consent bool) CorpusEntry {
	return CorpusEntry{
		RecordID:           record.ID,
		Stage:              record.Stage,
		HemoglobinEstimate: record.HemoglobinEstimate,
		Confidence:         record.Confidence,
		SubjectAge:         record.SubjectAge,
		SubjectGender:      record.SubjectGender,
		Region:             subject.Region,
		Explanation:        record.Explanation,
		PerSlotFindings:    record.PerSlotFindings,
		Provider:           record.Provider,
		ImageURLs:          record.ImageURLs,
		ConsentGiven:       consent,
		DataVersion:        corpusDataVersion,
		CreatedAt:          record.Timestamp,
	}
}

// AddCorpusEntry inserts one anonymized entry.
func (s *Store) AddCorpusEntry(ctx context.Context, entry CorpusEntry) error {
	if entry.RecordID == "" {
		return errors.New("add corpus entry: record id required")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.DataVersion == 0 {
		entry.DataVersion = corpusDataVersion
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().UnixMilli()
	}

	consent := 0
	if entry.ConsentGiven {
		consent = 1
	}
	findingsJSON, err := encodeJSON(entry.PerSlotFindings)
	if err != nil {
		return fmt.Errorf("add corpus entry: encode findings: %w", err)
	}
	urlsJSON, err := encodeJSON(entry.ImageURLs)
	if err != nil {
		return fmt.Errorf("add corpus entry: encode image urls: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO corpus_entries (
            id, record_id, stage, hemoglobin_estimate, confidence,
            subject_age, subject_gender, region,
            explanation, findings_json, provider, image_urls_json,
            consent_given, data_version, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.RecordID,
		string(entry.Stage),
		entry.HemoglobinEstimate,
		entry.Confidence,
		entry.SubjectAge,
		nullableString(entry.SubjectGender),
		nullableString(entry.Region),
		nullableString(entry.Explanation),
		findingsJSON,
		nullableString(entry.Provider),
		urlsJSON,
		consent,
		entry.DataVersion,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("add corpus entry: %w", err)
	}
	return nil
}

// ListCorpusEntries returns corpus rows newest first. When consentOnly is set,
// rows recorded without consent are excluded.
func (s *Store) ListCorpusEntries(ctx context.Context, consentOnly bool) ([]CorpusEntry, error) {
	query := `SELECT id, record_id, stage, hemoglobin_estimate, confidence,
        subject_age, subject_gender, region,
        explanation, findings_json, provider, image_urls_json,
        consent_given, data_version, created_at
        FROM corpus_entries`
	if consentOnly {
		query += " WHERE consent_given = 1"
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list corpus entries: query: %w", err)
	}
	defer rows.Close()

	var entries []CorpusEntry
	for rows.Next() {
		var (
			entry       CorpusEntry
			stage       string
			gender      sql.NullString
			region      sql.NullString
			explanation sql.NullString
			findings    sql.NullString
			provider    sql.NullString
			urls        sql.NullString
			consent     int
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.RecordID,
			&stage,
			&entry.HemoglobinEstimate,
			&entry.Confidence,
			&entry.SubjectAge,
			&gender,
			&region,
			&explanation,
			&findings,
			&provider,
			&urls,
			&consent,
			&entry.DataVersion,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list corpus entries: scan: %w", err)
		}
		entry.Stage = scan.StageOrUnknown(stage)
		entry.SubjectGender = gender.String
		entry.Region = region.String
		entry.Explanation = explanation.String
		entry.PerSlotFindings = decodeStringMap(findings)
		entry.Provider = provider.String
		entry.ImageURLs = decodeStringSlice(urls)
		entry.ConsentGiven = consent != 0
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list corpus entries: iterate: %w", err)
	}
	return entries, nil
}

// CorpusStats summarizes the research corpus.
type CorpusStats struct {
	TotalEntries  int64
	ConsentedOnly int64
	StageCounts   map[scan.Stage]int64
	MeanHb        float64
	OldestEntry   time.Time
	NewestEntry   time.Time
}

// GetCorpusStats computes corpus-wide aggregates.
func (s *Store) GetCorpusStats(ctx context.Context) (CorpusStats, error) {
	stats := CorpusStats{StageCounts: make(map[scan.Stage]int64)}

	var (
		meanHb sql.NullFloat64
		oldest sql.NullInt64
		newest sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
            COALESCE(SUM(consent_given), 0),
            AVG(CASE WHEN hemoglobin_estimate > 0 THEN hemoglobin_estimate END),
            MIN(created_at),
            MAX(created_at)
        FROM corpus_entries`,
	).Scan(&stats.TotalEntries, &stats.ConsentedOnly, &meanHb, &oldest, &newest)
	if err != nil {
		return stats, fmt.Errorf("corpus stats: totals: %w", err)
	}
	stats.MeanHb = meanHb.Float64
	if oldest.Valid {
		stats.OldestEntry = time.UnixMilli(oldest.Int64)
	}
	if newest.Valid {
		stats.NewestEntry = time.UnixMilli(newest.Int64)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT stage, COUNT(1) FROM corpus_entries GROUP BY stage")
	if err != nil {
		return stats, fmt.Errorf("corpus stats: stages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			stage string
			count int64
		)
		if err := rows.Scan(&stage, &count); err != nil {
			return stats, fmt.Errorf("corpus stats: scan stage: %w", err)
		}
		stats.StageCounts[scan.StageOrUnknown(stage)] = count
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("corpus stats: iterate stages: %w", err)
	}
	return stats, nil
}
