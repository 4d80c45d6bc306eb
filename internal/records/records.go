package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hemascan/internal/scan"
)

// ParseError reports one stored row that could not be read. Listing skips
// such rows instead of failing the whole query.
type ParseError struct {
	RecordID string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse record %s: %v", e.RecordID, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Save inserts a new record. A missing ID is assigned before the write; the
// caller's record is updated in place so it reflects the stored row.
func (s *Store) Save(ctx context.Context, record *scan.Record) error {
	if record == nil {
		return errors.New("save record: nil record")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.OwnerID == "" {
		return errors.New("save record: owner id required")
	}

	findingsJSON, err := encodeJSON(record.PerSlotFindings)
	if err != nil {
		return fmt.Errorf("save record: encode findings: %w", err)
	}
	insightsJSON, err := encodeJSON(record.Insights)
	if err != nil {
		return fmt.Errorf("save record: encode insights: %w", err)
	}
	imageURLsJSON, err := encodeJSON(record.ImageURLs)
	if err != nil {
		return fmt.Errorf("save record: encode image urls: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO scan_records (
            id, owner_id, subject_name, subject_age, subject_gender, subject_json,
            hemoglobin_estimate, stage, confidence, explanation,
            findings_json, insights_json, provider, image_urls_json, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.OwnerID,
		nullableString(record.SubjectName),
		record.SubjectAge,
		nullableString(record.SubjectGender),
		nullableString(record.SubjectJSON),
		record.HemoglobinEstimate,
		string(record.Stage),
		record.Confidence,
		nullableString(record.Explanation),
		findingsJSON,
		insightsJSON,
		nullableString(record.Provider),
		imageURLsJSON,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("save record: insert: %w", err)
	}
	return nil
}

// PatchImageURLs updates the evidence URLs of an existing record. Nothing else
// on a stored record is mutable.
func (s *Store) PatchImageURLs(ctx context.Context, recordID string, urls []string) error {
	encoded, err := encodeJSON(urls)
	if err != nil {
		return fmt.Errorf("patch image urls: encode: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE scan_records SET image_urls_json = ? WHERE id = ?",
		encoded, recordID)
	if err != nil {
		return fmt.Errorf("patch image urls: update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("patch image urls: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("patch image urls: %w: %s", ErrRecordNotFound, recordID)
	}
	return nil
}

// Get returns one record by ID.
func (s *Store) Get(ctx context.Context, recordID string) (*scan.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM scan_records WHERE id = ?", recordID)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get record: %w: %s", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &record, nil
}

// GetOwned fetches a record only if it belongs to the given owner; a record
// stored under a different owner reads as not found.
func (s *Store) GetOwned(ctx context.Context, ownerID, recordID string) (*scan.Record, error) {
	record, err := s.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.OwnerID != ownerID {
		return nil, fmt.Errorf("get record: %w: %s", ErrRecordNotFound, recordID)
	}
	return record, nil
}

// List returns an owner's records newest first. Rows that cannot be read are
// skipped and reported separately so one corrupt row never hides the rest of
// the history.
func (s *Store) List(ctx context.Context, ownerID string) ([]scan.Record, []ParseError, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM scan_records WHERE owner_id = ? ORDER BY created_at DESC, id",
		ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("list records: query: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListAll returns every stored record newest first, with the same per-row
// fault tolerance as List.
func (s *Store) ListAll(ctx context.Context) ([]scan.Record, []ParseError, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM scan_records ORDER BY created_at DESC, id")
	if err != nil {
		return nil, nil, fmt.Errorf("list records: query: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows *sql.Rows) ([]scan.Record, []ParseError, error) {
	var (
		records   []scan.Record
		malformed []ParseError
	)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			malformed = append(malformed, ParseError{RecordID: rowID(rows), Err: err})
			continue
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("list records: iterate: %w", err)
	}
	return records, malformed, nil
}

// rowID re-reads only the id column of the current row so an unreadable row
// can still be reported by identifier. The id is the first column in every
// record query.
func rowID(rows *sql.Rows) string {
	cols, err := rows.Columns()
	if err != nil || len(cols) == 0 {
		return ""
	}
	var id sql.NullString
	dest := make([]any, len(cols))
	dest[0] = &id
	for i := 1; i < len(cols); i++ {
		dest[i] = new(any)
	}
	if err := rows.Scan(dest...); err != nil {
		return ""
	}
	return id.String
}
