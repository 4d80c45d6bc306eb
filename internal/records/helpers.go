package records

import (
	"database/sql"
	"encoding/json"

	"hemascan/internal/scan"
)

const recordColumns = "id, owner_id, subject_name, subject_age, subject_gender, subject_json, hemoglobin_estimate, stage, confidence, explanation, findings_json, insights_json, provider, image_urls_json, created_at"

// scanRecord reads one row into a Record, applying defaults for NULL or
// malformed columns. Only a row the driver cannot scan at all is an error;
// bad JSON in an optional column degrades to an empty value.
func scanRecord(scanner interface{ Scan(dest ...any) error }) (scan.Record, error) {
	var (
		id            string
		ownerID       sql.NullString
		subjectName   sql.NullString
		subjectAge    sql.NullInt64
		subjectGender sql.NullString
		subjectJSON   sql.NullString
		hemoglobin    sql.NullFloat64
		stageRaw      sql.NullString
		confidence    sql.NullFloat64
		explanation   sql.NullString
		findingsJSON  sql.NullString
		insightsJSON  sql.NullString
		provider      sql.NullString
		imageURLsJSON sql.NullString
		createdAt     sql.NullInt64
	)

	if err := scanner.Scan(
		&id,
		&ownerID,
		&subjectName,
		&subjectAge,
		&subjectGender,
		&subjectJSON,
		&hemoglobin,
		&stageRaw,
		&confidence,
		&explanation,
		&findingsJSON,
		&insightsJSON,
		&provider,
		&imageURLsJSON,
		&createdAt,
	); err != nil {
		return scan.Record{}, err
	}

	return scan.Record{
		ID:                 id,
		OwnerID:            ownerID.String,
		SubjectName:        subjectName.String,
		SubjectAge:         int(subjectAge.Int64),
		SubjectGender:      subjectGender.String,
		SubjectJSON:        subjectJSON.String,
		HemoglobinEstimate: hemoglobin.Float64,
		Stage:              scan.StageOrUnknown(stageRaw.String),
		Confidence:         scan.ClampConfidence(confidence.Float64),
		Explanation:        explanation.String,
		PerSlotFindings:    decodeStringMap(findingsJSON),
		Insights:           decodeStringMap(insightsJSON),
		Provider:           provider.String,
		ImageURLs:          decodeStringSlice(imageURLsJSON),
		Timestamp:          createdAt.Int64,
	}, nil
}

func decodeStringMap(value sql.NullString) map[string]string {
	if !value.Valid || value.String == "" {
		return nil
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(value.String), &decoded); err != nil {
		return nil
	}
	return decoded
}

func decodeStringSlice(value sql.NullString) []string {
	if !value.Valid || value.String == "" {
		return nil
	}
	var decoded []string
	if err := json.Unmarshal([]byte(value.String), &decoded); err != nil {
		return nil
	}
	return decoded
}

func encodeJSON(value any) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
