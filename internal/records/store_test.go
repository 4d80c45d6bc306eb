package records

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"hemascan/internal/scan"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(ownerID string) scan.Record {
	return scan.NewRecord(ownerID, scan.Result{
		HemoglobinEstimate: 10.2,
		Stage:              scan.StageModerate,
		Confidence:         0.75,
		Explanation:        "conjunctival pallor",
		PerSlotFindings:    map[string]string{scan.SlotConjunctiva: "pale"},
		Insights:           map[string]string{scan.InsightDietary: "iron-rich foods"},
		Provider:           "gemini",
	}, scan.Subject{Name: "Asha", Age: 29, Gender: "Female"})
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := sampleRecord("owner-1")
	if err := store.Save(ctx, &record); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if record.ID == "" {
		t.Fatal("Save should assign an ID")
	}

	got, err := store.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OwnerID != "owner-1" || got.Stage != scan.StageModerate {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.SubjectName != "Asha" || got.SubjectAge != 29 {
		t.Fatalf("subject fields lost: %+v", got)
	}
	if got.PerSlotFindings[scan.SlotConjunctiva] != "pale" {
		t.Fatalf("findings lost: %v", got.PerSlotFindings)
	}
	if got.Insights[scan.InsightDietary] != "iron-rich foods" {
		t.Fatalf("insights lost: %v", got.Insights)
	}
}

func TestGetMissingRecord(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestGetOwnedChecksOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := sampleRecord("owner-1")
	if err := store.Save(ctx, &record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetOwned(ctx, "owner-1", record.ID)
	if err != nil {
		t.Fatalf("GetOwned: %v", err)
	}
	if got.ID != record.ID {
		t.Fatalf("got record %q, want %q", got.ID, record.ID)
	}

	if _, err := store.GetOwned(ctx, "owner-2", record.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for wrong owner, got %v", err)
	}
}

func TestSaveRequiresOwner(t *testing.T) {
	store := newTestStore(t)
	record := sampleRecord("")
	if err := store.Save(context.Background(), &record); err == nil {
		t.Fatal("expected error for missing owner")
	}
}

func TestPatchImageURLs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := sampleRecord("owner-1")
	if err := store.Save(ctx, &record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	urls := []string{"file:///a/photo_0.jpg", "file:///a/photo_1.jpg"}
	if err := store.PatchImageURLs(ctx, record.ID, urls); err != nil {
		t.Fatalf("PatchImageURLs: %v", err)
	}

	got, err := store.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.ImageURLs) != 2 || got.ImageURLs[0] != urls[0] {
		t.Fatalf("image urls = %v", got.ImageURLs)
	}
	// Only the URLs may change.
	if got.Stage != scan.StageModerate || got.SubjectName != "Asha" {
		t.Fatalf("patch touched other fields: %+v", got)
	}

	if err := store.PatchImageURLs(ctx, "missing", urls); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UnixMilli()
	for i := 0; i < 3; i++ {
		record := sampleRecord("owner-1")
		record.Timestamp = base + int64(i*1000)
		if err := store.Save(ctx, &record); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}
	other := sampleRecord("owner-2")
	if err := store.Save(ctx, &other); err != nil {
		t.Fatalf("Save other: %v", err)
	}

	found, malformed, err := store.List(ctx, "owner-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(malformed) != 0 {
		t.Fatalf("unexpected malformed rows: %v", malformed)
	}
	if len(found) != 3 {
		t.Fatalf("expected 3 records, got %d", len(found))
	}
	for i := 1; i < len(found); i++ {
		if found[i-1].Timestamp < found[i].Timestamp {
			t.Fatal("records not newest first")
		}
	}
}

func TestListDefaultsOnMissingFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Simulate a row written by an older or buggy client: stage garbage,
	// JSON columns broken, numerics NULL.
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO scan_records (id, owner_id, stage, findings_json, image_urls_json, created_at)
         VALUES ('legacy-1', 'owner-1', 'bogus', 'not json', '{broken', 42)`)
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	found, malformed, err := store.List(ctx, "owner-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(malformed) != 0 {
		t.Fatalf("legacy row should be readable with defaults, got %v", malformed)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 record, got %d", len(found))
	}
	got := found[0]
	if got.Stage != scan.StageUnknown {
		t.Errorf("stage = %s, want UNKNOWN", got.Stage)
	}
	if got.HemoglobinEstimate != 0 || got.Confidence != 0 {
		t.Errorf("numeric defaults wrong: %+v", got)
	}
	if got.PerSlotFindings != nil || got.ImageURLs != nil {
		t.Errorf("broken JSON should default to empty: %+v", got)
	}
}

func TestListSkipsUnreadableRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := sampleRecord("owner-1")
	if err := store.Save(ctx, &record); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// A NULL created_at the scanner tolerates, but a text subject_age the
	// driver cannot coerce to int64 makes the row unreadable.
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO scan_records (id, owner_id, subject_age, created_at)
         VALUES ('corrupt-1', 'owner-1', 'not-a-number', 99)`)
	if err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}

	found, malformed, err := store.List(ctx, "owner-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(found) != 1 || found[0].ID != record.ID {
		t.Fatalf("expected only the healthy record, got %d", len(found))
	}
	if len(malformed) != 1 {
		t.Fatalf("expected 1 malformed row, got %d", len(malformed))
	}
	if malformed[0].RecordID != "corrupt-1" {
		t.Fatalf("expected malformed row to carry its id, got %q", malformed[0].RecordID)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mismatch.db")
	store, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	store.Close()

	if _, err := OpenPath(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
