package testsupport

import (
	"context"
	"testing"

	"hemascan/internal/config"
	"hemascan/internal/records"
	"hemascan/internal/scan"
)

// MustOpenStore opens a records.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *records.Store {
	t.Helper()

	store, err := records.Open(cfg)
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SaveRecord persists a record built from the given result for tests.
func SaveRecord(t testing.TB, store *records.Store, ownerID string, result scan.Result) scan.Record {
	t.Helper()

	record := scan.NewRecord(ownerID, result, scan.Subject{})
	if err := store.Save(context.Background(), &record); err != nil {
		t.Fatalf("store.Save: %v", err)
	}
	return record
}

// Images builds an n-image capture set with tiny distinct payloads.
func Images(n int) []scan.Image {
	images := make([]scan.Image, 0, n)
	names := scan.SlotNames()
	for i := 0; i < n; i++ {
		slot := ""
		if i < len(names) {
			slot = names[i]
		}
		images = append(images, scan.Image{
			Slot: slot,
			Data: []byte{0xFF, 0xD8, byte(i), 0xFF, 0xD9},
		})
	}
	return images
}
