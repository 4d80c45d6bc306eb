package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// OwnerStats is the per-owner scan counter row.
type OwnerStats struct {
	OwnerID    string
	TotalScans int64
	LastScanAt time.Time
}

// IncrementScanCount bumps an owner's total scan counter by one. The update is
// a single atomic statement so concurrent scans never lose increments.
func (s *Store) IncrementScanCount(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return errors.New("increment scan count: owner id required")
	}
	now := time.Now().UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO owner_stats (owner_id, total_scans, last_scan_at)
         VALUES (?, 1, ?)
         ON CONFLICT(owner_id) DO UPDATE SET
            total_scans = total_scans + 1,
            last_scan_at = excluded.last_scan_at`,
		ownerID, now)
	if err != nil {
		return fmt.Errorf("increment scan count: %w", err)
	}
	return nil
}

// GetOwnerStats returns the counter row for an owner. Owners who never scanned
// get a zero-count row rather than an error.
func (s *Store) GetOwnerStats(ctx context.Context, ownerID string) (OwnerStats, error) {
	stats := OwnerStats{OwnerID: ownerID}
	var lastScanAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT total_scans, last_scan_at FROM owner_stats WHERE owner_id = ?",
		ownerID).Scan(&stats.TotalScans, &lastScanAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stats, nil
		}
		return stats, fmt.Errorf("get owner stats: %w", err)
	}
	if lastScanAt.Valid {
		stats.LastScanAt = time.UnixMilli(lastScanAt.Int64)
	}
	return stats, nil
}
