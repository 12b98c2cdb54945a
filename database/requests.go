package database

import (
	"database/sql"
	"fmt"
	"time"

	"Bitwaves/models"
)

// LoadRequests returns every persisted request snapshot. Called once at
// startup to hydrate the in-memory store.
func LoadRequests() ([]models.Request, error) {
	rows, err := DB.Query(`
		SELECT id, track_guid, requested_by, message, ip_address, requested_at, processed_at, status, auto_process_at, hold_expires_at
		FROM requests
		ORDER BY requested_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		var r models.Request
		var message, ip sql.NullString
		var processedAt, holdExpiresAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.TrackGuid, &r.RequestedBy, &message, &ip, &r.RequestedAt, &processedAt, &r.Status, &r.AutoProcessAt, &holdExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		r.Message = message.String
		r.IPAddress = ip.String
		if processedAt.Valid {
			t := processedAt.Time
			r.ProcessedAt = &t
		}
		if holdExpiresAt.Valid {
			t := holdExpiresAt.Time
			r.HoldExpiresAt = &t
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// SaveRequest upserts one request snapshot. The in-memory store is
// authoritative; a failed write degrades durability, not availability.
func SaveRequest(r models.Request) error {
	_, err := DB.Exec(`
		INSERT INTO requests (id, track_guid, requested_by, message, ip_address, requested_at, processed_at, status, auto_process_at, hold_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			processed_at = EXCLUDED.processed_at,
			status = EXCLUDED.status,
			auto_process_at = EXCLUDED.auto_process_at,
			hold_expires_at = EXCLUDED.hold_expires_at`,
		r.ID, r.TrackGuid, r.RequestedBy, nullString(r.Message), nullString(r.IPAddress),
		r.RequestedAt, nullTime(r.ProcessedAt), string(r.Status), r.AutoProcessAt, nullTime(r.HoldExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save request %s: %w", r.ID, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
