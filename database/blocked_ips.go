package database

import (
	"database/sql"
	"fmt"

	"Bitwaves/models"
)

func LoadBlockedIPs() ([]models.BlockedIP, error) {
	rows, err := DB.Query("SELECT ip, reason, added_by, added_at FROM blocked_ips ORDER BY added_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked ips: %w", err)
	}
	defer rows.Close()

	var entries []models.BlockedIP
	for rows.Next() {
		var e models.BlockedIP
		var reason, addedBy sql.NullString
		if err := rows.Scan(&e.IP, &reason, &addedBy, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blocked ip: %w", err)
		}
		e.Reason = reason.String
		e.AddedBy = addedBy.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func SaveBlockedIP(e models.BlockedIP) error {
	_, err := DB.Exec(`
		INSERT INTO blocked_ips (ip, reason, added_by, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ip) DO UPDATE SET reason = EXCLUDED.reason, added_by = EXCLUDED.added_by`,
		e.IP, nullString(e.Reason), nullString(e.AddedBy), e.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save blocked ip %s: %w", e.IP, err)
	}
	return nil
}

func DeleteBlockedIP(ip string) error {
	_, err := DB.Exec("DELETE FROM blocked_ips WHERE ip = $1", ip)
	if err != nil {
		return fmt.Errorf("failed to delete blocked ip %s: %w", ip, err)
	}
	return nil
}
