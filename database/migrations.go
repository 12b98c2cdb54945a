package database

import (
	"fmt"
)

func RunMigrations() error {
	usersSQL := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		is_admin BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := DB.Exec(usersSQL)
	if err != nil {
		return fmt.Errorf("failed to run users migration: %w", err)
	}

	// Ensure user named 'admin' is actually an admin
	_, err = DB.Exec("UPDATE users SET is_admin = TRUE WHERE username = 'admin'")
	if err != nil {
		return fmt.Errorf("failed to ensure admin user has admin flag: %w", err)
	}

	requestsSQL := `
	CREATE TABLE IF NOT EXISTS requests (
		id VARCHAR(64) PRIMARY KEY,
		track_guid VARCHAR(255) NOT NULL,
		requested_by VARCHAR(255) NOT NULL,
		message TEXT,
		ip_address VARCHAR(64),
		requested_at TIMESTAMPTZ NOT NULL,
		processed_at TIMESTAMPTZ,
		status VARCHAR(32) NOT NULL DEFAULT 'pending',
		auto_process_at TIMESTAMPTZ NOT NULL,
		hold_expires_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_requests_status ON requests (status);
	CREATE INDEX IF NOT EXISTS idx_requests_ip ON requests (ip_address, requested_at);
	`
	_, err = DB.Exec(requestsSQL)
	if err != nil {
		return fmt.Errorf("failed to run requests migration: %w", err)
	}

	blockedSQL := `
	CREATE TABLE IF NOT EXISTS blocked_ips (
		ip VARCHAR(64) PRIMARY KEY,
		reason TEXT,
		added_by VARCHAR(255),
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err = DB.Exec(blockedSQL)
	if err != nil {
		return fmt.Errorf("failed to run blocked_ips migration: %w", err)
	}

	return nil
}
