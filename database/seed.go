package database

import (
	"fmt"

	"Bitwaves/config"

	"golang.org/x/crypto/bcrypt"
)

func SeedAdminUser(cfg *config.Config) error {
	// If no password is set, skip seeding (operator should set ADMIN_PASSWORD)
	if cfg.AdminPassword == "" {
		return nil
	}

	// Check if admin user already exists
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users WHERE username = $1", cfg.AdminUsername).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check for existing admin user: %w", err)
	}

	if count > 0 {
		// Admin user already exists, skip seeding
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = DB.Exec(
		"INSERT INTO users (username, email, password_hash, is_admin) VALUES ($1, $2, $3, $4)",
		cfg.AdminUsername,
		cfg.AdminEmail,
		string(hashedPassword),
		true,
	)
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	return nil
}
