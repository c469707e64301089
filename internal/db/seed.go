package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// SeedDev inserts the fixture profile used by end-to-end tests. Idempotent:
// reruns are no-ops. Only wired up in development.
func SeedDev(db *sqlx.DB) error {
	const testUserID = "00000000-0000-0000-0000-000000000000"

	now := time.Now()
	_, err := db.Exec(
		`INSERT INTO user_profiles (id, email, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT DO NOTHING`,
		testUserID, "account@e2e.net", "E2E Account", now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to seed dev profile: %w", err)
	}

	slog.Info("dev seed applied", "user_id", testUserID)
	return nil
}
