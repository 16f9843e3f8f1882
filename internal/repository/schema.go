package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order by Migrate.  Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'GUEST',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_refresh_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS engine_state (
		id TINYINT UNSIGNED PRIMARY KEY,
		version BIGINT UNSIGNED NOT NULL,
		saved_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id VARCHAR(64) PRIMARY KEY,
		guest_id BIGINT UNSIGNED NOT NULL DEFAULT 0,
		check_in DATE NOT NULL,
		check_out DATE NOT NULL,
		travel_time_minutes INT NOT NULL,
		placement VARCHAR(16) NOT NULL,
		status VARCHAR(16) NOT NULL,
		source VARCHAR(16) NOT NULL,
		seq BIGINT UNSIGNED NOT NULL,
		created_at DATETIME(6) NOT NULL,
		cancelled_at DATETIME(6) NULL,
		INDEX idx_bookings_guest (guest_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS booking_rooms (
		booking_id VARCHAR(64) NOT NULL,
		room_number INT NOT NULL,
		PRIMARY KEY (booking_id, room_number)
	) ENGINE=InnoDB`,
}

// Migrate creates the tables used by the repositories.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
