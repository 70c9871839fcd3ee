package database

import "errors"

var (
	// ErrNoPath is returned by Open when no database path is configured.
	ErrNoPath = errors.New("database: path is required")

	// ErrBadMigrationName is returned when a migration file does not follow
	// the YYYYMMDD_HHMMSS_description.up.sql naming scheme.
	ErrBadMigrationName = errors.New("database: invalid migration filename")
)
