// Package database provides SQLite connectivity for devicedash.
//
// The dashboard keeps two small local tables: the recent MQTT message log
// served to the MQTT control page, and the audit trail of write operations
// issued through the backend gateway. Device data itself is owned by the
// backend and never stored here.
//
// This package manages:
//   - Connection setup with WAL mode and busy timeout
//   - Embedded, forward-only schema migrations
//   - Health checks and lifecycle
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
