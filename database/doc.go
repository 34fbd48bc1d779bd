// Package database provides the GORM connection used by the SQL credential
// store: driver selection (sqlite or postgres), connection retry, pool
// tuning, a zerolog-backed query logger and a lifecycle Component.
//
//	db := database.NewComponent(cfg.Database, log).
//		WithAutoMigrate(credential.Models()...)
//	registry.Register(db)
//
// Errors from the driver are classified with IsDuplicateError and
// IsConnectionError, and mapped to API errors with FromDatabase.
package database
