// Package models defines the GORM entity schema of the development-
// lifecycle state engine: Feature, Epic, Story, ActionItem, Ceremony,
// Learning, the persisted WorkflowContext row, and the append-only usage
// and lineage trackers.
package models

import (
	"gorm.io/gorm"
)

// AllModels returns every model struct known to the engine, in an order
// safe for AutoMigrate (referenced tables first).
func AllModels() []interface{} {
	return []interface{}{
		&Feature{},
		&FeatureAudit{},
		&Epic{},
		&Story{},
		&ActionItem{},
		&Ceremony{},
		&Learning{},
		&WorkflowContextRow{},
		&ContextUsageRecord{},
		&LineageRecord{},
	}
}

// AutoMigrate runs GORM's schema reconciliation for all models. Production
// schema changes go through internal/store's golang-migrate-driven
// MigrationEngine phase 1; AutoMigrate exists for test fixtures that spin
// up a throwaway in-memory SQLite database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
