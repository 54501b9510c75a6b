package models

import "time"

// MigrationRecord maps to the "migrations" table, the name internal/store
// gives golang-migrate's MigrationsTable in place of the default
// "schema_migrations". golang-migrate itself is the writer, and its rows
// hold only a version and a dirty flag; ID and AppliedAt have no column
// there.
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Version   string    `gorm:"uniqueIndex;not null" json:"version"`
	AppliedAt time.Time `json:"applied_at"`
}

// TableName returns the table name for MigrationRecord.
func (MigrationRecord) TableName() string {
	return "migrations"
}
