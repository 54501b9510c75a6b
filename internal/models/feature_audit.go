package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditOperation names the kind of mutation a FeatureAudit row records.
type AuditOperation string

const (
	AuditOperationInsert AuditOperation = "INSERT"
	AuditOperationUpdate AuditOperation = "UPDATE"
	AuditOperationDelete AuditOperation = "DELETE"
)

// FeatureAudit is an append-only row written on every INSERT/UPDATE/DELETE
// against Feature, holding before/after JSON snapshots. A Feature's
// deletion cascades to an audit row, never to epics/stories — those
// reference a feature by name only, by design (spec.md §3 Ownership).
type FeatureAudit struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	FeatureID uuid.UUID      `gorm:"type:uuid;index;not null" json:"feature_id"`
	Operation AuditOperation `gorm:"not null" json:"operation"`
	OldValue  *string        `gorm:"type:text" json:"old_value,omitempty"`
	NewValue  *string        `gorm:"type:text" json:"new_value,omitempty"`
	ChangedAt time.Time      `gorm:"index" json:"changed_at"`
	ChangedBy *string        `json:"changed_by,omitempty"`
}

// TableName returns the table name for FeatureAudit.
func (FeatureAudit) TableName() string {
	return "features_audit"
}
