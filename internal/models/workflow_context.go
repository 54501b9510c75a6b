package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkflowRunStatus is the lifecycle status of a persisted workflow run.
type WorkflowRunStatus string

const (
	WorkflowRunStatusRunning   WorkflowRunStatus = "running"
	WorkflowRunStatusCompleted WorkflowRunStatus = "completed"
	WorkflowRunStatusFailed    WorkflowRunStatus = "failed"
	WorkflowRunStatusPaused    WorkflowRunStatus = "paused"
)

// IsValidWorkflowRunStatus reports whether status is recognized.
func IsValidWorkflowRunStatus(status WorkflowRunStatus) bool {
	switch status {
	case WorkflowRunStatusRunning, WorkflowRunStatusCompleted, WorkflowRunStatusFailed, WorkflowRunStatusPaused:
		return true
	default:
		return false
	}
}

// WorkflowContextRow is the persisted form of an internal/workflowctx
// WorkflowContext snapshot. The in-memory WorkflowContext value is
// immutable and transformed by copy; this row is what ContextPersistence
// actually reads and writes, with ContextData holding the full serialized
// snapshot as JSON and Version incrementing on every save.
type WorkflowContextRow struct {
	ID           uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkflowID   uuid.UUID         `gorm:"type:uuid;uniqueIndex:idx_workflow_context_version" json:"workflow_id"`
	EpicNum      int               `gorm:"not null;index:idx_workflow_context_epic_story" json:"epic_num"`
	StoryNum     *int              `gorm:"index:idx_workflow_context_epic_story" json:"story_num,omitempty"`
	Feature      string            `gorm:"index" json:"feature"`
	WorkflowName string            `json:"workflow_name"`
	CurrentPhase string            `json:"current_phase"`
	Status       WorkflowRunStatus `gorm:"not null;index" json:"status"`
	ContextData  string            `gorm:"type:text;not null" json:"context_data"`
	Version      int               `gorm:"not null;uniqueIndex:idx_workflow_context_version" json:"version"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TableName returns the table name for WorkflowContextRow.
func (WorkflowContextRow) TableName() string {
	return "workflow_context"
}

// BeforeCreate stamps timestamps and validates the run status.
func (w *WorkflowContextRow) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	if w.Version == 0 {
		w.Version = 1
	}
	return w.validate()
}

// BeforeUpdate re-validates on every update.
func (w *WorkflowContextRow) BeforeUpdate(tx *gorm.DB) error {
	w.UpdatedAt = time.Now().UTC()
	return w.validate()
}

func (w *WorkflowContextRow) validate() error {
	if !IsValidWorkflowRunStatus(w.Status) {
		return &DomainValidationError{Field: "status", Reason: "unrecognized workflow run status"}
	}
	return nil
}
