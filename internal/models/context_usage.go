package models

import (
	"time"

	"github.com/google/uuid"
)

// ArtifactType names the kind of thing a document was used to produce,
// per the ContextUsageTracker/LineageTracker contract.
type ArtifactType string

const (
	ArtifactTypeEpic  ArtifactType = "epic"
	ArtifactTypeStory ArtifactType = "story"
	ArtifactTypeTask  ArtifactType = "task"
	ArtifactTypeCode  ArtifactType = "code"
	ArtifactTypeTest  ArtifactType = "test"
	ArtifactTypeDoc   ArtifactType = "doc"
	ArtifactTypeOther ArtifactType = "other"
)

// IsValidArtifactType reports whether t is recognized.
func IsValidArtifactType(t ArtifactType) bool {
	switch t {
	case ArtifactTypeEpic, ArtifactTypeStory, ArtifactTypeTask, ArtifactTypeCode,
		ArtifactTypeTest, ArtifactTypeDoc, ArtifactTypeOther:
		return true
	default:
		return false
	}
}

// ContextUsageRecord is an append-only row recording one document access
// by the AgentContextFacade, whether served from cache or freshly loaded.
type ContextUsageRecord struct {
	ID              uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	ArtifactType    ArtifactType `gorm:"not null;index" json:"artifact_type"`
	ArtifactID      string       `gorm:"not null;index" json:"artifact_id"`
	DocumentID      *string      `json:"document_id,omitempty"`
	DocumentPath    *string      `json:"document_path,omitempty"`
	DocumentType    *string      `json:"document_type,omitempty"`
	DocumentVersion string       `gorm:"not null" json:"document_version"`
	WorkflowID      *uuid.UUID   `gorm:"type:uuid" json:"workflow_id,omitempty"`
	EpicNum         *int         `json:"epic_num,omitempty"`
	Story           *string      `json:"story,omitempty"`
	AccessedAt      time.Time    `gorm:"index" json:"accessed_at"`
	CreatedAt       time.Time    `json:"created_at"`
	CacheHit        bool         `json:"cache_hit"`
}

// TableName returns the table name for ContextUsageRecord.
func (ContextUsageRecord) TableName() string {
	return "context_usage"
}
