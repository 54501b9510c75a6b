package models

import (
	"time"

	"github.com/google/uuid"
)

// documentTypeRank orders document types for ContextLineage sorting:
// prd < architecture < epic < story < code < test < doc < other.
var documentTypeRank = map[string]int{
	"prd":          0,
	"architecture": 1,
	"epic":         2,
	"story":        3,
	"code":         4,
	"test":         5,
	"doc":          6,
	"other":        7,
}

// DocumentTypeRank returns the hierarchy position of docType, defaulting
// to the "other" rank for unrecognized values so lineage queries never
// fail on an unexpected document type.
func DocumentTypeRank(docType string) int {
	if rank, ok := documentTypeRank[docType]; ok {
		return rank
	}
	return documentTypeRank["other"]
}

// LineageRecord is an append-only row recording richer attribution than
// ContextUsageRecord: which document version informed which artifact,
// under which workflow run.
type LineageRecord struct {
	ID              uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	ArtifactType    ArtifactType `gorm:"not null;index" json:"artifact_type"`
	ArtifactID      string       `gorm:"not null;index" json:"artifact_id"`
	DocumentID      *string      `json:"document_id,omitempty"`
	DocumentPath    *string      `json:"document_path,omitempty"`
	DocumentType    *string      `json:"document_type,omitempty"`
	DocumentVersion string       `gorm:"not null" json:"document_version"`
	WorkflowID      *uuid.UUID   `gorm:"type:uuid" json:"workflow_id,omitempty"`
	WorkflowName    *string      `json:"workflow_name,omitempty"`
	EpicNum         *int         `json:"epic_num,omitempty"`
	Story           *string      `json:"story,omitempty"`
	AccessedAt      time.Time    `gorm:"index" json:"accessed_at"`
}

// TableName returns the table name for LineageRecord.
func (LineageRecord) TableName() string {
	return "lineage_records"
}
