package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeatureScope distinguishes a minimal viable slice from a full feature.
type FeatureScope string

const (
	FeatureScopeMVP     FeatureScope = "MVP"
	FeatureScopeFeature FeatureScope = "FEATURE"
)

// FeatureStatus is the lifecycle status of a Feature.
type FeatureStatus string

const (
	FeatureStatusPlanning FeatureStatus = "PLANNING"
	FeatureStatusActive   FeatureStatus = "ACTIVE"
	FeatureStatusComplete FeatureStatus = "COMPLETE"
	FeatureStatusArchived FeatureStatus = "ARCHIVED"
)

// ScaleLevel classifies how elaborate a feature's document structure must
// be, per the DocumentStructureManager table.
type ScaleLevel int

const (
	ScaleLevelChore      ScaleLevel = 0
	ScaleLevelBug        ScaleLevel = 1
	ScaleLevelSmall      ScaleLevel = 2
	ScaleLevelMedium     ScaleLevel = 3
	ScaleLevelGreenfield ScaleLevel = 4
)

// IsValidScaleLevel reports whether level is within the closed range [0,4].
func IsValidScaleLevel(level ScaleLevel) bool {
	return level >= ScaleLevelChore && level <= ScaleLevelGreenfield
}

// Feature is the top-level unit of product scope; it owns epics by name
// reference only (epics never hold a foreign key back to Feature, by
// design — see FeatureAudit's cascade note).
type Feature struct {
	ID          uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	Name        string        `gorm:"uniqueIndex;not null" json:"name"`
	Scope       FeatureScope  `gorm:"not null" json:"scope"`
	Status      FeatureStatus `gorm:"not null;default:PLANNING" json:"status"`
	ScaleLevel  ScaleLevel    `gorm:"not null" json:"scale_level"`
	Description *string       `json:"description,omitempty"`
	Owner       *string       `json:"owner,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Metadata    JSONMap       `gorm:"type:text" json:"metadata"`
}

// TableName returns the table name for Feature.
func (Feature) TableName() string {
	return "features"
}

// BeforeCreate assigns an ID and validates scale level / status invariants.
func (f *Feature) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = FeatureStatusPlanning
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	return f.validate()
}

// BeforeUpdate re-validates and enforces the completedAt/status invariant.
func (f *Feature) BeforeUpdate(tx *gorm.DB) error {
	if f.Status == FeatureStatusComplete && f.CompletedAt == nil {
		now := time.Now().UTC()
		f.CompletedAt = &now
	}
	if f.Status != FeatureStatusComplete {
		f.CompletedAt = nil
	}
	return f.validate()
}

func (f *Feature) validate() error {
	if !IsValidScaleLevel(f.ScaleLevel) {
		return &DomainValidationError{Field: "scale_level", Reason: "must be between 0 and 4"}
	}
	if f.Name == "" {
		return &DomainValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}
