package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LearningCategory classifies the kind of knowledge a Learning captures.
type LearningCategory string

const (
	LearningCategoryTechnical    LearningCategory = "technical"
	LearningCategoryProcess      LearningCategory = "process"
	LearningCategoryDomain       LearningCategory = "domain"
	LearningCategoryArchitectural LearningCategory = "architectural"
	LearningCategoryTeam         LearningCategory = "team"
)

// IsValidLearningCategory reports whether category is recognized.
func IsValidLearningCategory(category LearningCategory) bool {
	switch category {
	case LearningCategoryTechnical, LearningCategoryProcess, LearningCategoryDomain,
		LearningCategoryArchitectural, LearningCategoryTeam:
		return true
	default:
		return false
	}
}

// Learning is a recorded insight that remains active until superseded by a
// later Learning. A learning is active iff no supersededBy chain
// terminates in it — enforced by LearningService.Supersede, not by a
// database trigger, because the chain walk needs application logic
// (internal/service/learning_service.go).
type Learning struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Topic           string           `gorm:"not null" json:"topic"`
	Category        LearningCategory `gorm:"not null" json:"category"`
	LearningText    string           `gorm:"column:learning;not null" json:"learning"`
	Context         *string          `json:"context,omitempty"`
	SourceType      *string          `json:"source_type,omitempty"`
	RelevanceScore  float64          `gorm:"not null;default:1.0" json:"relevance_score"`
	IsActive        bool             `gorm:"not null;default:true" json:"is_active"`
	SupersededBy    *uuid.UUID       `gorm:"type:uuid" json:"superseded_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// TableName returns the table name for Learning.
func (Learning) TableName() string {
	return "learning_index"
}

// BeforeCreate assigns an ID and validates invariants.
func (l *Learning) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	return l.validate()
}

// BeforeUpdate re-validates on every update.
func (l *Learning) BeforeUpdate(tx *gorm.DB) error {
	l.UpdatedAt = time.Now().UTC()
	return l.validate()
}

func (l *Learning) validate() error {
	if !IsValidLearningCategory(l.Category) {
		return &DomainValidationError{Field: "category", Reason: "unrecognized learning category"}
	}
	if l.RelevanceScore < 0 || l.RelevanceScore > 1 {
		return &DomainValidationError{Field: "relevance_score", Reason: "must be within [0,1]"}
	}
	return nil
}
