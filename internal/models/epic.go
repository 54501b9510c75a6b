package models

import (
	"time"

	"gorm.io/gorm"
)

// EpicStatus is the lifecycle status of an Epic.
type EpicStatus string

const (
	EpicStatusPlanning   EpicStatus = "PLANNING"
	EpicStatusInProgress EpicStatus = "IN_PROGRESS"
	EpicStatusCompleted  EpicStatus = "COMPLETED"
)

// IsValidEpicStatus reports whether status is a recognized Epic status.
func IsValidEpicStatus(status EpicStatus) bool {
	switch status {
	case EpicStatusPlanning, EpicStatusInProgress, EpicStatusCompleted:
		return true
	default:
		return false
	}
}

// Epic is identified by a human-assigned sequential number, not a
// generated UUID — the domain addresses epics as "epic 3", never by an
// opaque identifier.
type Epic struct {
	EpicNum           int        `gorm:"primaryKey;autoIncrement:false" json:"epic_num"`
	Title             string     `gorm:"not null" json:"title"`
	Status            EpicStatus `gorm:"not null;default:PLANNING" json:"status"`
	TotalStories      int        `gorm:"not null;default:0" json:"total_stories"`
	CompletedStories  int        `gorm:"not null;default:0" json:"completed_stories"`
	ProgressPercentage int       `gorm:"not null;default:0" json:"progress_percentage"`
	Feature           *string    `json:"feature,omitempty"`
	Metadata          JSONMap    `gorm:"type:text" json:"metadata"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName returns the table name for Epic.
func (Epic) TableName() string {
	return "epic_state"
}

// BeforeCreate validates invariants and stamps timestamps.
func (e *Epic) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	if e.Status == "" {
		e.Status = EpicStatusPlanning
	}
	e.recomputeProgress()
	return e.validate()
}

// BeforeUpdate re-validates and recomputes the derived progress percentage.
func (e *Epic) BeforeUpdate(tx *gorm.DB) error {
	e.UpdatedAt = time.Now().UTC()
	e.recomputeProgress()
	return e.validate()
}

func (e *Epic) recomputeProgress() {
	if e.TotalStories <= 0 {
		e.ProgressPercentage = 0
		return
	}
	e.ProgressPercentage = (100 * e.CompletedStories) / e.TotalStories
}

func (e *Epic) validate() error {
	if e.EpicNum < 1 {
		return &DomainValidationError{Field: "epic_num", Reason: "must be >= 1"}
	}
	if !IsValidEpicStatus(e.Status) {
		return &DomainValidationError{Field: "status", Reason: "unrecognized epic status"}
	}
	if e.CompletedStories > e.TotalStories {
		return &DomainValidationError{Field: "completed_stories", Reason: "must not exceed total_stories"}
	}
	return nil
}
