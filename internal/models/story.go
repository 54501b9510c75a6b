package models

import (
	"time"

	"gorm.io/gorm"
)

// StoryStatus is the lifecycle status of a Story.
type StoryStatus string

const (
	StoryStatusPending    StoryStatus = "PENDING"
	StoryStatusInProgress StoryStatus = "IN_PROGRESS"
	StoryStatusBlocked    StoryStatus = "BLOCKED"
	StoryStatusTesting    StoryStatus = "TESTING"
	StoryStatusReview     StoryStatus = "REVIEW"
	StoryStatusCompleted  StoryStatus = "COMPLETED"
)

// IsValidStoryStatus reports whether status is a recognized Story status.
func IsValidStoryStatus(status StoryStatus) bool {
	switch status {
	case StoryStatusPending, StoryStatusInProgress, StoryStatusBlocked,
		StoryStatusTesting, StoryStatusReview, StoryStatusCompleted:
		return true
	default:
		return false
	}
}

// StoryPriority is the MoSCoW-style priority band of a story. Action
// items use their own ActionItemPriority type.
type StoryPriority string

const (
	PriorityP0 StoryPriority = "P0"
	PriorityP1 StoryPriority = "P1"
	PriorityP2 StoryPriority = "P2"
	PriorityP3 StoryPriority = "P3"
)

// IsValidStoryPriority reports whether priority is a recognized band.
func IsValidStoryPriority(priority StoryPriority) bool {
	switch priority {
	case PriorityP0, PriorityP1, PriorityP2, PriorityP3:
		return true
	default:
		return false
	}
}

// Story is keyed by the composite (EpicNum, StoryNum) the domain actually
// addresses it by ("story 1.2"), with a surrogate ID for joins.
type Story struct {
	ID            uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	EpicNum       int           `gorm:"not null;uniqueIndex:idx_story_epic_num" json:"epic_num"`
	StoryNum      int           `gorm:"not null;uniqueIndex:idx_story_epic_num" json:"story_num"`
	Title         string        `gorm:"not null" json:"title"`
	Status        StoryStatus   `gorm:"not null;default:PENDING" json:"status"`
	Assignee      *string       `json:"assignee,omitempty"`
	Priority      StoryPriority `gorm:"not null;default:P2" json:"priority"`
	EstimateHours *float64      `json:"estimate_hours,omitempty"`
	ActualHours   *float64      `json:"actual_hours,omitempty"`
	BlockedReason *string       `json:"blocked_reason,omitempty"`
	Metadata      JSONMap       `gorm:"type:text" json:"metadata"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TableName returns the table name for Story.
func (Story) TableName() string {
	return "story_state"
}

// BeforeCreate stamps timestamps, defaults priority, and validates invariants.
func (s *Story) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = StoryStatusPending
	}
	if s.Priority == "" {
		s.Priority = PriorityP2
	}
	return s.validate()
}

// BeforeUpdate re-validates on every update.
func (s *Story) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = time.Now().UTC()
	return s.validate()
}

func (s *Story) validate() error {
	if s.EpicNum < 1 {
		return &DomainValidationError{Field: "epic_num", Reason: "must be >= 1"}
	}
	if s.StoryNum < 1 {
		return &DomainValidationError{Field: "story_num", Reason: "must be >= 1"}
	}
	if !IsValidStoryStatus(s.Status) {
		return &DomainValidationError{Field: "status", Reason: "unrecognized story status"}
	}
	if !IsValidStoryPriority(s.Priority) {
		return &DomainValidationError{Field: "priority", Reason: "unrecognized priority band"}
	}
	if s.Status == StoryStatusBlocked && (s.BlockedReason == nil || *s.BlockedReason == "") {
		return &DomainValidationError{Field: "blocked_reason", Reason: "required when status is BLOCKED"}
	}
	return nil
}
