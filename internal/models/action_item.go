package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActionItemPriority is the urgency band for an ActionItem. It is
// intentionally distinct from StoryPriority (lowercase values, fewer
// bands) because that is the vocabulary spec.md §3 assigns action items.
type ActionItemPriority string

const (
	ActionItemPriorityCritical ActionItemPriority = "critical"
	ActionItemPriorityHigh     ActionItemPriority = "high"
	ActionItemPriorityMedium   ActionItemPriority = "medium"
	ActionItemPriorityLow      ActionItemPriority = "low"
)

// IsValidActionItemPriority reports whether priority is recognized.
func IsValidActionItemPriority(priority ActionItemPriority) bool {
	switch priority {
	case ActionItemPriorityCritical, ActionItemPriorityHigh, ActionItemPriorityMedium, ActionItemPriorityLow:
		return true
	default:
		return false
	}
}

// ActionItemStatus is the lifecycle status of an ActionItem.
type ActionItemStatus string

const (
	ActionItemStatusPending    ActionItemStatus = "pending"
	ActionItemStatusInProgress ActionItemStatus = "in_progress"
	ActionItemStatusCompleted  ActionItemStatus = "completed"
)

// IsValidActionItemStatus reports whether status is recognized.
func IsValidActionItemStatus(status ActionItemStatus) bool {
	switch status {
	case ActionItemStatusPending, ActionItemStatusInProgress, ActionItemStatusCompleted:
		return true
	default:
		return false
	}
}

// ActionItem is a follow-up task, optionally scoped to an epic/story, that
// a "critical" item may be promoted into a Story — at most once per epic
// unless force-promoted (internal/service/action_item_service.go).
type ActionItem struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Title       string             `gorm:"not null" json:"title"`
	Description *string            `json:"description,omitempty"`
	Priority    ActionItemPriority `gorm:"not null" json:"priority"`
	Status      ActionItemStatus   `gorm:"not null;default:pending" json:"status"`
	EpicNum     *int               `json:"epic_num,omitempty"`
	StoryNum    *int               `json:"story_num,omitempty"`
	Assignee    *string            `json:"assignee,omitempty"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Metadata    JSONMap            `gorm:"type:text" json:"metadata"`

	// PromotedToStoryEpicNum records which epic this item was promoted
	// into as a story, so a second non-forced promotion in that epic can
	// be rejected.
	PromotedToStoryEpicNum *int `json:"promoted_to_story_epic_num,omitempty"`
}

// TableName returns the table name for ActionItem.
func (ActionItem) TableName() string {
	return "action_items"
}

// BeforeCreate assigns an ID, stamps timestamps, and validates invariants.
func (a *ActionItem) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = ActionItemStatusPending
	}
	return a.validate()
}

// BeforeUpdate re-validates on every update.
func (a *ActionItem) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now().UTC()
	return a.validate()
}

func (a *ActionItem) validate() error {
	if !IsValidActionItemPriority(a.Priority) {
		return &DomainValidationError{Field: "priority", Reason: "unrecognized action item priority"}
	}
	if !IsValidActionItemStatus(a.Status) {
		return &DomainValidationError{Field: "status", Reason: "unrecognized action item status"}
	}
	return nil
}

// IsCritical reports whether the item is eligible for promotion to a story.
func (a *ActionItem) IsCritical() bool {
	return a.Priority == ActionItemPriorityCritical
}
