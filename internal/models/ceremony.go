package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CeremonyType names the kind of team ceremony a Ceremony row records.
type CeremonyType string

const (
	CeremonyTypeRetrospective CeremonyType = "retrospective"
	CeremonyTypeStandup       CeremonyType = "standup"
	CeremonyTypePlanning      CeremonyType = "planning"
	CeremonyTypeReview        CeremonyType = "review"
)

// Ceremony is a record of a team ceremony, optionally scoped to an
// epic/story, carrying free-text blobs for participants/decisions/
// action items rather than normalized sub-tables — the spec treats these
// as opaque text the engine never interprets.
type Ceremony struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	CeremonyType CeremonyType `gorm:"not null" json:"ceremony_type"`
	Summary      string       `gorm:"not null" json:"summary"`
	Participants *string      `json:"participants,omitempty"`
	Decisions    *string      `json:"decisions,omitempty"`
	ActionItems  *string      `json:"action_items,omitempty"`
	HeldAt       time.Time    `gorm:"not null" json:"held_at"`
	EpicNum      *int         `json:"epic_num,omitempty"`
	StoryNum     *int         `json:"story_num,omitempty"`
}

// TableName returns the table name for Ceremony.
func (Ceremony) TableName() string {
	return "ceremonies"
}

// BeforeCreate assigns an ID if unset.
func (c *Ceremony) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.HeldAt.IsZero() {
		c.HeldAt = time.Now().UTC()
	}
	return nil
}
