package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStory_BlockedRequiresReason(t *testing.T) {
	s := &Story{EpicNum: 1, StoryNum: 1, Title: "Login", Status: StoryStatusBlocked}
	err := s.BeforeCreate(nil)
	require.Error(t, err)
	var domainErr *DomainValidationError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "blocked_reason", domainErr.Field)

	reason := "waiting on design review"
	s.BlockedReason = &reason
	require.NoError(t, s.BeforeCreate(nil))
}

func TestStory_BeforeCreate_Defaults(t *testing.T) {
	s := &Story{EpicNum: 1, StoryNum: 1, Title: "Login"}
	require.NoError(t, s.BeforeCreate(nil))

	assert.Equal(t, StoryStatusPending, s.Status)
	assert.Equal(t, PriorityP2, s.Priority)
	assert.False(t, s.CreatedAt.IsZero())
}

func TestStory_BeforeCreate_RejectsInvalidKey(t *testing.T) {
	s := &Story{EpicNum: 0, StoryNum: 1, Title: "Login"}
	require.Error(t, s.BeforeCreate(nil))

	s2 := &Story{EpicNum: 1, StoryNum: 0, Title: "Login"}
	require.Error(t, s2.BeforeCreate(nil))
}

func TestIsValidStoryPriority(t *testing.T) {
	assert.True(t, IsValidStoryPriority(PriorityP0))
	assert.False(t, IsValidStoryPriority("P9"))
}
