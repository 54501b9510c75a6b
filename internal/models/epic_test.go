package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpic_ProgressPercentage(t *testing.T) {
	e := &Epic{EpicNum: 1, Title: "Auth", TotalStories: 2, CompletedStories: 1}
	require.NoError(t, e.BeforeCreate(nil))
	assert.Equal(t, 50, e.ProgressPercentage)

	e.TotalStories = 0
	e.CompletedStories = 0
	require.NoError(t, e.BeforeUpdate(nil))
	assert.Equal(t, 0, e.ProgressPercentage)
}

func TestEpic_BeforeCreate_RejectsCompletedExceedsTotal(t *testing.T) {
	e := &Epic{EpicNum: 1, Title: "Auth", TotalStories: 1, CompletedStories: 2}
	err := e.BeforeCreate(nil)
	require.Error(t, err)
	var domainErr *DomainValidationError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "completed_stories", domainErr.Field)
}

func TestEpic_BeforeCreate_RejectsInvalidEpicNum(t *testing.T) {
	e := &Epic{EpicNum: 0, Title: "Auth"}
	err := e.BeforeCreate(nil)
	require.Error(t, err)
}

func TestIsValidEpicStatus(t *testing.T) {
	assert.True(t, IsValidEpicStatus(EpicStatusPlanning))
	assert.True(t, IsValidEpicStatus(EpicStatusCompleted))
	assert.False(t, IsValidEpicStatus("bogus"))
}
