package workflowctx

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNew_SetsDefaults(t *testing.T) {
	id := uuid.New()
	storyNum := 3
	c := New(id, 2, &storyNum, "search", "implement-story")

	require.Equal(t, "initialization", c.CurrentPhase)
	require.Equal(t, StatusRunning, c.Status)
	require.Equal(t, "2.3", c.StoryID())
	require.Empty(t, c.PhaseHistory)
	require.NotNil(t, c.Decisions)
}

func TestStoryID_EpicOnly(t *testing.T) {
	c := New(uuid.New(), 5, nil, "billing", "plan-epic")
	require.Equal(t, "5", c.StoryID())
}

func TestAddDecision_DoesNotMutateOriginal(t *testing.T) {
	c := New(uuid.New(), 1, nil, "f", "w")
	next := c.AddDecision("approach", "event-sourcing")

	require.Empty(t, c.Decisions)
	require.Equal(t, "event-sourcing", next.Decisions["approach"])
}

func TestAddArtifact_DoesNotMutateOriginal(t *testing.T) {
	c := New(uuid.New(), 1, nil, "f", "w")
	next := c.AddArtifact("docs/prd.md")

	require.Empty(t, c.Artifacts)
	require.Equal(t, []string{"docs/prd.md"}, next.Artifacts)
}

func TestAddError_DoesNotMutateOriginal(t *testing.T) {
	c := New(uuid.New(), 1, nil, "f", "w")
	next := c.AddError("validation failed")

	require.Empty(t, c.Errors)
	require.Equal(t, []string{"validation failed"}, next.Errors)
}

func TestTransitionPhase_RecordsHistoryWithoutMutatingOriginal(t *testing.T) {
	c := New(uuid.New(), 1, nil, "f", "w")
	afterFirst := c.TransitionPhase("drafting")

	require.Empty(t, c.PhaseHistory)
	require.Equal(t, "drafting", afterFirst.CurrentPhase)
	require.Len(t, afterFirst.PhaseHistory, 1)
	require.Equal(t, "initialization", afterFirst.PhaseHistory[0].Phase)
	require.Nil(t, afterFirst.PhaseHistory[0].Duration)

	afterSecond := afterFirst.TransitionPhase("review")
	require.Len(t, afterSecond.PhaseHistory, 2)
	require.Equal(t, "drafting", afterSecond.PhaseHistory[1].Phase)
	require.NotNil(t, afterSecond.PhaseHistory[1].Duration)
}

func TestWithStatus_DoesNotMutateOriginal(t *testing.T) {
	c := New(uuid.New(), 1, nil, "f", "w")
	done := c.WithStatus(StatusCompleted)

	require.Equal(t, StatusRunning, c.Status)
	require.Equal(t, StatusCompleted, done.Status)
}

func TestTransformers_ComposeIndependently(t *testing.T) {
	base := New(uuid.New(), 4, nil, "f", "w")

	branchA := base.AddDecision("x", 1)
	branchB := base.AddDecision("y", 2)

	require.NotContains(t, branchA.Decisions, "y")
	require.NotContains(t, branchB.Decisions, "x")
}
