package coordinator

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/service"
	"github.com/gaoforge/dev-engine/internal/store"
)

func newTestCoordinator(t *testing.T) *StateCoordinator {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	return New(
		service.NewFeatureService(store.NewFeatureRepository(db), store.NewFeatureAuditRepository(db)),
		service.NewEpicService(store.NewEpicRepository(db)),
		service.NewStoryService(store.NewStoryRepository(db)),
		service.NewActionItemService(store.NewActionItemRepository(db)),
		service.NewCeremonyService(store.NewCeremonyRepository(db)),
		service.NewLearningService(store.NewLearningRepository(db)),
	)
}

func TestStateCoordinator_CreateStory_AutoUpdatesEpicTotal(t *testing.T) {
	c := newTestCoordinator(t)

	_, err := c.Epics.Create(service.CreateEpicRequest{EpicNum: 1, Title: "Auth"})
	require.NoError(t, err)

	_, err = c.CreateStory(CreateStoryRequest{
		CreateStoryRequest: service.CreateStoryRequest{EpicNum: 1, StoryNum: 1, Title: "Login", Priority: models.PriorityP1},
		AutoUpdateEpic:     true,
	})
	require.NoError(t, err)

	epic, err := c.Epics.Get(1)
	require.NoError(t, err)
	require.Equal(t, 1, epic.TotalStories)
}

func TestStateCoordinator_CompleteStory_TransitionsPlanningToInProgress(t *testing.T) {
	c := newTestCoordinator(t)

	_, err := c.Epics.Create(service.CreateEpicRequest{EpicNum: 2, Title: "Billing"})
	require.NoError(t, err)

	for _, storyNum := range []int{1, 2} {
		_, err := c.CreateStory(CreateStoryRequest{
			CreateStoryRequest: service.CreateStoryRequest{EpicNum: 2, StoryNum: storyNum, Title: "story", Priority: models.PriorityP2},
			AutoUpdateEpic:     true,
		})
		require.NoError(t, err)
	}

	_, err = c.Stories.Transition(2, 1, service.TransitionRequest{NewStatus: models.StoryStatusInProgress})
	require.NoError(t, err)

	hours := 2.0
	_, err = c.CompleteStory(2, 1, &hours, true)
	require.NoError(t, err)

	epic, err := c.Epics.Get(2)
	require.NoError(t, err)
	require.Equal(t, models.EpicStatusInProgress, epic.Status)
	require.Equal(t, 1, epic.CompletedStories)
}

func TestStateCoordinator_CompleteStory_TransitionsToCompletedWhenAllDone(t *testing.T) {
	c := newTestCoordinator(t)

	_, err := c.Epics.Create(service.CreateEpicRequest{EpicNum: 3, Title: "Search"})
	require.NoError(t, err)

	_, err = c.CreateStory(CreateStoryRequest{
		CreateStoryRequest: service.CreateStoryRequest{EpicNum: 3, StoryNum: 1, Title: "Index", Priority: models.PriorityP1},
		AutoUpdateEpic:     true,
	})
	require.NoError(t, err)

	_, err = c.Stories.Transition(3, 1, service.TransitionRequest{NewStatus: models.StoryStatusInProgress})
	require.NoError(t, err)

	_, err = c.CompleteStory(3, 1, nil, true)
	require.NoError(t, err)

	epic, err := c.Epics.Get(3)
	require.NoError(t, err)
	require.Equal(t, models.EpicStatusCompleted, epic.Status)
	require.Equal(t, 1, epic.CompletedStories)
	require.Equal(t, 1, epic.TotalStories)
}

func TestStateCoordinator_GetEpicState(t *testing.T) {
	c := newTestCoordinator(t)

	_, err := c.Epics.Create(service.CreateEpicRequest{EpicNum: 4, Title: "Reporting"})
	require.NoError(t, err)
	_, err = c.Stories.Create(service.CreateStoryRequest{EpicNum: 4, StoryNum: 1, Title: "Export CSV", Priority: models.PriorityP2})
	require.NoError(t, err)

	state, err := c.GetEpicState(4)
	require.NoError(t, err)
	require.Equal(t, "Reporting", state.Epic.Title)
	require.Len(t, state.Stories, 1)
}

func TestStateCoordinator_GetFeatureState(t *testing.T) {
	c := newTestCoordinator(t)

	feature, err := c.Features.Create(service.CreateFeatureRequest{
		Name:       "payments",
		Scope:      models.FeatureScopeFeature,
		ScaleLevel: models.ScaleLevelMedium,
	})
	require.NoError(t, err)

	featureName := feature.Name
	_, err = c.Epics.Create(service.CreateEpicRequest{EpicNum: 5, Title: "Checkout", Feature: &featureName})
	require.NoError(t, err)
	_, err = c.Stories.Create(service.CreateStoryRequest{EpicNum: 5, StoryNum: 1, Title: "Cart totals", Priority: models.PriorityP1})
	require.NoError(t, err)

	state, err := c.GetFeatureState("payments")
	require.NoError(t, err)
	require.Equal(t, "payments", state.Feature.Name)
	require.Len(t, state.Epics, 1)
	require.Len(t, state.Epics[0].Stories, 1)
}

func TestStateCoordinator_PromoteActionItem(t *testing.T) {
	c := newTestCoordinator(t)

	_, err := c.Epics.Create(service.CreateEpicRequest{EpicNum: 6, Title: "Incidents"})
	require.NoError(t, err)

	item, err := c.Actions.Create(service.CreateActionItemRequest{
		Title:    "Fix flaky deploy",
		Priority: models.ActionItemPriorityCritical,
	})
	require.NoError(t, err)

	story, err := c.PromoteActionItem(item.ID, 6, 1, false)
	require.NoError(t, err)
	require.Equal(t, "Fix flaky deploy", story.Title)
}
