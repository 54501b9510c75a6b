// Package coordinator provides a facade over the entity services,
// composing multi-service operations that must keep a story and its
// parent epic consistent in a single call.
package coordinator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/service"
)

// StateCoordinator composes the entity services into higher-level
// operations that keep epic progress counters in sync with story
// creation and completion.
type StateCoordinator struct {
	Features *service.FeatureService
	Epics    *service.EpicService
	Stories  *service.StoryService
	Actions  *service.ActionItemService
	Ceremony *service.CeremonyService
	Learning *service.LearningService
}

// New constructs a StateCoordinator wrapping the given entity services.
func New(
	features *service.FeatureService,
	epics *service.EpicService,
	stories *service.StoryService,
	actions *service.ActionItemService,
	ceremony *service.CeremonyService,
	learning *service.LearningService,
) *StateCoordinator {
	return &StateCoordinator{
		Features: features,
		Epics:    epics,
		Stories:  stories,
		Actions:  actions,
		Ceremony: ceremony,
		Learning: learning,
	}
}

// EpicState bundles an epic with every story registered under it.
type EpicState struct {
	Epic    *models.Epic
	Stories []models.Story
}

// GetEpicState returns the epic and its full story list in one call.
func (c *StateCoordinator) GetEpicState(epicNum int) (*EpicState, error) {
	epic, err := c.Epics.Get(epicNum)
	if err != nil {
		return nil, err
	}

	stories, err := c.Stories.ListByEpic(epicNum)
	if err != nil {
		return nil, err
	}

	return &EpicState{Epic: epic, Stories: stories}, nil
}

// EpicSummary is a per-epic rollup used by GetFeatureState.
type EpicSummary struct {
	Epic    models.Epic
	Stories []models.Story
}

// FeatureState bundles a feature with every epic tagged to it and
// each epic's story list.
type FeatureState struct {
	Feature *models.Feature
	Epics   []EpicSummary
}

// GetFeatureState returns the feature plus every epic (and its
// stories) tagged with the feature's name.
func (c *StateCoordinator) GetFeatureState(name string) (*FeatureState, error) {
	feature, err := c.Features.GetByName(name)
	if err != nil {
		return nil, err
	}

	epics, err := c.Epics.ListByFeature(name)
	if err != nil {
		return nil, err
	}

	summaries := make([]EpicSummary, 0, len(epics))
	for _, epic := range epics {
		stories, err := c.Stories.ListByEpic(epic.EpicNum)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, EpicSummary{Epic: epic, Stories: stories})
	}

	return &FeatureState{Feature: feature, Epics: summaries}, nil
}

// CreateStoryRequest carries the story fields plus the auto-update flag.
type CreateStoryRequest struct {
	service.CreateStoryRequest
	AutoUpdateEpic bool
}

// CreateStory creates a story and, when AutoUpdateEpic is set,
// increments the parent epic's TotalStories count.
func (c *StateCoordinator) CreateStory(req CreateStoryRequest) (*models.Story, error) {
	story, err := c.Stories.Create(req.CreateStoryRequest)
	if err != nil {
		return nil, err
	}

	if req.AutoUpdateEpic {
		epic, err := c.Epics.Get(req.EpicNum)
		if err != nil {
			return nil, fmt.Errorf("coordinator: create story: %w", err)
		}

		newTotal := epic.TotalStories + 1
		if _, err := c.Epics.UpdateProgress(req.EpicNum, service.UpdateProgressRequest{
			TotalStories: &newTotal,
		}); err != nil {
			return nil, fmt.Errorf("coordinator: increment epic total_stories: %w", err)
		}
	}

	return story, nil
}

// CompleteStory marks a story completed and, when autoUpdateEpic is
// set, increments the parent epic's CompletedStories and applies the
// epic's auto-transition rule: PLANNING moves to IN_PROGRESS on the
// first completion, and any status moves to COMPLETED once
// completedStories reaches totalStories (provided totalStories > 0).
func (c *StateCoordinator) CompleteStory(epicNum, storyNum int, actualHours *float64, autoUpdateEpic bool) (*models.Story, error) {
	story, err := c.Stories.Complete(epicNum, storyNum, actualHours)
	if err != nil {
		return nil, err
	}

	if autoUpdateEpic {
		epic, err := c.Epics.Get(epicNum)
		if err != nil {
			return nil, fmt.Errorf("coordinator: complete story: %w", err)
		}

		newCompleted := epic.CompletedStories + 1
		newStatus := epic.Status
		switch {
		case epic.TotalStories > 0 && newCompleted >= epic.TotalStories:
			newStatus = models.EpicStatusCompleted
		case epic.Status == models.EpicStatusPlanning && newCompleted > 0:
			newStatus = models.EpicStatusInProgress
		}

		if _, err := c.Epics.UpdateProgress(epicNum, service.UpdateProgressRequest{
			CompletedStories: &newCompleted,
			Status:           &newStatus,
		}); err != nil {
			return nil, fmt.Errorf("coordinator: update epic progress: %w", err)
		}
	}

	return story, nil
}

// PromoteActionItem promotes a critical action item into a story,
// delegating to ActionItemService.Promote with this coordinator's
// StoryService.
func (c *StateCoordinator) PromoteActionItem(id uuid.UUID, epicNum, storyNum int, force bool) (*models.Story, error) {
	return c.Actions.Promote(id, epicNum, storyNum, c.Stories, force)
}
