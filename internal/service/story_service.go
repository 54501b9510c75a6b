package service

import (
	"errors"
	"fmt"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/store"
)

// StoryService exposes CRUD and status-transition operations over Story.
type StoryService struct {
	repo *store.StoryRepository
}

// NewStoryService constructs a StoryService over repo.
func NewStoryService(repo *store.StoryRepository) *StoryService {
	return &StoryService{repo: repo}
}

// CreateStoryRequest is the input to Create.
type CreateStoryRequest struct {
	EpicNum       int
	StoryNum      int
	Title         string
	Assignee      *string
	Priority      models.StoryPriority
	EstimateHours *float64
	Metadata      models.JSONMap
}

// Create validates and inserts a new Story.
func (s *StoryService) Create(req CreateStoryRequest) (*models.Story, error) {
	if _, err := s.repo.GetByEpicAndStory(req.EpicNum, req.StoryNum); err == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	story := &models.Story{
		EpicNum:       req.EpicNum,
		StoryNum:      req.StoryNum,
		Title:         req.Title,
		Assignee:      req.Assignee,
		Priority:      req.Priority,
		EstimateHours: req.EstimateHours,
		Metadata:      req.Metadata,
	}

	if err := s.repo.Create(story); err != nil {
		return nil, fmt.Errorf("service: create story: %w", err)
	}

	return story, nil
}

// Get retrieves a Story by its composite key.
func (s *StoryService) Get(epicNum, storyNum int) (*models.Story, error) {
	story, err := s.repo.GetByEpicAndStory(epicNum, storyNum)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return story, err
}

// ListByEpic returns every story under an epic, ordered by story number.
func (s *StoryService) ListByEpic(epicNum int) ([]models.Story, error) {
	return s.repo.ListByEpic(epicNum)
}

// ListByStatus returns every story in the given status.
func (s *StoryService) ListByStatus(status models.StoryStatus) ([]models.Story, error) {
	return s.repo.ListByStatus(status)
}

// ListAll returns every story ordered by epic and story number.
func (s *StoryService) ListAll() ([]models.Story, error) {
	return s.repo.ListAll()
}

// Delete removes a Story by its composite key.
func (s *StoryService) Delete(epicNum, storyNum int) error {
	if err := s.repo.DeleteByEpicAndStory(epicNum, storyNum); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: delete story: %w", err)
	}
	return nil
}

var storyTransitions = map[models.StoryStatus][]models.StoryStatus{
	models.StoryStatusPending:    {models.StoryStatusInProgress, models.StoryStatusBlocked},
	models.StoryStatusInProgress: {models.StoryStatusBlocked, models.StoryStatusTesting, models.StoryStatusReview, models.StoryStatusCompleted},
	models.StoryStatusBlocked:    {models.StoryStatusInProgress},
	models.StoryStatusTesting:    {models.StoryStatusReview, models.StoryStatusInProgress, models.StoryStatusCompleted},
	models.StoryStatusReview:     {models.StoryStatusCompleted, models.StoryStatusInProgress},
	models.StoryStatusCompleted:  {},
}

func isAllowedStoryTransition(from, to models.StoryStatus) bool {
	for _, candidate := range storyTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// TransitionRequest carries the optional fields a transition may set
// alongside the new status (e.g. blockedReason when moving to BLOCKED).
type TransitionRequest struct {
	NewStatus     models.StoryStatus
	BlockedReason *string
}

// Transition validates the requested status change against the allowed
// transition table and applies it.
func (s *StoryService) Transition(epicNum, storyNum int, req TransitionRequest) (*models.Story, error) {
	story, err := s.Get(epicNum, storyNum)
	if err != nil {
		return nil, err
	}

	if !isAllowedStoryTransition(story.Status, req.NewStatus) {
		return nil, ErrInvalidTransition
	}

	story.Status = req.NewStatus
	if req.NewStatus == models.StoryStatusBlocked {
		story.BlockedReason = req.BlockedReason
	} else {
		story.BlockedReason = nil
	}

	if err := s.repo.Update(story); err != nil {
		return nil, fmt.Errorf("service: transition story: %w", err)
	}

	return story, nil
}

// Complete is a specialization of Transition that also records actualHours.
func (s *StoryService) Complete(epicNum, storyNum int, actualHours *float64) (*models.Story, error) {
	story, err := s.Get(epicNum, storyNum)
	if err != nil {
		return nil, err
	}

	if !isAllowedStoryTransition(story.Status, models.StoryStatusCompleted) {
		return nil, ErrInvalidTransition
	}

	story.Status = models.StoryStatusCompleted
	story.BlockedReason = nil
	story.ActualHours = actualHours

	if err := s.repo.Update(story); err != nil {
		return nil, fmt.Errorf("service: complete story: %w", err)
	}

	return story, nil
}
