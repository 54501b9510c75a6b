package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/store"
)

// ActionItemService exposes CRUD and promotion operations over ActionItem.
type ActionItemService struct {
	repo *store.ActionItemRepository
}

// NewActionItemService constructs an ActionItemService over repo.
func NewActionItemService(repo *store.ActionItemRepository) *ActionItemService {
	return &ActionItemService{repo: repo}
}

// CreateActionItemRequest is the input to Create.
type CreateActionItemRequest struct {
	Title       string
	Description *string
	Priority    models.ActionItemPriority
	EpicNum     *int
	StoryNum    *int
	Assignee    *string
	Metadata    models.JSONMap
}

// Create validates and inserts a new ActionItem.
func (s *ActionItemService) Create(req CreateActionItemRequest) (*models.ActionItem, error) {
	item := &models.ActionItem{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		EpicNum:     req.EpicNum,
		StoryNum:    req.StoryNum,
		Assignee:    req.Assignee,
		Metadata:    req.Metadata,
	}

	if err := s.repo.Create(item); err != nil {
		return nil, fmt.Errorf("service: create action item: %w", err)
	}

	return item, nil
}

// Get retrieves an ActionItem by ID.
func (s *ActionItemService) Get(id uuid.UUID) (*models.ActionItem, error) {
	item, err := s.repo.GetByKey(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return item, err
}

// ListByStatus returns action items in the given status.
func (s *ActionItemService) ListByStatus(status models.ActionItemStatus) ([]models.ActionItem, error) {
	return s.repo.ListByStatus(status)
}

// TransitionStatus validates and applies a status change.
func (s *ActionItemService) TransitionStatus(id uuid.UUID, newStatus models.ActionItemStatus) (*models.ActionItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.Status = newStatus
	if err := s.repo.Update(item); err != nil {
		return nil, fmt.Errorf("service: transition action item: %w", err)
	}

	return item, nil
}

// Promote converts a critical ActionItem into a Story via storyService.
// Only one promotion is allowed per epic unless force is true — force
// bypasses the check for this one call; it does not grant a standing
// exemption for the epic.
func (s *ActionItemService) Promote(id uuid.UUID, epicNum, storyNum int, storySvc *StoryService, force bool) (*models.Story, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if !item.IsCritical() {
		return nil, fmt.Errorf("service: only critical action items may be promoted")
	}

	if !force {
		count, err := s.repo.CountPromotedForEpic(epicNum)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrAlreadyPromoted
		}
	}

	story, err := storySvc.Create(CreateStoryRequest{
		EpicNum:  epicNum,
		StoryNum: storyNum,
		Title:    item.Title,
		Assignee: item.Assignee,
		Priority: models.PriorityP1,
	})
	if err != nil {
		return nil, fmt.Errorf("service: promote action item: %w", err)
	}

	item.PromotedToStoryEpicNum = &epicNum
	if err := s.repo.Update(item); err != nil {
		return nil, fmt.Errorf("service: record promotion: %w", err)
	}

	return story, nil
}
