package service

import (
	"errors"
	"fmt"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/store"
)

// EpicService exposes CRUD and progress operations over Epic.
type EpicService struct {
	repo *store.EpicRepository
}

// NewEpicService constructs an EpicService over repo.
func NewEpicService(repo *store.EpicRepository) *EpicService {
	return &EpicService{repo: repo}
}

// CreateEpicRequest is the input to Create.
type CreateEpicRequest struct {
	EpicNum  int
	Title    string
	Feature  *string
	Metadata models.JSONMap
}

// Create validates and inserts a new Epic.
func (s *EpicService) Create(req CreateEpicRequest) (*models.Epic, error) {
	if _, err := s.repo.GetByKey(req.EpicNum); err == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	epic := &models.Epic{
		EpicNum:  req.EpicNum,
		Title:    req.Title,
		Feature:  req.Feature,
		Metadata: req.Metadata,
	}

	if err := s.repo.Create(epic); err != nil {
		return nil, fmt.Errorf("service: create epic: %w", err)
	}

	return epic, nil
}

// Get retrieves an Epic by number.
func (s *EpicService) Get(epicNum int) (*models.Epic, error) {
	epic, err := s.repo.GetByKey(epicNum)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return epic, err
}

// ListByFeature returns every epic tagged with the given feature name.
func (s *EpicService) ListByFeature(feature string) ([]models.Epic, error) {
	return s.repo.ListByFeature(feature)
}

// ListAll returns every epic ordered by epic number.
func (s *EpicService) ListAll() ([]models.Epic, error) {
	return s.repo.ListAll()
}

// UpdateProgressRequest carries the optional fields updateProgress may change.
type UpdateProgressRequest struct {
	TotalStories     *int
	CompletedStories *int
	Status           *models.EpicStatus
}

// UpdateProgress applies the requested field changes and recomputes
// progressPercentage via the model's BeforeUpdate hook.
func (s *EpicService) UpdateProgress(epicNum int, req UpdateProgressRequest) (*models.Epic, error) {
	epic, err := s.Get(epicNum)
	if err != nil {
		return nil, err
	}

	if req.TotalStories != nil {
		epic.TotalStories = *req.TotalStories
	}
	if req.CompletedStories != nil {
		epic.CompletedStories = *req.CompletedStories
	}
	if req.Status != nil {
		epic.Status = *req.Status
	}

	if err := s.repo.Update(epic); err != nil {
		return nil, fmt.Errorf("service: update epic progress: %w", err)
	}

	return epic, nil
}

// Delete removes an Epic by number.
func (s *EpicService) Delete(epicNum int) error {
	if err := s.repo.Delete(epicNum); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: delete epic: %w", err)
	}
	return nil
}

// TransitionStatus validates and applies a status change.
func (s *EpicService) TransitionStatus(epicNum int, newStatus models.EpicStatus) (*models.Epic, error) {
	if !models.IsValidEpicStatus(newStatus) {
		return nil, ErrInvalidTransition
	}

	epic, err := s.Get(epicNum)
	if err != nil {
		return nil, err
	}

	epic.Status = newStatus
	if err := s.repo.Update(epic); err != nil {
		return nil, fmt.Errorf("service: transition epic: %w", err)
	}

	return epic, nil
}
