package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/store"
)

// LearningService exposes CRUD and supersession operations over Learning.
type LearningService struct {
	repo *store.LearningRepository
}

// NewLearningService constructs a LearningService over repo.
func NewLearningService(repo *store.LearningRepository) *LearningService {
	return &LearningService{repo: repo}
}

// IndexLearningRequest is the input to Index.
type IndexLearningRequest struct {
	Topic          string
	Category       models.LearningCategory
	LearningText   string
	Context        *string
	SourceType     *string
	RelevanceScore float64
	Metadata       models.JSONMap
}

// Index records a new learning.
func (s *LearningService) Index(req IndexLearningRequest) (*models.Learning, error) {
	relevance := req.RelevanceScore
	if relevance == 0 {
		relevance = 1.0
	}

	learning := &models.Learning{
		Topic:          req.Topic,
		Category:       req.Category,
		LearningText:   req.LearningText,
		Context:        req.Context,
		SourceType:     req.SourceType,
		RelevanceScore: relevance,
		IsActive:       true,
	}

	if err := s.repo.Create(learning); err != nil {
		return nil, fmt.Errorf("service: index learning: %w", err)
	}

	return learning, nil
}

// Get retrieves a Learning by ID.
func (s *LearningService) Get(id uuid.UUID) (*models.Learning, error) {
	learning, err := s.repo.GetByKey(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return learning, err
}

// ListActive returns active learnings, most relevant first.
func (s *LearningService) ListActive() ([]models.Learning, error) {
	return s.repo.ListActive()
}

// ListByCategory returns active learnings in the given category.
func (s *LearningService) ListByCategory(category models.LearningCategory) ([]models.Learning, error) {
	return s.repo.ListByCategory(category)
}

// Supersede marks oldID as superseded by newID and deactivates it. A
// learning is active iff no supersededBy chain terminates in it, so
// superseding always sets isActive=false on the old record.
func (s *LearningService) Supersede(oldID, newID uuid.UUID) (*models.Learning, error) {
	if _, err := s.Get(newID); err != nil {
		return nil, fmt.Errorf("service: supersede: superseding learning not found: %w", err)
	}

	old, err := s.Get(oldID)
	if err != nil {
		return nil, err
	}

	old.SupersededBy = &newID
	old.IsActive = false

	if err := s.repo.Update(old); err != nil {
		return nil, fmt.Errorf("service: supersede learning: %w", err)
	}

	return old, nil
}

// ActiveChain walks the supersededBy pointers backward from id (i.e. every
// learning that id directly or transitively superseded), oldest first.
func (s *LearningService) ActiveChain(id uuid.UUID) ([]models.Learning, error) {
	var chain []models.Learning

	current := id
	visited := map[uuid.UUID]bool{}

	for {
		predecessors, err := s.repo.ListSupersededBy(current)
		if err != nil {
			return nil, err
		}
		if len(predecessors) == 0 {
			break
		}

		// A learning can only be superseded by one successor in this
		// model, so take the first (and only expected) predecessor.
		predecessor := predecessors[0]
		if visited[predecessor.ID] {
			break
		}
		visited[predecessor.ID] = true

		chain = append([]models.Learning{predecessor}, chain...)
		current = predecessor.ID
	}

	return chain, nil
}
