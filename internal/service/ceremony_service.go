package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/store"
)

// CeremonyService exposes CRUD operations over Ceremony.
type CeremonyService struct {
	repo *store.CeremonyRepository
}

// NewCeremonyService constructs a CeremonyService over repo.
func NewCeremonyService(repo *store.CeremonyRepository) *CeremonyService {
	return &CeremonyService{repo: repo}
}

// CreateCeremonyRequest is the input to Create.
type CreateCeremonyRequest struct {
	CeremonyType models.CeremonyType
	Summary      string
	Participants *string
	Decisions    *string
	ActionItems  *string
	HeldAt       time.Time
	EpicNum      *int
	StoryNum     *int
}

// Create inserts a new Ceremony record.
func (s *CeremonyService) Create(req CreateCeremonyRequest) (*models.Ceremony, error) {
	ceremony := &models.Ceremony{
		CeremonyType: req.CeremonyType,
		Summary:      req.Summary,
		Participants: req.Participants,
		Decisions:    req.Decisions,
		ActionItems:  req.ActionItems,
		HeldAt:       req.HeldAt,
		EpicNum:      req.EpicNum,
		StoryNum:     req.StoryNum,
	}

	if err := s.repo.Create(ceremony); err != nil {
		return nil, fmt.Errorf("service: create ceremony: %w", err)
	}

	return ceremony, nil
}

// Get retrieves a Ceremony by ID.
func (s *CeremonyService) Get(id uuid.UUID) (*models.Ceremony, error) {
	ceremony, err := s.repo.GetByKey(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return ceremony, err
}

// ListByEpic returns ceremonies scoped to epicNum, most recent first.
func (s *CeremonyService) ListByEpic(epicNum int) ([]models.Ceremony, error) {
	return s.repo.ListByEpic(epicNum)
}

// ListByType returns ceremonies of the given type, most recent first.
func (s *CeremonyService) ListByType(ceremonyType models.CeremonyType) ([]models.Ceremony, error) {
	return s.repo.ListByType(ceremonyType)
}
