package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/store"
)

// FeatureService exposes CRUD and lifecycle operations over Feature,
// appending a FeatureAudit row on every insert, status transition, and
// delete.
type FeatureService struct {
	repo  *store.FeatureRepository
	audit *store.FeatureAuditRepository
}

// NewFeatureService constructs a FeatureService over repo and audit.
func NewFeatureService(repo *store.FeatureRepository, audit *store.FeatureAuditRepository) *FeatureService {
	return &FeatureService{repo: repo, audit: audit}
}

// snapshot marshals a Feature to JSON for an audit row's before/after
// value. A marshal failure here would mean Feature itself stopped being
// serializable, not an audit-specific condition, so it panics rather
// than threading another error return through every mutating method.
func snapshot(feature *models.Feature) *string {
	if feature == nil {
		return nil
	}
	b, err := json.Marshal(feature)
	if err != nil {
		panic(fmt.Sprintf("service: marshal feature snapshot: %v", err))
	}
	s := string(b)
	return &s
}

func (s *FeatureService) appendAudit(op models.AuditOperation, featureID uuid.UUID, before, after *models.Feature) error {
	row := &models.FeatureAudit{
		FeatureID: featureID,
		Operation: op,
		OldValue:  snapshot(before),
		NewValue:  snapshot(after),
		ChangedAt: time.Now().UTC(),
	}
	if err := s.audit.Append(row); err != nil {
		return fmt.Errorf("service: append feature audit: %w", err)
	}
	return nil
}

// CreateFeatureRequest is the input to Create.
type CreateFeatureRequest struct {
	Name        string
	Scope       models.FeatureScope
	ScaleLevel  models.ScaleLevel
	Description *string
	Owner       *string
	Metadata    models.JSONMap
}

// Create validates and inserts a new Feature.
func (s *FeatureService) Create(req CreateFeatureRequest) (*models.Feature, error) {
	if _, err := s.repo.GetByName(req.Name); err == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	feature := &models.Feature{
		Name:        req.Name,
		Scope:       req.Scope,
		ScaleLevel:  req.ScaleLevel,
		Description: req.Description,
		Owner:       req.Owner,
		Metadata:    req.Metadata,
	}

	if err := s.repo.Create(feature); err != nil {
		return nil, fmt.Errorf("service: create feature: %w", err)
	}

	if err := s.appendAudit(models.AuditOperationInsert, feature.ID, nil, feature); err != nil {
		return nil, err
	}

	return feature, nil
}

// Get retrieves a Feature by ID.
func (s *FeatureService) Get(id uuid.UUID) (*models.Feature, error) {
	feature, err := s.repo.GetByKey(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return feature, err
}

// GetByName retrieves a Feature by its unique name.
func (s *FeatureService) GetByName(name string) (*models.Feature, error) {
	feature, err := s.repo.GetByName(name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return feature, err
}

// List returns every feature, optionally filtered by status.
func (s *FeatureService) List(status *models.FeatureStatus) ([]models.Feature, error) {
	if status != nil {
		return s.repo.ListByStatus(*status)
	}
	return s.repo.List(nil, "created_at desc", 0, 0)
}

// TransitionStatus moves a Feature to newStatus. PLANNING -> ACTIVE ->
// COMPLETE -> ARCHIVED is the expected forward path; ARCHIVED is terminal.
func (s *FeatureService) TransitionStatus(id uuid.UUID, newStatus models.FeatureStatus) (*models.Feature, error) {
	feature, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if feature.Status == models.FeatureStatusArchived {
		return nil, ErrInvalidTransition
	}

	before := *feature
	feature.Status = newStatus
	if err := s.repo.Update(feature); err != nil {
		return nil, fmt.Errorf("service: transition feature: %w", err)
	}

	if err := s.appendAudit(models.AuditOperationUpdate, feature.ID, &before, feature); err != nil {
		return nil, err
	}

	return feature, nil
}

// Delete removes a Feature. The caller is responsible for understanding
// that epics/stories reference features by name only and are unaffected.
// The audit row records the pre-delete snapshot, so createFeature(x)
// followed by delete and recreation leaves two separate audit trails
// for the same name, one per feature id.
func (s *FeatureService) Delete(id uuid.UUID) error {
	feature, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	return s.appendAudit(models.AuditOperationDelete, feature.ID, feature, nil)
}
