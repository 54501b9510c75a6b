package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
)

// WorkflowContextRepository persists models.WorkflowContextRow snapshots.
type WorkflowContextRepository struct {
	*BaseRepository[models.WorkflowContextRow, uint]
}

// NewWorkflowContextRepository constructs a WorkflowContextRepository over db.
func NewWorkflowContextRepository(db *gorm.DB) *WorkflowContextRepository {
	return &WorkflowContextRepository{BaseRepository: NewBaseRepository[models.WorkflowContextRow, uint](db, "id")}
}

// Latest returns the highest-versioned row for workflowID.
func (r *WorkflowContextRepository) Latest(workflowID uuid.UUID) (*models.WorkflowContextRow, error) {
	var row models.WorkflowContextRow
	err := r.GetDB().
		Where("workflow_id = ?", workflowID).
		Order("version desc").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// Versions returns every persisted version for workflowID, oldest first.
func (r *WorkflowContextRepository) Versions(workflowID uuid.UUID) ([]models.WorkflowContextRow, error) {
	var rows []models.WorkflowContextRow
	err := r.GetDB().
		Where("workflow_id = ?", workflowID).
		Order("version asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LatestByStatus returns the latest-versioned row for every workflow
// currently in the given status.
func (r *WorkflowContextRepository) LatestByStatus(status models.WorkflowRunStatus) ([]models.WorkflowContextRow, error) {
	var rows []models.WorkflowContextRow
	err := r.GetDB().
		Where("status = ? AND id IN (?)", status,
			r.GetDB().Model(&models.WorkflowContextRow{}).
				Select("MAX(id)").
				Group("workflow_id"),
		).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ByEpic returns the latest-versioned row for every workflow scoped to epicNum.
func (r *WorkflowContextRepository) ByEpic(epicNum int) ([]models.WorkflowContextRow, error) {
	var rows []models.WorkflowContextRow
	err := r.GetDB().
		Where("epic_num = ? AND id IN (?)", epicNum,
			r.GetDB().Model(&models.WorkflowContextRow{}).
				Select("MAX(id)").
				Group("workflow_id"),
		).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ByFeature returns the latest-versioned row for every workflow scoped to feature.
func (r *WorkflowContextRepository) ByFeature(feature string) ([]models.WorkflowContextRow, error) {
	var rows []models.WorkflowContextRow
	err := r.GetDB().
		Where("feature = ? AND id IN (?)", feature,
			r.GetDB().Model(&models.WorkflowContextRow{}).
				Select("MAX(id)").
				Group("workflow_id"),
		).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Search returns latest-versioned rows whose workflow name contains query.
func (r *WorkflowContextRepository) Search(query string) ([]models.WorkflowContextRow, error) {
	var rows []models.WorkflowContextRow
	err := r.GetDB().
		Where("workflow_name LIKE ? AND id IN (?)", "%"+query+"%",
			r.GetDB().Model(&models.WorkflowContextRow{}).
				Select("MAX(id)").
				Group("workflow_id"),
		).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
