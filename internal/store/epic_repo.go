package store

import (
	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
)

// EpicRepository persists models.Epic rows, keyed by the natural EpicNum.
type EpicRepository struct {
	*BaseRepository[models.Epic, int]
}

// NewEpicRepository constructs an EpicRepository over db.
func NewEpicRepository(db *gorm.DB) *EpicRepository {
	return &EpicRepository{BaseRepository: NewBaseRepository[models.Epic, int](db, "epic_num")}
}

// ListByFeature returns every epic tagged with the given feature name.
func (r *EpicRepository) ListByFeature(feature string) ([]models.Epic, error) {
	return r.List(map[string]interface{}{"feature": feature}, "epic_num asc", 0, 0)
}

// ListAll returns every epic ordered by epic number.
func (r *EpicRepository) ListAll() ([]models.Epic, error) {
	return r.List(nil, "epic_num asc", 0, 0)
}

// IncrementCompletedStories reads the epic, bumps completed_stories and
// saves it, letting the BeforeUpdate hook recompute progress_percentage.
// The read and the save are not one atomic step, and status is left as is.
func (r *EpicRepository) IncrementCompletedStories(epicNum int) (*models.Epic, error) {
	epic, err := r.GetByKey(epicNum)
	if err != nil {
		return nil, err
	}
	epic.CompletedStories++
	if err := r.Update(epic); err != nil {
		return nil, err
	}
	return epic, nil
}
