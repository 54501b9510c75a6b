package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
)

// FeatureRepository persists models.Feature rows.
type FeatureRepository struct {
	*BaseRepository[models.Feature, uuid.UUID]
}

// NewFeatureRepository constructs a FeatureRepository over db.
func NewFeatureRepository(db *gorm.DB) *FeatureRepository {
	return &FeatureRepository{BaseRepository: NewBaseRepository[models.Feature, uuid.UUID](db, "id")}
}

// GetByName looks up a Feature by its unique name.
func (r *FeatureRepository) GetByName(name string) (*models.Feature, error) {
	var f models.Feature
	if err := r.GetDB().Where("name = ?", name).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// ListByStatus returns features in the given status, most recently created first.
func (r *FeatureRepository) ListByStatus(status models.FeatureStatus) ([]models.Feature, error) {
	return r.List(map[string]interface{}{"status": status}, "created_at desc", 0, 0)
}
