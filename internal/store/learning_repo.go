package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
)

// LearningRepository persists models.Learning rows.
type LearningRepository struct {
	*BaseRepository[models.Learning, uuid.UUID]
}

// NewLearningRepository constructs a LearningRepository over db.
func NewLearningRepository(db *gorm.DB) *LearningRepository {
	return &LearningRepository{BaseRepository: NewBaseRepository[models.Learning, uuid.UUID](db, "id")}
}

// ListActive returns learnings with is_active = true, ordered by relevance.
func (r *LearningRepository) ListActive() ([]models.Learning, error) {
	return r.List(map[string]interface{}{"is_active": true}, "relevance_score desc", 0, 0)
}

// ListByCategory returns active learnings in the given category.
func (r *LearningRepository) ListByCategory(category models.LearningCategory) ([]models.Learning, error) {
	return r.List(map[string]interface{}{"category": category, "is_active": true}, "relevance_score desc", 0, 0)
}

// ListSupersededBy returns learnings whose superseded_by points at id,
// i.e. the direct predecessors in id's chain.
func (r *LearningRepository) ListSupersededBy(id uuid.UUID) ([]models.Learning, error) {
	return r.List(map[string]interface{}{"superseded_by": id}, "created_at desc", 0, 0)
}
