package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
)

// ActionItemRepository persists models.ActionItem rows.
type ActionItemRepository struct {
	*BaseRepository[models.ActionItem, uuid.UUID]
}

// NewActionItemRepository constructs an ActionItemRepository over db.
func NewActionItemRepository(db *gorm.DB) *ActionItemRepository {
	return &ActionItemRepository{BaseRepository: NewBaseRepository[models.ActionItem, uuid.UUID](db, "id")}
}

// ListCriticalUnpromotedForEpic returns open critical action items scoped
// to epicNum that have not yet been promoted into a story.
func (r *ActionItemRepository) ListCriticalUnpromotedForEpic(epicNum int) ([]models.ActionItem, error) {
	var items []models.ActionItem
	err := r.GetDB().
		Where("epic_num = ? AND priority = ? AND status != ? AND promoted_to_story_epic_num IS NULL",
			epicNum, models.ActionItemPriorityCritical, models.ActionItemStatusCompleted).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CountPromotedForEpic counts action items already promoted into epicNum,
// used to enforce the one-promotion-per-epic limit.
func (r *ActionItemRepository) CountPromotedForEpic(epicNum int) (int64, error) {
	return r.Count(map[string]interface{}{"promoted_to_story_epic_num": epicNum})
}

// ListByStatus returns action items in the given status.
func (r *ActionItemRepository) ListByStatus(status models.ActionItemStatus) ([]models.ActionItem, error) {
	return r.List(map[string]interface{}{"status": status}, "created_at asc", 0, 0)
}
