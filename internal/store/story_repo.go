package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
)

// StoryRepository persists models.Story rows, keyed by a surrogate ID but
// addressed in practice by the (epic_num, story_num) composite natural key.
type StoryRepository struct {
	*BaseRepository[models.Story, uint]
}

// NewStoryRepository constructs a StoryRepository over db.
func NewStoryRepository(db *gorm.DB) *StoryRepository {
	return &StoryRepository{BaseRepository: NewBaseRepository[models.Story, uint](db, "id")}
}

// GetByEpicAndStory looks up a story by its composite natural key. The
// base repository only supports a single key column, so this bypasses it.
func (r *StoryRepository) GetByEpicAndStory(epicNum, storyNum int) (*models.Story, error) {
	var story models.Story
	err := r.GetDB().
		Where("epic_num = ? AND story_num = ?", epicNum, storyNum).
		First(&story).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &story, nil
}

// ListByEpic returns every story under an epic, ordered by story number.
func (r *StoryRepository) ListByEpic(epicNum int) ([]models.Story, error) {
	return r.List(map[string]interface{}{"epic_num": epicNum}, "story_num asc", 0, 0)
}

// ListByStatus returns every story in the given status.
func (r *StoryRepository) ListByStatus(status models.StoryStatus) ([]models.Story, error) {
	return r.List(map[string]interface{}{"status": status}, "epic_num asc, story_num asc", 0, 0)
}

// ListAll returns every story ordered by epic and story number.
func (r *StoryRepository) ListAll() ([]models.Story, error) {
	return r.List(nil, "epic_num asc, story_num asc", 0, 0)
}

// DeleteByEpicAndStory removes a story by its composite natural key.
func (r *StoryRepository) DeleteByEpicAndStory(epicNum, storyNum int) error {
	story, err := r.GetByEpicAndStory(epicNum, storyNum)
	if err != nil {
		return err
	}
	return r.Delete(story.ID)
}

// CountByEpicAndStatus counts stories under an epic matching status.
func (r *StoryRepository) CountByEpicAndStatus(epicNum int, status models.StoryStatus) (int64, error) {
	return r.Count(map[string]interface{}{"epic_num": epicNum, "status": status})
}
