package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
)

// CeremonyRepository persists models.Ceremony rows.
type CeremonyRepository struct {
	*BaseRepository[models.Ceremony, uuid.UUID]
}

// NewCeremonyRepository constructs a CeremonyRepository over db.
func NewCeremonyRepository(db *gorm.DB) *CeremonyRepository {
	return &CeremonyRepository{BaseRepository: NewBaseRepository[models.Ceremony, uuid.UUID](db, "id")}
}

// ListByEpic returns ceremonies scoped to epicNum, most recent first.
func (r *CeremonyRepository) ListByEpic(epicNum int) ([]models.Ceremony, error) {
	return r.List(map[string]interface{}{"epic_num": epicNum}, "held_at desc", 0, 0)
}

// ListByType returns ceremonies of the given type, most recent first.
func (r *CeremonyRepository) ListByType(ceremonyType models.CeremonyType) ([]models.Ceremony, error) {
	return r.List(map[string]interface{}{"ceremony_type": ceremonyType}, "held_at desc", 0, 0)
}
