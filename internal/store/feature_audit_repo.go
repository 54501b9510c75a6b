package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
)

// FeatureAuditRepository persists FeatureAudit append-only records.
type FeatureAuditRepository struct {
	*BaseRepository[models.FeatureAudit, uint]
}

// NewFeatureAuditRepository constructs a FeatureAuditRepository over db.
func NewFeatureAuditRepository(db *gorm.DB) *FeatureAuditRepository {
	return &FeatureAuditRepository{BaseRepository: NewBaseRepository[models.FeatureAudit, uint](db, "id")}
}

// Append inserts an audit row. Audit rows are never updated or deleted.
func (r *FeatureAuditRepository) Append(audit *models.FeatureAudit) error {
	return r.Create(audit)
}

// ListByFeature returns every audit row for a feature, oldest change first.
func (r *FeatureAuditRepository) ListByFeature(featureID uuid.UUID) ([]models.FeatureAudit, error) {
	return r.List(map[string]interface{}{"feature_id": featureID}, "changed_at asc", 0, 0)
}
