package store

import (
	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
)

// ContextUsageRepository persists ContextUsageTracker append-only records.
type ContextUsageRepository struct {
	*BaseRepository[models.ContextUsageRecord, uint]
}

// NewContextUsageRepository constructs a ContextUsageRepository over db.
func NewContextUsageRepository(db *gorm.DB) *ContextUsageRepository {
	return &ContextUsageRepository{BaseRepository: NewBaseRepository[models.ContextUsageRecord, uint](db, "id")}
}

// Append inserts a usage record. Usage rows are never updated or deleted.
func (r *ContextUsageRepository) Append(record *models.ContextUsageRecord) error {
	return r.Create(record)
}

// ListByArtifact returns usage records for a given artifact, most recent first.
func (r *ContextUsageRepository) ListByArtifact(artifactType models.ArtifactType, artifactID string) ([]models.ContextUsageRecord, error) {
	return r.List(map[string]interface{}{
		"artifact_type": artifactType,
		"artifact_id":   artifactID,
	}, "accessed_at desc", 0, 0)
}

// CountCacheHits counts how many of an artifact's usage records were cache hits.
func (r *ContextUsageRepository) CountCacheHits(artifactType models.ArtifactType, artifactID string) (int64, error) {
	return r.Count(map[string]interface{}{
		"artifact_type": artifactType,
		"artifact_id":   artifactID,
		"cache_hit":     true,
	})
}
