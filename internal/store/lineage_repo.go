package store

import (
	"sort"

	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
)

// LineageRepository persists LineageTracker append-only records.
type LineageRepository struct {
	*BaseRepository[models.LineageRecord, uint]
}

// NewLineageRepository constructs a LineageRepository over db.
func NewLineageRepository(db *gorm.DB) *LineageRepository {
	return &LineageRepository{BaseRepository: NewBaseRepository[models.LineageRecord, uint](db, "id")}
}

// Append inserts a lineage record. Lineage rows are never updated or deleted.
func (r *LineageRepository) Append(record *models.LineageRecord) error {
	return r.Create(record)
}

// ListByArtifact returns lineage records for a given artifact, ordered by
// document type hierarchy (prd < architecture < epic < ... < other).
func (r *LineageRepository) ListByArtifact(artifactType models.ArtifactType, artifactID string) ([]models.LineageRecord, error) {
	records, err := r.List(map[string]interface{}{
		"artifact_type": artifactType,
		"artifact_id":   artifactID,
	}, "accessed_at asc", 0, 0)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return models.DocumentTypeRank(derefString(records[i].DocumentType)) <
			models.DocumentTypeRank(derefString(records[j].DocumentType))
	})

	return records, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
