// Package lineage records which document context was used for which
// artifact, as an audit trail. UsageTracker answers "what was used and
// was it a cache hit"; LineageTracker answers "what document chain
// informed this artifact, and is any of it stale".
package lineage

import (
	"time"

	"github.com/google/uuid"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/observability/metrics"
	"github.com/gaoforge/dev-engine/internal/store"
)

// UsageTracker appends one record per context resolution: which key was
// resolved, in which workflow/epic/story, the content hash at the time,
// and whether it came from cache.
type UsageTracker struct {
	repo    *store.ContextUsageRepository
	metrics *metrics.Metrics
}

// NewUsageTracker constructs a UsageTracker over repo.
func NewUsageTracker(repo *store.ContextUsageRepository, m *metrics.Metrics) *UsageTracker {
	return &UsageTracker{repo: repo, metrics: m}
}

// RecordUsage appends a usage record.
func (t *UsageTracker) RecordUsage(artifactType models.ArtifactType, artifactID, contentHash string, cacheHit bool, workflowID *uuid.UUID, epicNum *int, story *string) error {
	start := time.Now()

	record := &models.ContextUsageRecord{
		ArtifactType:    artifactType,
		ArtifactID:      artifactID,
		DocumentVersion: contentHash,
		CacheHit:        cacheHit,
		WorkflowID:      workflowID,
		EpicNum:         epicNum,
		Story:           story,
		AccessedAt:      time.Now().UTC(),
	}

	if err := t.repo.Append(record); err != nil {
		return err
	}

	if t.metrics != nil {
		t.metrics.RecordTrackerAppend("context_usage", time.Since(start))
	}
	return nil
}

// UsageHistory returns the usage records for an artifact, most recent first.
func (t *UsageTracker) UsageHistory(artifactType models.ArtifactType, artifactID string) ([]models.ContextUsageRecord, error) {
	return t.repo.ListByArtifact(artifactType, artifactID)
}

// CacheHitRate summarizes how often an artifact's context resolutions
// were served from cache.
type CacheHitRate struct {
	Total   int64
	Hits    int64
	Misses  int64
	HitRate float64
}

// ContextVersion summarizes one distinct content hash among the usage
// records of a single artifact.
type ContextVersion struct {
	ContentHash string
	FirstAccess time.Time
	LastAccess  time.Time
	AccessCount int
}

// CacheHitRate computes the hit rate across an artifact's recorded usage.
func (t *UsageTracker) CacheHitRate(artifactType models.ArtifactType, artifactID string) (CacheHitRate, error) {
	records, err := t.repo.ListByArtifact(artifactType, artifactID)
	if err != nil {
		return CacheHitRate{}, err
	}

	rate := CacheHitRate{Total: int64(len(records))}
	for _, r := range records {
		if r.CacheHit {
			rate.Hits++
		} else {
			rate.Misses++
		}
	}
	if rate.Total > 0 {
		rate.HitRate = float64(rate.Hits) / float64(rate.Total)
	}
	return rate, nil
}

// ContextVersions groups an artifact's usage records by content hash,
// most recently accessed hash first, so a caller can see when the
// underlying document changed.
func (t *UsageTracker) ContextVersions(artifactType models.ArtifactType, artifactID string) ([]ContextVersion, error) {
	records, err := t.repo.ListByArtifact(artifactType, artifactID)
	if err != nil {
		return nil, err
	}

	byHash := map[string]*ContextVersion{}
	var order []string
	for _, r := range records {
		v, ok := byHash[r.DocumentVersion]
		if !ok {
			v = &ContextVersion{ContentHash: r.DocumentVersion, FirstAccess: r.AccessedAt, LastAccess: r.AccessedAt}
			byHash[r.DocumentVersion] = v
			order = append(order, r.DocumentVersion)
		}
		v.AccessCount++
		if r.AccessedAt.Before(v.FirstAccess) {
			v.FirstAccess = r.AccessedAt
		}
		if r.AccessedAt.After(v.LastAccess) {
			v.LastAccess = r.AccessedAt
		}
	}

	out := make([]ContextVersion, 0, len(order))
	for _, hash := range order {
		out = append(out, *byHash[hash])
	}
	return out, nil
}
