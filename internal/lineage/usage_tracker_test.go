package lineage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/store"
)

func newTestUsageTracker(t *testing.T) *UsageTracker {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return NewUsageTracker(store.NewContextUsageRepository(db), nil)
}

func TestUsageTracker_RecordAndHistory(t *testing.T) {
	tracker := newTestUsageTracker(t)
	workflowID := uuid.New()
	epic := 3
	story := "3.1"

	require.NoError(t, tracker.RecordUsage(models.ArtifactTypeStory, "3.1", "hash-a", true, &workflowID, &epic, &story))
	require.NoError(t, tracker.RecordUsage(models.ArtifactTypeStory, "3.1", "hash-b", false, &workflowID, &epic, &story))

	history, err := tracker.UsageHistory(models.ArtifactTypeStory, "3.1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "hash-b", history[0].DocumentVersion, "most recent first")
}

func TestUsageTracker_CacheHitRate(t *testing.T) {
	tracker := newTestUsageTracker(t)

	require.NoError(t, tracker.RecordUsage(models.ArtifactTypeEpic, "5", "h1", true, nil, nil, nil))
	require.NoError(t, tracker.RecordUsage(models.ArtifactTypeEpic, "5", "h2", false, nil, nil, nil))
	require.NoError(t, tracker.RecordUsage(models.ArtifactTypeEpic, "5", "h3", true, nil, nil, nil))

	rate, err := tracker.CacheHitRate(models.ArtifactTypeEpic, "5")
	require.NoError(t, err)
	require.Equal(t, int64(3), rate.Total)
	require.Equal(t, int64(2), rate.Hits)
	require.Equal(t, int64(1), rate.Misses)
	require.InDelta(t, 2.0/3.0, rate.HitRate, 0.001)
}

func TestUsageTracker_ContextVersions_GroupsByHash(t *testing.T) {
	tracker := newTestUsageTracker(t)

	require.NoError(t, tracker.RecordUsage(models.ArtifactTypeEpic, "7", "hash-a", true, nil, nil, nil))
	require.NoError(t, tracker.RecordUsage(models.ArtifactTypeEpic, "7", "hash-a", true, nil, nil, nil))
	require.NoError(t, tracker.RecordUsage(models.ArtifactTypeEpic, "7", "hash-b", false, nil, nil, nil))

	versions, err := tracker.ContextVersions(models.ArtifactTypeEpic, "7")
	require.NoError(t, err)
	require.Len(t, versions, 2)

	byHash := map[string]ContextVersion{}
	for _, v := range versions {
		byHash[v.ContentHash] = v
	}
	require.Equal(t, 2, byHash["hash-a"].AccessCount)
	require.Equal(t, 1, byHash["hash-b"].AccessCount)
}
