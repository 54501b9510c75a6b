package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gaoforge/dev-engine/internal/config"
	"github.com/gaoforge/dev-engine/internal/coordinator"
	"github.com/gaoforge/dev-engine/internal/migration"
	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/service"
	"github.com/gaoforge/dev-engine/internal/store"
	"github.com/gaoforge/dev-engine/internal/vcs"
)

// TestMigrationEngine_Run_InfersStoryStatusFromGitHistory backfills a
// legacy flat-file layout that was never touched by the coordinator: an
// epic file and three story files whose last commit messages carry the
// only signal of where each story actually stands. The run applies the
// real on-disk schema migration via golang-migrate rather than a
// fabricated one, then checkpoints each phase on a dedicated branch.
func TestMigrationEngine_Run_InfersStoryStatusFromGitHistory(t *testing.T) {
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test")
	writeAndCommit(t, dir, "README.md", "init\n", "chore: initial commit")

	writeAndCommit(t, dir, "docs/epics/epic-1.md",
		"# Epic 1: Auth\n\n**Status**: planning\n**Total Stories**: 3\n",
		"docs(epic-1): add epic file")

	writeAndCommit(t, dir, "docs/stories/story-1.1.md", "# Story 1.1\n", "chore: add story 1.1 file")
	writeAndCommit(t, dir, "docs/stories/story-1.2.md", "# Story 1.2\n", "chore(story-1.2): wip")
	writeAndCommit(t, dir, "docs/stories/story-1.3.md", "# Story 1.3\n", "feat(story-1.3): complete JWT")

	vc := vcs.New(dir)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".gaoforge"), 0o755))
	storeConfig := newStoreConfig(t, "sqlite", filepath.Join(dir, ".gaoforge", "documents.db"))
	st, err := store.Open(&config.Config{Store: storeConfig})
	require.NoError(t, err)
	defer st.Close()

	coord := coordinator.New(
		service.NewFeatureService(store.NewFeatureRepository(st.DB()), store.NewFeatureAuditRepository(st.DB())),
		service.NewEpicService(store.NewEpicRepository(st.DB())),
		service.NewStoryService(store.NewStoryRepository(st.DB())),
		service.NewActionItemService(store.NewActionItemRepository(st.DB())),
		service.NewCeremonyService(store.NewCeremonyRepository(st.DB())),
		service.NewLearningService(store.NewLearningRepository(st.DB())),
	)

	engine := migration.New(dir, vc, st, storeConfig, coord, nil, nil)

	result := engine.Run(context.Background(), migration.Options{CreateBranch: true})
	require.True(t, result.Success, "%v", result.Error)
	require.Equal(t, 1, result.EpicsBackfilled)
	require.Equal(t, 3, result.StoriesBackfilled)

	epic, err := coord.Epics.Get(1)
	require.NoError(t, err)
	require.Equal(t, 3, epic.TotalStories)

	s11, err := coord.Stories.Get(1, 1)
	require.NoError(t, err)
	require.Equal(t, models.StoryStatusPending, s11.Status)

	s12, err := coord.Stories.Get(1, 2)
	require.NoError(t, err)
	require.Equal(t, models.StoryStatusInProgress, s12.Status)

	s13, err := coord.Stories.Get(1, 3)
	require.NoError(t, err)
	require.Equal(t, models.StoryStatusCompleted, s13.Status)

	branch, err := vc.GetCurrentBranch()
	require.NoError(t, err)
	require.Equal(t, migration.BranchName, branch)

	// One checkpoint commit per phase (create_tables, backfill_epics,
	// backfill_stories, validate) on top of the five commits seeded above.
	require.GreaterOrEqual(t, commitCount(t, dir), 5+4)
}
