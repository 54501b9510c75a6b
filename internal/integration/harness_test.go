// Package integration exercises the full engine stack (git, filesystem,
// StateStore, coordinator, atomic operations, migration, consistency,
// and context lineage) together, the way a real project history would
// drive them, rather than unit-testing any one package in isolation.
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/atomic"
	"github.com/gaoforge/dev-engine/internal/config"
	"github.com/gaoforge/dev-engine/internal/consistency"
	"github.com/gaoforge/dev-engine/internal/coordinator"
	"github.com/gaoforge/dev-engine/internal/fsdocs"
	"github.com/gaoforge/dev-engine/internal/lineage"
	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/pathtemplate"
	"github.com/gaoforge/dev-engine/internal/service"
	"github.com/gaoforge/dev-engine/internal/store"
	"github.com/gaoforge/dev-engine/internal/vcs"
)

// harness wires every package the engine composes into one project
// rooted at a throwaway git repository.
type harness struct {
	dir         string
	vc          *vcs.VersionControl
	db          *gorm.DB
	coordinator *coordinator.StateCoordinator
	manager     *atomic.StateManager
	checker     *consistency.Checker
	usage       *lineage.UsageTracker
	lineage     *lineage.LineageTracker
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test")
	writeAndCommit(t, dir, "README.md", "init\n", "chore: initial commit")

	vc := vcs.New(dir)

	templates, err := pathtemplate.LoadDefaults()
	require.NoError(t, err)
	structure := fsdocs.New(dir, templates, nil, vc)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	coord := coordinator.New(
		service.NewFeatureService(store.NewFeatureRepository(db), store.NewFeatureAuditRepository(db)),
		service.NewEpicService(store.NewEpicRepository(db)),
		service.NewStoryService(store.NewStoryRepository(db)),
		service.NewActionItemService(store.NewActionItemRepository(db)),
		service.NewCeremonyService(store.NewCeremonyRepository(db)),
		service.NewLearningService(store.NewLearningRepository(db)),
	)

	return &harness{
		dir:         dir,
		vc:          vc,
		db:          db,
		coordinator: coord,
		manager:     atomic.New(vc, structure, coord, templates, nil, nil),
		checker:     consistency.New(dir, vc, coord, nil, nil),
		usage:       lineage.NewUsageTracker(store.NewContextUsageRepository(db), nil),
		lineage:     lineage.NewLineageTracker(store.NewLineageRepository(db), nil),
	}
}

// newStoreConfig points MigrationsDir at the real on-disk SQL migrations
// so phaseCreateTables in migration.Engine runs the actual golang-migrate
// flow instead of a stub.
func newStoreConfig(t *testing.T, driver, sqlitePath string) config.StoreConfig {
	t.Helper()
	migrationsDir, err := filepath.Abs(filepath.Join("..", "store", "migrations"))
	require.NoError(t, err)
	return config.StoreConfig{
		Driver:        driver,
		SQLitePath:    sqlitePath,
		MigrationsDir: migrationsDir,
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func writeAndCommit(t *testing.T, dir, relPath, content, message string) {
	t.Helper()
	full := filepath.Join(dir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-m", message)
}

func headRevision(t *testing.T, dir string) string {
	t.Helper()
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func lastCommitMessage(t *testing.T, dir string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "-1", "--pretty=%s")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func commitCount(t *testing.T, dir string) int {
	t.Helper()
	cmd := exec.Command("git", "rev-list", "--count", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	n := 0
	for _, b := range out {
		if b >= '0' && b <= '9' {
			n = n*10 + int(b-'0')
		}
	}
	return n
}
