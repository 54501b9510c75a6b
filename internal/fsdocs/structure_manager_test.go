package fsdocs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/pathtemplate"
)

func newTestManager(t *testing.T) (*StructureManager, string, *IndexRegistry) {
	t.Helper()
	root := t.TempDir()
	templates, err := pathtemplate.LoadDefaults()
	require.NoError(t, err)
	registry := NewIndexRegistry()
	return New(root, templates, registry, nil), root, registry
}

func TestInitializeFeatureFolder_Level0CreatesNothing(t *testing.T) {
	mgr, root, _ := newTestManager(t)

	path, err := mgr.InitializeFeatureFolder("chore-fix", models.ScaleLevelChore, nil, false)
	require.NoError(t, err)
	require.Empty(t, path)

	_, err = os.Stat(filepath.Join(root, "docs", "features", "chore-fix"))
	require.True(t, os.IsNotExist(err))
}

func TestInitializeFeatureFolder_Level1CreatesBugsDir(t *testing.T) {
	mgr, root, _ := newTestManager(t)

	path, err := mgr.InitializeFeatureFolder("login-crash", models.ScaleLevelBug, nil, false)
	require.NoError(t, err)
	require.Equal(t, "docs/bugs", path)

	info, err := os.Stat(filepath.Join(root, "docs", "bugs"))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestInitializeFeatureFolder_Level2CreatesSmallFeatureLayout(t *testing.T) {
	mgr, root, registry := newTestManager(t)

	desc := "Authentication rework"
	path, err := mgr.InitializeFeatureFolder("auth", models.ScaleLevelSmall, &desc, false)
	require.NoError(t, err)
	require.Equal(t, "docs/features/auth", path)

	for _, want := range []string{"PRD.md", "CHANGELOG.md", "README.md"} {
		_, err := os.Stat(filepath.Join(root, "docs", "features", "auth", want))
		require.NoError(t, err, want)
	}
	info, err := os.Stat(filepath.Join(root, "docs", "features", "auth", "QA"))
	require.NoError(t, err)
	require.True(t, info.IsDir())

	// Level 2 must not create medium/greenfield-only structure.
	_, err = os.Stat(filepath.Join(root, "docs", "features", "auth", "ARCHITECTURE.md"))
	require.True(t, os.IsNotExist(err))

	registered, ok := registry.Lookup("prd")
	require.True(t, ok)
	require.Equal(t, "docs/features/auth/PRD.md", registered)
}

func TestInitializeFeatureFolder_Level3AddsArchitectureAndEpics(t *testing.T) {
	mgr, root, _ := newTestManager(t)

	_, err := mgr.InitializeFeatureFolder("payments", models.ScaleLevelMedium, nil, false)
	require.NoError(t, err)

	for _, want := range []string{"ARCHITECTURE.md"} {
		_, err := os.Stat(filepath.Join(root, "docs", "features", "payments", want))
		require.NoError(t, err, want)
	}
	for _, dir := range []string{"epics", "retrospectives"} {
		info, err := os.Stat(filepath.Join(root, "docs", "features", "payments", dir))
		require.NoError(t, err, dir)
		require.True(t, info.IsDir())
	}
}

func TestInitializeFeatureFolder_Level4AddsCeremoniesAndMigrationGuide(t *testing.T) {
	mgr, root, _ := newTestManager(t)

	_, err := mgr.InitializeFeatureFolder("platform-rewrite", models.ScaleLevelGreenfield, nil, false)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "docs", "features", "platform-rewrite", "ceremonies"))
	require.NoError(t, err)
	require.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(root, "docs", "features", "platform-rewrite", "MIGRATION_GUIDE.md"))
	require.NoError(t, err)
}

func TestInitializeFeatureFolder_RejectsInvalidScaleLevel(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	_, err := mgr.InitializeFeatureFolder("x", models.ScaleLevel(5), nil, false)
	require.Error(t, err)
}

func TestValidateStructure_FlagsMissingFiles(t *testing.T) {
	root := t.TempDir()
	featurePath := filepath.Join(root, "docs", "features", "incomplete")
	require.NoError(t, os.MkdirAll(featurePath, 0o755))

	violations := FeaturePathValidator{}.ValidateStructure(featurePath)
	require.NotEmpty(t, violations)
}

func TestValidateStructure_CompliantLayoutHasNoViolations(t *testing.T) {
	mgr, root, _ := newTestManager(t)
	_, err := mgr.InitializeFeatureFolder("complete", models.ScaleLevelMedium, nil, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "features", "complete", "QA"), 0o755))

	violations := FeaturePathValidator{}.ValidateStructure(filepath.Join(root, "docs", "features", "complete"))
	require.Empty(t, violations)
}

func TestExtractFeatureFromPath(t *testing.T) {
	v := FeaturePathValidator{}
	require.Equal(t, "user-auth", v.ExtractFeatureFromPath("docs/features/user-auth/PRD.md"))
	require.Empty(t, v.ExtractFeatureFromPath("docs/PRD.md"))
}
