package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *VersionControl {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	run("init")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("init\n"), 0o644))
	run("add", "-A")
	run("commit", "-m", "chore: initial commit")

	return New(dir)
}

func TestVersionControl_IsRepo(t *testing.T) {
	vc := newTestRepo(t)
	require.True(t, vc.IsRepo())
}

func TestVersionControl_IsWorkingTreeClean(t *testing.T) {
	vc := newTestRepo(t)

	clean, err := vc.IsWorkingTreeClean()
	require.NoError(t, err)
	require.True(t, clean)

	require.NoError(t, os.WriteFile(filepath.Join(vc.workDir, "new.txt"), []byte("x"), 0o644))

	clean, err = vc.IsWorkingTreeClean()
	require.NoError(t, err)
	require.False(t, clean)
}

func TestVersionControl_CommitAndResetHard(t *testing.T) {
	vc := newTestRepo(t)

	initial, err := vc.HeadRevision()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(vc.workDir, "story.md"), []byte("# Story 1.1\n"), 0o644))
	require.NoError(t, vc.AddAll())
	require.NoError(t, vc.Commit("feat(story-1.1): create story", false))

	head, err := vc.HeadRevision()
	require.NoError(t, err)
	require.NotEqual(t, initial, head)

	require.NoError(t, vc.ResetHard(initial))

	head, err = vc.HeadRevision()
	require.NoError(t, err)
	require.Equal(t, initial, head)
}

func TestVersionControl_BranchLifecycle(t *testing.T) {
	vc := newTestRepo(t)

	require.NoError(t, vc.CreateBranch("feature/x", true))

	branch, err := vc.GetCurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "feature/x", branch)

	require.NoError(t, vc.Checkout("master"))
	require.NoError(t, vc.DeleteBranch("feature/x", false))
}

func TestVersionControl_LastCommitForPath(t *testing.T) {
	vc := newTestRepo(t)

	info, err := vc.LastCommitForPath("README.md")
	require.NoError(t, err)
	require.NotNil(t, info)
	require.Equal(t, "chore: initial commit", info.Message)
}

func TestVersionControl_LastCommitForPath_NoHistory(t *testing.T) {
	vc := newTestRepo(t)

	info, err := vc.LastCommitForPath("nonexistent.md")
	require.NoError(t, err)
	require.Nil(t, info)
}

func TestVersionControl_IsFileTracked(t *testing.T) {
	vc := newTestRepo(t)

	tracked, err := vc.IsFileTracked("README.md")
	require.NoError(t, err)
	require.True(t, tracked)

	tracked, err = vc.IsFileTracked("nonexistent.md")
	require.NoError(t, err)
	require.False(t, tracked)
}

func TestCreateConventionalCommit(t *testing.T) {
	msg := CreateConventionalCommit("feat", "story-1.2", "create Login endpoint", "")
	require.Equal(t, "feat(story-1.2): create Login endpoint", msg)

	msg = CreateConventionalCommit("chore", "story-1.2", "transition to completed", "closes #42")
	require.Equal(t, "chore(story-1.2): transition to completed\n\ncloses #42", msg)
}
