package workflowctx

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/store"
)

func newTestPersistence(t *testing.T) *Persistence {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return NewPersistence(store.NewWorkflowContextRepository(db))
}

func TestPersistence_SaveAndLoad_RoundTrips(t *testing.T) {
	p := newTestPersistence(t)

	c := New(uuid.New(), 3, nil, "search", "implement-story")
	c = c.AddDecision("approach", "event-sourcing")
	c = c.AddArtifact("docs/design.md")
	c = c.TransitionPhase("drafting")

	version, err := p.Save(c)
	require.NoError(t, err)
	require.Equal(t, 1, version)

	loaded, err := p.Load(c.WorkflowID)
	require.NoError(t, err)
	require.Equal(t, c.WorkflowID, loaded.WorkflowID)
	require.Equal(t, "event-sourcing", loaded.Decisions["approach"])
	require.Equal(t, []string{"docs/design.md"}, loaded.Artifacts)
	require.Equal(t, "drafting", loaded.CurrentPhase)
	require.Len(t, loaded.PhaseHistory, 1)
}

func TestPersistence_Save_IncrementsVersion(t *testing.T) {
	p := newTestPersistence(t)
	id := uuid.New()

	c := New(id, 1, nil, "f", "w")
	v1, err := p.Save(c)
	require.NoError(t, err)
	require.Equal(t, 1, v1)

	c2 := c.TransitionPhase("drafting")
	v2, err := p.Save(c2)
	require.NoError(t, err)
	require.Equal(t, 2, v2)

	loaded, err := p.Load(id)
	require.NoError(t, err)
	require.Equal(t, "drafting", loaded.CurrentPhase)

	versions, err := p.Versions(id)
	require.NoError(t, err)
	require.Len(t, versions, 2)
}

func TestPersistence_Load_NotFound(t *testing.T) {
	p := newTestPersistence(t)
	_, err := p.Load(uuid.New())
	require.ErrorIs(t, err, ErrContextNotFound)
}

func TestPersistence_LatestByStatus(t *testing.T) {
	p := newTestPersistence(t)

	running := New(uuid.New(), 1, nil, "f", "w")
	failed := New(uuid.New(), 2, nil, "f", "w").WithStatus(StatusFailed)

	_, err := p.Save(running)
	require.NoError(t, err)
	_, err = p.Save(failed)
	require.NoError(t, err)

	active, err := p.ActiveContexts()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, running.WorkflowID, active[0].WorkflowID)

	failedContexts, err := p.FailedContexts()
	require.NoError(t, err)
	require.Len(t, failedContexts, 1)
	require.Equal(t, failed.WorkflowID, failedContexts[0].WorkflowID)
}

func TestPersistence_ByEpicAndByFeature(t *testing.T) {
	p := newTestPersistence(t)

	a := New(uuid.New(), 10, nil, "billing", "plan-epic")
	b := New(uuid.New(), 10, nil, "checkout", "plan-epic")

	_, err := p.Save(a)
	require.NoError(t, err)
	_, err = p.Save(b)
	require.NoError(t, err)

	byEpic, err := p.ByEpic(10)
	require.NoError(t, err)
	require.Len(t, byEpic, 2)

	byFeature, err := p.ByFeature("billing")
	require.NoError(t, err)
	require.Len(t, byFeature, 1)
	require.Equal(t, a.WorkflowID, byFeature[0].WorkflowID)
}

func TestPersistence_Search(t *testing.T) {
	p := newTestPersistence(t)

	c := New(uuid.New(), 1, nil, "f", "implement-story")
	_, err := p.Save(c)
	require.NoError(t, err)

	results, err := p.Search("implement")
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestPersistence_SaveAll(t *testing.T) {
	p := newTestPersistence(t)

	cs := []Context{
		New(uuid.New(), 1, nil, "f", "w"),
		New(uuid.New(), 2, nil, "f", "w"),
	}

	versions, err := p.SaveAll(cs)
	require.NoError(t, err)
	require.Equal(t, []int{1, 1}, versions)
}
