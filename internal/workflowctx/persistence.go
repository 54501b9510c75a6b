package workflowctx

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/store"
)

// ErrContextNotFound is returned when no persisted context matches the
// requested workflow id (and, where relevant, version).
var ErrContextNotFound = errors.New("workflowctx: context not found")

// snapshot is the on-disk JSON shape of a Context, written to
// WorkflowContextRow.ContextData. It mirrors the Context fields that have
// no column of their own on the row, rather than embedding Context, so the wire format stays stable even if the
// in-memory type grows fields that shouldn't round-trip (unexported
// helpers, computed properties).
type snapshot struct {
	PhaseHistory []PhaseTransition      `json:"phase_history"`
	Decisions    map[string]interface{} `json:"decisions"`
	Artifacts    []string               `json:"artifacts"`
	Errors       []string               `json:"errors"`
	Metadata     map[string]interface{} `json:"metadata"`
	Tags         []string               `json:"tags"`
}

// Persistence saves and loads Context values through a
// store.WorkflowContextRepository, JSON-encoding everything beyond the
// row's indexed columns into ContextData.
type Persistence struct {
	repo *store.WorkflowContextRepository
}

// NewPersistence constructs a Persistence over repo.
func NewPersistence(repo *store.WorkflowContextRepository) *Persistence {
	return &Persistence{repo: repo}
}

// Save inserts a new row for c, one version higher than whatever was
// last saved for its workflow id (version 1 if none exists yet).
func (p *Persistence) Save(c Context) (int, error) {
	data, err := json.Marshal(snapshot{
		PhaseHistory: c.PhaseHistory,
		Decisions:    c.Decisions,
		Artifacts:    c.Artifacts,
		Errors:       c.Errors,
		Metadata:     c.Metadata,
		Tags:         c.Tags,
	})
	if err != nil {
		return 0, fmt.Errorf("workflowctx: marshal context: %w", err)
	}

	version := 1
	if existing, err := p.repo.Latest(c.WorkflowID); err == nil {
		version = existing.Version + 1
	} else if !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("workflowctx: load latest version: %w", err)
	}

	row := &models.WorkflowContextRow{
		WorkflowID:   c.WorkflowID,
		EpicNum:      c.EpicNum,
		StoryNum:     c.StoryNum,
		Feature:      c.Feature,
		WorkflowName: c.WorkflowName,
		CurrentPhase: c.CurrentPhase,
		Status:       models.WorkflowRunStatus(c.Status),
		ContextData:  string(data),
		Version:      version,
	}

	if err := p.repo.Create(row); err != nil {
		return 0, fmt.Errorf("workflowctx: save context: %w", err)
	}

	return version, nil
}

// Load returns the latest-versioned Context for workflowID.
func (p *Persistence) Load(workflowID uuid.UUID) (Context, error) {
	row, err := p.repo.Latest(workflowID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Context{}, ErrContextNotFound
		}
		return Context{}, fmt.Errorf("workflowctx: load context: %w", err)
	}
	return fromRow(row)
}

// Versions returns every persisted version of workflowID's context,
// oldest first.
func (p *Persistence) Versions(workflowID uuid.UUID) ([]Context, error) {
	rows, err := p.repo.Versions(workflowID)
	if err != nil {
		return nil, fmt.Errorf("workflowctx: load versions: %w", err)
	}
	return fromRows(rows)
}

// LatestByStatus returns the latest context for every workflow currently
// in the given status.
func (p *Persistence) LatestByStatus(status Status) ([]Context, error) {
	rows, err := p.repo.LatestByStatus(models.WorkflowRunStatus(status))
	if err != nil {
		return nil, fmt.Errorf("workflowctx: load by status: %w", err)
	}
	return fromRows(rows)
}

// ActiveContexts returns the latest context for every running workflow.
func (p *Persistence) ActiveContexts() ([]Context, error) {
	return p.LatestByStatus(StatusRunning)
}

// FailedContexts returns the latest context for every failed workflow.
func (p *Persistence) FailedContexts() ([]Context, error) {
	return p.LatestByStatus(StatusFailed)
}

// ByEpic returns the latest context for every workflow scoped to epicNum.
func (p *Persistence) ByEpic(epicNum int) ([]Context, error) {
	rows, err := p.repo.ByEpic(epicNum)
	if err != nil {
		return nil, fmt.Errorf("workflowctx: load by epic: %w", err)
	}
	return fromRows(rows)
}

// ByFeature returns the latest context for every workflow scoped to feature.
func (p *Persistence) ByFeature(feature string) ([]Context, error) {
	rows, err := p.repo.ByFeature(feature)
	if err != nil {
		return nil, fmt.Errorf("workflowctx: load by feature: %w", err)
	}
	return fromRows(rows)
}

// Search returns the latest context for every workflow whose name
// contains query.
func (p *Persistence) Search(query string) ([]Context, error) {
	rows, err := p.repo.Search(query)
	if err != nil {
		return nil, fmt.Errorf("workflowctx: search contexts: %w", err)
	}
	return fromRows(rows)
}

// SaveAll saves every context in cs, returning their assigned versions
// in the same order. It stops at the first failure.
func (p *Persistence) SaveAll(cs []Context) ([]int, error) {
	versions := make([]int, 0, len(cs))
	for _, c := range cs {
		v, err := p.Save(c)
		if err != nil {
			return versions, err
		}
		versions = append(versions, v)
	}
	return versions, nil
}

func fromRow(row *models.WorkflowContextRow) (Context, error) {
	var snap snapshot
	if err := json.Unmarshal([]byte(row.ContextData), &snap); err != nil {
		return Context{}, fmt.Errorf("workflowctx: unmarshal context: %w", err)
	}

	return Context{
		WorkflowID:   row.WorkflowID,
		EpicNum:      row.EpicNum,
		StoryNum:     row.StoryNum,
		Feature:      row.Feature,
		WorkflowName: row.WorkflowName,
		CurrentPhase: row.CurrentPhase,
		Status:       Status(row.Status),
		PhaseHistory: snap.PhaseHistory,
		Decisions:    snap.Decisions,
		Artifacts:    snap.Artifacts,
		Errors:       snap.Errors,
		Metadata:     snap.Metadata,
		Tags:         snap.Tags,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func fromRows(rows []models.WorkflowContextRow) ([]Context, error) {
	out := make([]Context, 0, len(rows))
	for i := range rows {
		c, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
