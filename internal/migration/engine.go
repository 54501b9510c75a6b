// Package migration discovers the legacy flat-file epic/story layout
// and backfills it into the StateStore, one checkpoint commit per
// phase, rolling the whole run back on any phase failure.
package migration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/gaoforge/dev-engine/internal/config"
	"github.com/gaoforge/dev-engine/internal/coordinator"
	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/observability/metrics"
	"github.com/gaoforge/dev-engine/internal/observability/tracing"
	"github.com/gaoforge/dev-engine/internal/service"
	"github.com/gaoforge/dev-engine/internal/store"
	"github.com/gaoforge/dev-engine/internal/vcs"
)

// BranchName is the dedicated branch phases run on when CreateBranch
// is requested.
const BranchName = "migration/hybrid-architecture"

// Options configures one migration run.
type Options struct {
	CreateBranch bool
	AutoMerge    bool
	TargetBranch string
}

// Engine runs the four-phase migration: create tables, backfill
// epics, backfill stories, validate.
type Engine struct {
	projectRoot string
	vc          *vcs.VersionControl
	store       *store.StateStore
	storeConfig config.StoreConfig
	coordinator *coordinator.StateCoordinator
	tracer      *tracing.Tracer
	metrics     *metrics.Metrics
}

// New constructs an Engine. tracer and m may be nil.
func New(
	projectRoot string,
	vc *vcs.VersionControl,
	st *store.StateStore,
	storeConfig config.StoreConfig,
	coord *coordinator.StateCoordinator,
	tracer *tracing.Tracer,
	m *metrics.Metrics,
) *Engine {
	return &Engine{
		projectRoot: projectRoot,
		vc:          vc,
		store:       st,
		storeConfig: storeConfig,
		coordinator: coord,
		tracer:      tracer,
		metrics:     m,
	}
}

// Result is the outcome of one migration run.
type Result struct {
	Success          bool
	PhaseCompleted   int
	Error            error
	RollbackPerformed bool
	EpicsBackfilled  int
	StoriesBackfilled int
}

// Run executes all four phases. On any phase failure it deletes the
// migration branch (when one was created) and hard-resets to the
// revision recorded before the run began.
func (e *Engine) Run(ctx context.Context, opts Options) Result {
	originalRevision, err := e.vc.HeadRevision()
	if err != nil {
		return Result{Success: false, Error: fmt.Errorf("migration: read head revision: %w", err)}
	}

	originalBranch := ""
	if opts.CreateBranch {
		originalBranch, err = e.vc.GetCurrentBranch()
		if err != nil {
			return Result{Success: false, Error: fmt.Errorf("migration: read current branch: %w", err)}
		}
		if err := e.vc.CreateBranch(BranchName, true); err != nil {
			return Result{Success: false, Error: fmt.Errorf("migration: create branch: %w", err)}
		}
	}

	result := Result{Success: true}

	phases := []struct {
		name string
		run  func() error
	}{
		{"create_tables", e.phaseCreateTables},
		{"backfill_epics", func() error {
			n, err := e.phaseBackfillEpics()
			result.EpicsBackfilled = n
			return err
		}},
		{"backfill_stories", func() error {
			n, err := e.phaseBackfillStories()
			result.StoriesBackfilled = n
			return err
		}},
		{"validate", e.phaseValidate},
	}

	for i, phase := range phases {
		start := time.Now()
		var span trace.Span
		if e.tracer != nil {
			ctx, span = e.tracer.StartEnginePhaseSpan(ctx, "migration", phase.name)
		}

		err := phase.run()

		if span != nil {
			if err != nil {
				tracing.RecordError(span, err)
			}
			span.End()
		}
		if e.metrics != nil {
			outcome := "success"
			if err != nil {
				outcome = "failure"
			}
			e.metrics.RecordMigrationPhase(phase.name, outcome, time.Since(start))
		}

		if err != nil {
			result.Success = false
			result.PhaseCompleted = i
			result.Error = fmt.Errorf("migration: phase %q failed: %w", phase.name, err)

			if opts.CreateBranch {
				_ = e.vc.Checkout(originalBranch)
				_ = e.vc.DeleteBranch(BranchName, true)
			}
			if resetErr := e.vc.ResetHard(originalRevision); resetErr != nil {
				result.RollbackPerformed = false
			} else {
				result.RollbackPerformed = true
			}
			if e.metrics != nil {
				e.metrics.RecordMigrationRollback(phase.name)
			}
			return result
		}

		if err := e.vc.AddAll(); err == nil {
			_ = e.vc.Commit(fmt.Sprintf("chore(migration): checkpoint after %s", phase.name), true)
		}
	}

	if opts.CreateBranch && opts.AutoMerge {
		target := opts.TargetBranch
		if target == "" {
			target = originalBranch
		}
		if err := e.vc.Checkout(target); err != nil {
			result.Success = false
			result.Error = fmt.Errorf("migration: checkout target branch: %w", err)
			return result
		}
		if err := e.vc.Merge(BranchName, true, fmt.Sprintf("chore(migration): merge %s", BranchName)); err != nil {
			result.Success = false
			result.Error = fmt.Errorf("migration: merge: %w", err)
			return result
		}
	}

	return result
}

// phaseCreateTables applies the schema migration. golang-migrate's Up
// is idempotent: running it again against an already-migrated store
// is a no-op.
func (e *Engine) phaseCreateTables() error {
	if e.store == nil {
		return fmt.Errorf("migration: no state store configured")
	}
	return e.store.Migrate(e.storeConfig)
}

// phaseBackfillEpics discovers legacy epic-<N>.md files and inserts
// one epic_state row per file, skipping epics already present.
func (e *Engine) phaseBackfillEpics() (int, error) {
	files, err := FindEpicFiles(filepath.Join(e.projectRoot, "docs"))
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return inserted, err
		}

		parsed, ok := ParseEpicFile(path, string(content))
		if !ok {
			continue
		}

		if _, err := e.coordinator.Epics.Get(parsed.EpicNum); err == nil {
			continue
		}

		if _, err := e.coordinator.Epics.Create(service.CreateEpicRequest{
			EpicNum: parsed.EpicNum,
			Title:   parsed.Title,
		}); err != nil {
			return inserted, err
		}

		status := models.EpicStatus(normalizeEpicStatus(parsed.Status))
		total := parsed.TotalStories
		if _, err := e.coordinator.Epics.UpdateProgress(parsed.EpicNum, service.UpdateProgressRequest{
			TotalStories: &total,
			Status:       &status,
		}); err != nil {
			return inserted, err
		}

		inserted++
	}

	return inserted, nil
}

func normalizeEpicStatus(raw string) string {
	switch raw {
	case "planning":
		return string(models.EpicStatusPlanning)
	case "in_progress", "in-progress":
		return string(models.EpicStatusInProgress)
	case "completed", "complete", "done":
		return string(models.EpicStatusCompleted)
	default:
		return string(models.EpicStatusPlanning)
	}
}

// phaseBackfillStories discovers legacy story-<E>.<S>.md files,
// infers status from the file's last git commit message, and inserts
// one story_state row per file with autoUpdateEpic=false.
func (e *Engine) phaseBackfillStories() (int, error) {
	files, err := FindStoryFiles(filepath.Join(e.projectRoot, "docs"))
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return inserted, err
		}

		parsed, ok := ParseStoryFile(path, string(content))
		if !ok {
			continue
		}

		if _, err := e.coordinator.Stories.Get(parsed.EpicNum, parsed.StoryNum); err == nil {
			continue
		}

		relPath, relErr := filepath.Rel(e.projectRoot, path)
		if relErr != nil {
			relPath = path
		}
		status := inferStatusForFile(e.vc, relPath)

		var assignee *string
		if parsed.Assignee != "" {
			assignee = &parsed.Assignee
		}

		story, err := e.coordinator.Stories.Create(service.CreateStoryRequest{
			EpicNum:       parsed.EpicNum,
			StoryNum:      parsed.StoryNum,
			Title:         parsed.Title,
			Assignee:      assignee,
			Priority:      models.StoryPriority(parsed.Priority),
			EstimateHours: parsed.EstimateHours,
		})
		if err != nil {
			return inserted, err
		}

		// The inferred status can land on COMPLETED for a story that was
		// just created as PENDING, which the transition table rejects as
		// a single hop. Route through IN_PROGRESS first, same as any
		// story would pass through on its way to done.
		if status == models.StoryStatusCompleted || status == models.StoryStatusInProgress {
			if _, err := e.coordinator.Stories.Transition(story.EpicNum, story.StoryNum, service.TransitionRequest{
				NewStatus: models.StoryStatusInProgress,
			}); err != nil {
				return inserted, err
			}
		}
		if status == models.StoryStatusCompleted {
			if _, err := e.coordinator.Stories.Transition(story.EpicNum, story.StoryNum, service.TransitionRequest{
				NewStatus: models.StoryStatusCompleted,
			}); err != nil {
				return inserted, err
			}
		}

		inserted++
	}

	return inserted, nil
}

func inferStatusForFile(vc *vcs.VersionControl, relPath string) models.StoryStatus {
	commit, err := vc.LastCommitForPath(relPath)
	if err != nil || commit == nil {
		return models.StoryStatusPending
	}

	switch InferStatusFromCommitMessage(commit.Message) {
	case "completed":
		return models.StoryStatusCompleted
	case "in_progress":
		return models.StoryStatusInProgress
	default:
		return models.StoryStatusPending
	}
}

// phaseValidate re-queries the store for every discovered epic/story
// file and fails if any expected record is missing.
func (e *Engine) phaseValidate() error {
	epicFiles, err := FindEpicFiles(filepath.Join(e.projectRoot, "docs"))
	if err != nil {
		return err
	}
	for _, path := range epicFiles {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		parsed, ok := ParseEpicFile(path, string(content))
		if !ok {
			continue
		}
		if _, err := e.coordinator.Epics.Get(parsed.EpicNum); err != nil {
			return fmt.Errorf("missing epic_state row for epic %d (%s)", parsed.EpicNum, path)
		}
	}

	storyFiles, err := FindStoryFiles(filepath.Join(e.projectRoot, "docs"))
	if err != nil {
		return err
	}
	for _, path := range storyFiles {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		parsed, ok := ParseStoryFile(path, string(content))
		if !ok {
			continue
		}
		if _, err := e.coordinator.Stories.Get(parsed.EpicNum, parsed.StoryNum); err != nil {
			return fmt.Errorf("missing story_state row for story %d.%d (%s)", parsed.EpicNum, parsed.StoryNum, path)
		}
	}

	return nil
}
