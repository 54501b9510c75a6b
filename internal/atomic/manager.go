// Package atomic implements the transactional envelope wrapping
// filesystem writes, database writes, and a version-control commit
// into a single operation that either fully succeeds or is rolled
// back to its pre-operation state.
package atomic

import (
	"context"
	"fmt"
	"time"

	"github.com/gaoforge/dev-engine/internal/coordinator"
	"github.com/gaoforge/dev-engine/internal/fsdocs"
	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/observability/metrics"
	"github.com/gaoforge/dev-engine/internal/observability/tracing"
	"github.com/gaoforge/dev-engine/internal/pathtemplate"
	"github.com/gaoforge/dev-engine/internal/service"
	"github.com/gaoforge/dev-engine/internal/vcs"
)

// StateManager is the transactional envelope: checkpoint the
// working tree, write files, write database rows, commit; roll back
// to the checkpoint on any failure.
//
// Operations are not designed to run concurrently against the same
// working tree — the clean-tree pre-check plus the external VCS
// serialize them de facto.
type StateManager struct {
	vc          *vcs.VersionControl
	structure   *fsdocs.StructureManager
	coordinator *coordinator.StateCoordinator
	templates   *pathtemplate.PathTemplates
	tracer      *tracing.Tracer
	metrics     *metrics.Metrics
}

// New constructs a StateManager. tracer and m may be nil, in which
// case tracing/metrics are skipped.
func New(
	vc *vcs.VersionControl,
	structure *fsdocs.StructureManager,
	coord *coordinator.StateCoordinator,
	templates *pathtemplate.PathTemplates,
	tracer *tracing.Tracer,
	m *metrics.Metrics,
) *StateManager {
	return &StateManager{vc: vc, structure: structure, coordinator: coord, templates: templates, tracer: tracer, metrics: m}
}

// checkpoint records HEAD after verifying the working tree is clean.
func (m *StateManager) checkpoint() (string, error) {
	clean, err := m.vc.IsWorkingTreeClean()
	if err != nil {
		return "", &VersionControlError{Operation: "status", Err: err}
	}
	if !clean {
		status, err := m.vc.Status()
		if err != nil {
			return "", &VersionControlError{Operation: "status", Err: err}
		}
		return "", &WorkingTreeDirtyError{Staged: status.Staged, Unstaged: status.Unstaged, Untracked: status.Untracked}
	}

	head, err := m.vc.HeadRevision()
	if err != nil {
		return "", &VersionControlError{Operation: "head_revision", Err: err}
	}
	return head, nil
}

// rollback resets the working tree to checkpoint. If reset itself
// fails, the original error and the rollback error are bundled into a
// TransactionRollbackError.
func (m *StateManager) rollback(checkpoint string, original error) error {
	if err := m.vc.ResetHard(checkpoint); err != nil {
		return &TransactionRollbackError{Original: original, Rollback: err}
	}
	return original
}

func (m *StateManager) commit(message string, allowEmpty bool) error {
	if err := m.vc.AddAll(); err != nil {
		return &VersionControlError{Operation: "add_all", Err: err}
	}
	if err := m.vc.Commit(message, allowEmpty); err != nil {
		return &VersionControlError{Operation: "commit", Err: err}
	}
	return nil
}

func (m *StateManager) withSpan(ctx context.Context, operation string, fn func(context.Context) error) error {
	start := time.Now()
	outcome := "success"

	var spanCtx context.Context = ctx
	var endSpan func(error)
	if m.tracer != nil {
		c, span := m.tracer.StartAtomicSpan(ctx, operation)
		spanCtx = c
		endSpan = func(err error) {
			if err != nil {
				tracing.RecordError(span, err)
			}
			span.End()
		}
	}

	err := fn(spanCtx)
	if err != nil {
		outcome = "failure"
	}

	if endSpan != nil {
		endSpan(err)
	}
	if m.metrics != nil {
		m.metrics.RecordAtomicOperation(operation, outcome, time.Since(start))
		if err != nil {
			m.metrics.RecordAtomicRollback(operation, reasonFor(err))
		}
	}

	return err
}

func reasonFor(err error) string {
	switch err.(type) {
	case *WorkingTreeDirtyError:
		return "working_tree_dirty"
	case *FilesystemIOError:
		return "filesystem_io"
	case *StateStoreError:
		return "state_store"
	case *VersionControlError:
		return "version_control"
	case *TransactionRollbackError:
		return "transaction_rollback"
	default:
		return "other"
	}
}

// CreateFeatureRequest is the input to CreateFeature.
type CreateFeatureRequest struct {
	Name        string
	Scope       models.FeatureScope
	ScaleLevel  models.ScaleLevel
	Description *string
	Owner       *string
	CommitMessage string
}

// CreateFeature creates a feature's document structure and database
// row atomically.
func (m *StateManager) CreateFeature(ctx context.Context, req CreateFeatureRequest) (*models.Feature, error) {
	var feature *models.Feature

	err := m.withSpan(ctx, "createFeature", func(ctx context.Context) error {
		checkpoint, err := m.checkpoint()
		if err != nil {
			return err
		}

		if _, err := m.structure.InitializeFeatureFolder(req.Name, req.ScaleLevel, req.Description, false); err != nil {
			return m.rollback(checkpoint, &FilesystemIOError{Path: req.Name, Err: err})
		}

		feature, err = m.coordinator.Features.Create(service.CreateFeatureRequest{
			Name:        req.Name,
			Scope:       req.Scope,
			ScaleLevel:  req.ScaleLevel,
			Description: req.Description,
			Owner:       req.Owner,
		})
		if err != nil {
			return m.rollback(checkpoint, &StateStoreError{Operation: "create_feature", Err: err})
		}

		message := req.CommitMessage
		if message == "" {
			message = fmt.Sprintf("feat(%s): create feature", req.Name)
		}
		if err := m.commit(message, true); err != nil {
			return m.rollback(checkpoint, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return feature, nil
}

// CreateEpicRequest is the input to CreateEpic.
type CreateEpicRequest struct {
	EpicNum       int
	Title         string
	Feature       *string
	FileContent   string
	CommitMessage string
}

// CreateEpic writes the epic file at the legacy_epic_location path,
// inserts the epic_state row, and commits, atomically.
func (m *StateManager) CreateEpic(ctx context.Context, req CreateEpicRequest) (*models.Epic, error) {
	var epic *models.Epic

	err := m.withSpan(ctx, "createEpic", func(ctx context.Context) error {
		checkpoint, err := m.checkpoint()
		if err != nil {
			return err
		}

		filePath, err := m.templates.Render("legacy_epic_location", pathtemplate.PathVars{Epic: req.EpicNum})
		if err != nil {
			return m.rollback(checkpoint, &FilesystemIOError{Path: "legacy_epic_location", Err: err})
		}
		if err := m.structure.WriteFile(filePath, req.FileContent); err != nil {
			return m.rollback(checkpoint, &FilesystemIOError{Path: filePath, Err: err})
		}

		epic, err = m.coordinator.Epics.Create(service.CreateEpicRequest{
			EpicNum:  req.EpicNum,
			Title:    req.Title,
			Feature:  req.Feature,
			Metadata: models.JSONMap{"file_path": filePath},
		})
		if err != nil {
			return m.rollback(checkpoint, &StateStoreError{Operation: "create_epic", Err: err})
		}

		message := req.CommitMessage
		if message == "" {
			message = fmt.Sprintf("feat(epic-%d): create %s", req.EpicNum, req.Title)
		}
		if err := m.commit(message, true); err != nil {
			return m.rollback(checkpoint, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return epic, nil
}

// CreateStoryRequest is the input to CreateStory.
type CreateStoryRequest struct {
	EpicNum        int
	StoryNum       int
	Title          string
	FilePath       string
	FileBody       string
	Priority       models.StoryPriority
	AutoUpdateEpic bool
	CommitMessage  string
}

// CreateStory writes the story file, inserts the story_state row
// (optionally incrementing the parent epic's totalStories), and
// commits, atomically. FileBody is written only when FilePath is set.
func (m *StateManager) CreateStory(ctx context.Context, req CreateStoryRequest) (*models.Story, error) {
	var story *models.Story

	err := m.withSpan(ctx, "createStory", func(ctx context.Context) error {
		checkpoint, err := m.checkpoint()
		if err != nil {
			return err
		}

		if req.FilePath != "" {
			if err := m.structure.WriteFile(req.FilePath, req.FileBody); err != nil {
				return m.rollback(checkpoint, &FilesystemIOError{Path: req.FilePath, Err: err})
			}
		}

		var metadata models.JSONMap
		if req.FilePath != "" {
			metadata = models.JSONMap{"file_path": req.FilePath}
		}

		story, err = m.coordinator.CreateStory(coordinator.CreateStoryRequest{
			CreateStoryRequest: service.CreateStoryRequest{
				EpicNum:  req.EpicNum,
				StoryNum: req.StoryNum,
				Title:    req.Title,
				Priority: req.Priority,
				Metadata: metadata,
			},
			AutoUpdateEpic: req.AutoUpdateEpic,
		})
		if err != nil {
			return m.rollback(checkpoint, &StateStoreError{Operation: "create_story", Err: err})
		}

		message := req.CommitMessage
		if message == "" {
			message = fmt.Sprintf("feat(story-%d.%d): create %s", req.EpicNum, req.StoryNum, req.Title)
		}
		if err := m.commit(message, true); err != nil {
			return m.rollback(checkpoint, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return story, nil
}

// TransitionStoryRequest is the input to TransitionStory.
type TransitionStoryRequest struct {
	EpicNum        int
	StoryNum       int
	NewStatus      models.StoryStatus
	BlockedReason  *string
	ActualHours    *float64
	AutoUpdateEpic bool
	CommitMessage  string
}

// TransitionStory applies a status change (optionally completing the
// story and updating the parent epic's progress) and commits, with no
// filesystem write of its own. Empty commits are permitted since
// status-only transitions have nothing new to add.
func (m *StateManager) TransitionStory(ctx context.Context, req TransitionStoryRequest) (*models.Story, error) {
	var story *models.Story

	err := m.withSpan(ctx, "transitionStory", func(ctx context.Context) error {
		checkpoint, err := m.checkpoint()
		if err != nil {
			return err
		}

		if req.NewStatus == models.StoryStatusCompleted {
			story, err = m.coordinator.CompleteStory(req.EpicNum, req.StoryNum, req.ActualHours, req.AutoUpdateEpic)
		} else {
			story, err = m.coordinator.Stories.Transition(req.EpicNum, req.StoryNum, service.TransitionRequest{
				NewStatus:     req.NewStatus,
				BlockedReason: req.BlockedReason,
			})
		}
		if err != nil {
			return m.rollback(checkpoint, &StateStoreError{Operation: "transition_story", Err: err})
		}

		message := req.CommitMessage
		if message == "" {
			message = fmt.Sprintf("chore(story-%d.%d): transition to %s", req.EpicNum, req.StoryNum, story.Status)
		}
		if err := m.commit(message, true); err != nil {
			return m.rollback(checkpoint, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return story, nil
}
