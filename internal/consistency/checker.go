// Package consistency detects and repairs divergence between the
// filesystem and the StateStore using git as the tiebreaker: an
// uncommitted working tree is flagged but left alone, a record whose
// file vanished is orphaned, a file with no record is unregistered, and
// a record whose status disagrees with the file's last commit message
// is a state mismatch.
package consistency

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/gaoforge/dev-engine/internal/coordinator"
	"github.com/gaoforge/dev-engine/internal/logger"
	"github.com/gaoforge/dev-engine/internal/migration"
	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/observability/metrics"
	"github.com/gaoforge/dev-engine/internal/observability/tracing"
	"github.com/gaoforge/dev-engine/internal/service"
	"github.com/gaoforge/dev-engine/internal/vcs"
)

// Issue is a single detected divergence.
type Issue struct {
	Type        string // "uncommitted", "orphaned_record", "unregistered_file", "state_mismatch"
	Severity    string // "warning", "error"
	Description string
	FilePath    string
	EpicNum     *int
	StoryNum    *int
	DBState     string
	GitState    string
}

// Report is the outcome of one consistency check.
type Report struct {
	Timestamp          time.Time
	UncommittedChanges []string
	OrphanedRecords    []Issue
	UnregisteredFiles  []Issue
	StateMismatches    []Issue
	AllIssues          []Issue
}

// HasIssues reports whether the report found anything to repair or warn about.
func (r *Report) HasIssues() bool {
	return len(r.AllIssues) > 0
}

// TotalIssues returns the count of every finding across all four checks.
func (r *Report) TotalIssues() int {
	return len(r.AllIssues)
}

// Summary renders a human-readable one-line overview of the report, for
// CLI/log output rather than programmatic consumption.
func (r *Report) Summary() string {
	if !r.HasIssues() {
		return fmt.Sprintf("consistency check clean as of %s", humanize.Time(r.Timestamp))
	}
	return fmt.Sprintf(
		"%s: %s (uncommitted %d, orphaned %d, unregistered %d, mismatched %d)",
		humanize.Time(r.Timestamp),
		humanize.Comma(int64(r.TotalIssues()))+" issue(s) found",
		len(r.UncommittedChanges), len(r.OrphanedRecords), len(r.UnregisteredFiles), len(r.StateMismatches),
	)
}

// Checker cross-references the StateStore against the filesystem and
// git history for one project.
type Checker struct {
	projectRoot string
	vc          *vcs.VersionControl
	coordinator *coordinator.StateCoordinator
	tracer      *tracing.Tracer
	metrics     *metrics.Metrics
}

// New constructs a Checker. tracer and m may be nil.
func New(
	projectRoot string,
	vc *vcs.VersionControl,
	coord *coordinator.StateCoordinator,
	tracer *tracing.Tracer,
	m *metrics.Metrics,
) *Checker {
	return &Checker{projectRoot: projectRoot, vc: vc, coordinator: coord, tracer: tracer, metrics: m}
}

// Check runs all four divergence checks and returns the combined report.
func (c *Checker) Check() (*Report, error) {
	log := logger.WithFields(map[string]interface{}{"service": "consistency_checker"})
	start := time.Now()

	report := &Report{Timestamp: time.Now().UTC()}

	uncommitted, err := c.checkUncommittedChanges()
	if err != nil {
		return nil, err
	}
	report.UncommittedChanges = uncommitted
	for _, path := range uncommitted {
		report.AllIssues = append(report.AllIssues, Issue{
			Type:        "uncommitted",
			Severity:    "warning",
			Description: fmt.Sprintf("uncommitted changes in %s", path),
			FilePath:    path,
		})
	}

	orphaned, err := c.checkOrphanedRecords()
	if err != nil {
		return nil, err
	}
	report.OrphanedRecords = orphaned
	report.AllIssues = append(report.AllIssues, orphaned...)

	unregistered, err := c.checkUnregisteredFiles()
	if err != nil {
		return nil, err
	}
	report.UnregisteredFiles = unregistered
	report.AllIssues = append(report.AllIssues, unregistered...)

	mismatches, err := c.checkStateMismatches()
	if err != nil {
		return nil, err
	}
	report.StateMismatches = mismatches
	report.AllIssues = append(report.AllIssues, mismatches...)

	if c.metrics != nil {
		c.metrics.RecordConsistencyCheck(time.Since(start), map[string]int{
			"uncommitted":       len(report.UncommittedChanges),
			"orphaned_record":   len(report.OrphanedRecords),
			"unregistered_file": len(report.UnregisteredFiles),
			"state_mismatch":    len(report.StateMismatches),
		})
	}

	log.WithField("total_issues", report.TotalIssues()).Info("consistency check complete")

	return report, nil
}

func (c *Checker) checkUncommittedChanges() ([]string, error) {
	status, err := c.vc.Status()
	if err != nil {
		return nil, fmt.Errorf("consistency: read git status: %w", err)
	}

	var files []string
	files = append(files, status.Staged...)
	files = append(files, status.Unstaged...)
	files = append(files, status.Untracked...)
	return files, nil
}

func (c *Checker) checkOrphanedRecords() ([]Issue, error) {
	var issues []Issue

	epics, err := c.coordinator.Epics.ListAll()
	if err != nil {
		return nil, fmt.Errorf("consistency: list epics: %w", err)
	}
	for _, epic := range epics {
		relPath, ok := filePathFromMetadata(epic.Metadata)
		if !ok {
			continue
		}
		full := filepath.Join(c.projectRoot, relPath)
		if _, err := os.Stat(full); err == nil {
			continue
		}

		deleted, derr := c.vc.FileDeletedInHistory(relPath)
		tracked, terr := c.vc.IsFileTracked(relPath)
		if derr != nil && terr != nil {
			continue
		}
		if deleted || !tracked {
			epicNum := epic.EpicNum
			issues = append(issues, Issue{
				Type:        "orphaned_record",
				Severity:    "error",
				Description: fmt.Sprintf("epic %d file deleted from filesystem", epic.EpicNum),
				FilePath:    relPath,
				EpicNum:     &epicNum,
			})
		}
	}

	stories, err := c.coordinator.Stories.ListAll()
	if err != nil {
		return nil, fmt.Errorf("consistency: list stories: %w", err)
	}
	for _, story := range stories {
		relPath, ok := filePathFromMetadata(story.Metadata)
		if !ok {
			continue
		}
		full := filepath.Join(c.projectRoot, relPath)
		if _, err := os.Stat(full); err == nil {
			continue
		}

		deleted, derr := c.vc.FileDeletedInHistory(relPath)
		tracked, terr := c.vc.IsFileTracked(relPath)
		if derr != nil && terr != nil {
			continue
		}
		if deleted || !tracked {
			epicNum, storyNum := story.EpicNum, story.StoryNum
			issues = append(issues, Issue{
				Type:        "orphaned_record",
				Severity:    "error",
				Description: fmt.Sprintf("story %d.%d file deleted from filesystem", story.EpicNum, story.StoryNum),
				FilePath:    relPath,
				EpicNum:     &epicNum,
				StoryNum:    &storyNum,
			})
		}
	}

	return issues, nil
}

func (c *Checker) checkUnregisteredFiles() ([]Issue, error) {
	var issues []Issue

	docsDir := filepath.Join(c.projectRoot, "docs")
	if _, err := os.Stat(docsDir); os.IsNotExist(err) {
		return issues, nil
	}

	epicFiles, err := migration.FindEpicFiles(docsDir)
	if err != nil {
		return nil, fmt.Errorf("consistency: find epic files: %w", err)
	}
	for _, path := range epicFiles {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		parsed, ok := migration.ParseEpicFile(path, string(content))
		if !ok {
			continue
		}
		if _, err := c.coordinator.Epics.Get(parsed.EpicNum); err == nil {
			continue
		}
		epicNum := parsed.EpicNum
		issues = append(issues, Issue{
			Type:        "unregistered_file",
			Severity:    "warning",
			Description: fmt.Sprintf("epic file %s not registered", filepath.Base(path)),
			FilePath:    path,
			EpicNum:     &epicNum,
		})
	}

	storyFiles, err := migration.FindStoryFiles(docsDir)
	if err != nil {
		return nil, fmt.Errorf("consistency: find story files: %w", err)
	}
	for _, path := range storyFiles {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		parsed, ok := migration.ParseStoryFile(path, string(content))
		if !ok {
			continue
		}
		if _, err := c.coordinator.Stories.Get(parsed.EpicNum, parsed.StoryNum); err == nil {
			continue
		}
		epicNum, storyNum := parsed.EpicNum, parsed.StoryNum
		issues = append(issues, Issue{
			Type:        "unregistered_file",
			Severity:    "warning",
			Description: fmt.Sprintf("story file %s not registered", filepath.Base(path)),
			FilePath:    path,
			EpicNum:     &epicNum,
			StoryNum:    &storyNum,
		})
	}

	return issues, nil
}

func (c *Checker) checkStateMismatches() ([]Issue, error) {
	var issues []Issue

	stories, err := c.coordinator.Stories.ListAll()
	if err != nil {
		return nil, fmt.Errorf("consistency: list stories: %w", err)
	}
	for _, story := range stories {
		relPath, ok := filePathFromMetadata(story.Metadata)
		if !ok {
			continue
		}
		full := filepath.Join(c.projectRoot, relPath)
		if _, err := os.Stat(full); err != nil {
			continue
		}

		gitState := inferGitState(c.vc, relPath)
		dbState := dbStateLabel(story.Status)

		if gitState != dbState {
			epicNum, storyNum := story.EpicNum, story.StoryNum
			issues = append(issues, Issue{
				Type:        "state_mismatch",
				Severity:    "warning",
				Description: fmt.Sprintf("story %d.%d state mismatch", story.EpicNum, story.StoryNum),
				FilePath:    relPath,
				EpicNum:     &epicNum,
				StoryNum:    &storyNum,
				DBState:     dbState,
				GitState:    gitState,
			})
		}
	}

	return issues, nil
}

// Repair fixes every issue in report except uncommitted changes, which
// require the caller to commit first. createCommit records the repair as
// an empty commit unless the working tree already carries the writes.
// Issues are repaired in order (orphaned records, unregistered files,
// state mismatches); the first issue that fails stops the run and its
// error is returned, earlier repairs stay in place and no commit is made.
func (c *Checker) Repair(report *Report, createCommit bool) error {
	log := logger.WithFields(map[string]interface{}{"service": "consistency_checker"})

	if !report.HasIssues() {
		log.Info("no consistency issues to repair")
		return nil
	}

	if len(report.UncommittedChanges) > 0 {
		log.WithField("count", len(report.UncommittedChanges)).Warn("uncommitted changes present, commit before repairing")
	}

	for _, issue := range report.OrphanedRecords {
		if err := c.repairOrphanedRecord(issue); err != nil {
			return err
		}
		if c.metrics != nil {
			c.metrics.RecordConsistencyRepair("orphaned_record")
		}
	}

	for _, issue := range report.UnregisteredFiles {
		if err := c.repairUnregisteredFile(issue); err != nil {
			return err
		}
		if c.metrics != nil {
			c.metrics.RecordConsistencyRepair("unregistered_file")
		}
	}

	for _, issue := range report.StateMismatches {
		if err := c.repairStateMismatch(issue); err != nil {
			return err
		}
		if c.metrics != nil {
			c.metrics.RecordConsistencyRepair("state_mismatch")
		}
	}

	if createCommit {
		message := fmt.Sprintf(
			"chore(consistency): repair %d consistency issues\n\nRepaired:\n- Orphaned records: %d\n- Unregistered files: %d\n- State mismatches: %d\n",
			report.TotalIssues(), len(report.OrphanedRecords), len(report.UnregisteredFiles), len(report.StateMismatches),
		)
		if err := c.vc.AddAll(); err != nil {
			return fmt.Errorf("consistency: stage repair: %w", err)
		}
		if err := c.vc.Commit(message, true); err != nil {
			return fmt.Errorf("consistency: commit repair: %w", err)
		}
	}

	log.WithField("repaired", report.TotalIssues()).Info("consistency repair complete")
	return nil
}

func (c *Checker) repairOrphanedRecord(issue Issue) error {
	if issue.StoryNum != nil {
		return c.coordinator.Stories.Delete(*issue.EpicNum, *issue.StoryNum)
	}
	if issue.EpicNum != nil {
		return c.coordinator.Epics.Delete(*issue.EpicNum)
	}
	return nil
}

func (c *Checker) repairUnregisteredFile(issue Issue) error {
	content, err := os.ReadFile(issue.FilePath)
	if err != nil {
		return fmt.Errorf("consistency: read %s: %w", issue.FilePath, err)
	}

	if issue.StoryNum != nil {
		parsed, ok := migration.ParseStoryFile(issue.FilePath, string(content))
		if !ok {
			return nil
		}
		relPath, relErr := filepath.Rel(c.projectRoot, issue.FilePath)
		if relErr != nil {
			relPath = issue.FilePath
		}
		status := gitStateToStoryStatus(inferGitState(c.vc, relPath))

		var assignee *string
		if parsed.Assignee != "" {
			assignee = &parsed.Assignee
		}
		story, err := c.coordinator.Stories.Create(service.CreateStoryRequest{
			EpicNum:       parsed.EpicNum,
			StoryNum:      parsed.StoryNum,
			Title:         parsed.Title,
			Assignee:      assignee,
			Priority:      models.StoryPriority(parsed.Priority),
			EstimateHours: parsed.EstimateHours,
			Metadata:      models.JSONMap{"file_path": relPath},
		})
		if err != nil {
			return fmt.Errorf("consistency: register story %d.%d: %w", parsed.EpicNum, parsed.StoryNum, err)
		}
		if status == models.StoryStatusInProgress || status == models.StoryStatusCompleted {
			if _, err := c.coordinator.Stories.Transition(story.EpicNum, story.StoryNum, service.TransitionRequest{NewStatus: models.StoryStatusInProgress}); err != nil {
				return err
			}
		}
		if status == models.StoryStatusCompleted {
			if _, err := c.coordinator.Stories.Transition(story.EpicNum, story.StoryNum, service.TransitionRequest{NewStatus: models.StoryStatusCompleted}); err != nil {
				return err
			}
		}
		return nil
	}

	if issue.EpicNum != nil {
		parsed, ok := migration.ParseEpicFile(issue.FilePath, string(content))
		if !ok {
			return nil
		}
		relPath, relErr := filepath.Rel(c.projectRoot, issue.FilePath)
		if relErr != nil {
			relPath = issue.FilePath
		}
		if _, err := c.coordinator.Epics.Create(service.CreateEpicRequest{
			EpicNum:  parsed.EpicNum,
			Title:    parsed.Title,
			Metadata: models.JSONMap{"file_path": relPath},
		}); err != nil {
			return fmt.Errorf("consistency: register epic %d: %w", parsed.EpicNum, err)
		}
	}

	return nil
}

func (c *Checker) repairStateMismatch(issue Issue) error {
	if issue.StoryNum == nil {
		return nil
	}
	newStatus := gitStateToStoryStatus(issue.GitState)

	story, err := c.coordinator.Stories.Get(*issue.EpicNum, *issue.StoryNum)
	if err != nil {
		return err
	}
	if story.Status == newStatus {
		return nil
	}

	// The transition table only allows single hops, so a jump from
	// PENDING straight to COMPLETED is routed through IN_PROGRESS.
	if story.Status == models.StoryStatusPending && newStatus == models.StoryStatusCompleted {
		if _, err := c.coordinator.Stories.Transition(*issue.EpicNum, *issue.StoryNum, service.TransitionRequest{NewStatus: models.StoryStatusInProgress}); err != nil {
			return err
		}
	}

	_, err = c.coordinator.Stories.Transition(*issue.EpicNum, *issue.StoryNum, service.TransitionRequest{NewStatus: newStatus})
	return err
}

func filePathFromMetadata(metadata models.JSONMap) (string, bool) {
	if metadata == nil {
		return "", false
	}
	raw, ok := metadata["file_path"]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func inferGitState(vc *vcs.VersionControl, relPath string) string {
	commit, err := vc.LastCommitForPath(relPath)
	if err != nil || commit == nil {
		return "pending"
	}
	return migration.InferStatusFromCommitMessage(commit.Message)
}

func dbStateLabel(status models.StoryStatus) string {
	switch status {
	case models.StoryStatusCompleted:
		return "completed"
	case models.StoryStatusInProgress, models.StoryStatusTesting, models.StoryStatusReview:
		return "in_progress"
	default:
		return "pending"
	}
}

func gitStateToStoryStatus(state string) models.StoryStatus {
	switch state {
	case "completed":
		return models.StoryStatusCompleted
	case "in_progress":
		return models.StoryStatusInProgress
	default:
		return models.StoryStatusPending
	}
}
