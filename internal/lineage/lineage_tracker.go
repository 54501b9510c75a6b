package lineage

import (
	"time"

	"github.com/google/uuid"

	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/observability/metrics"
	"github.com/gaoforge/dev-engine/internal/store"
)

// LineageTracker records which document (and which version of it)
// informed which artifact, building the PRD -> architecture -> epic ->
// story -> code chain used for compliance and staleness queries.
type LineageTracker struct {
	repo    *store.LineageRepository
	metrics *metrics.Metrics
}

// NewLineageTracker constructs a LineageTracker over repo.
func NewLineageTracker(repo *store.LineageRepository, m *metrics.Metrics) *LineageTracker {
	return &LineageTracker{repo: repo, metrics: m}
}

// RecordUsageInput is the input to RecordUsage.
type RecordUsageInput struct {
	ArtifactType    models.ArtifactType
	ArtifactID      string
	DocumentVersion string
	DocumentID      *string
	DocumentPath    *string
	DocumentType    *string
	WorkflowID      *uuid.UUID
	WorkflowName    *string
	EpicNum         *int
	Story           *string
}

// RecordUsage appends a lineage record.
func (t *LineageTracker) RecordUsage(in RecordUsageInput) error {
	start := time.Now()

	record := &models.LineageRecord{
		ArtifactType:    in.ArtifactType,
		ArtifactID:      in.ArtifactID,
		DocumentVersion: in.DocumentVersion,
		DocumentID:      in.DocumentID,
		DocumentPath:    in.DocumentPath,
		DocumentType:    in.DocumentType,
		WorkflowID:      in.WorkflowID,
		WorkflowName:    in.WorkflowName,
		EpicNum:         in.EpicNum,
		Story:           in.Story,
		AccessedAt:      time.Now().UTC(),
	}

	if err := t.repo.Append(record); err != nil {
		return err
	}

	if t.metrics != nil {
		t.metrics.RecordTrackerAppend("lineage", time.Since(start))
	}
	return nil
}

// ArtifactContext returns every document recorded as having informed
// the given artifact, ordered by document-type hierarchy
// (prd < architecture < epic < story < code < test < doc < other).
func (t *LineageTracker) ArtifactContext(artifactType models.ArtifactType, artifactID string) ([]models.LineageRecord, error) {
	return t.repo.ListByArtifact(artifactType, artifactID)
}

// ContextLineage is an alias for ArtifactContext: the full lineage
// chain for an artifact, root document first.
func (t *LineageTracker) ContextLineage(artifactType models.ArtifactType, artifactID string) ([]models.LineageRecord, error) {
	return t.ArtifactContext(artifactType, artifactID)
}

// WorkflowContext returns every document accessed during a workflow
// execution, in access order.
func (t *LineageTracker) WorkflowContext(workflowID uuid.UUID) ([]models.LineageRecord, error) {
	records, err := t.repo.List(map[string]interface{}{"workflow_id": workflowID}, "accessed_at asc", 0, 0)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// StaleUsage is a lineage record whose recorded document version no
// longer matches the document's current content hash.
type StaleUsage struct {
	Record          models.LineageRecord
	RecordedVersion string
	CurrentVersion  string
}

// DetectStaleUsage compares every lineage record that names a
// document id against currentVersions (documentID -> current content
// hash) and returns the records whose recorded version has drifted.
func (t *LineageTracker) DetectStaleUsage(currentVersions map[string]string) ([]StaleUsage, error) {
	records, err := t.repo.List(nil, "accessed_at desc", 0, 0)
	if err != nil {
		return nil, err
	}

	var stale []StaleUsage
	for _, r := range records {
		if r.DocumentID == nil {
			continue
		}
		current, ok := currentVersions[*r.DocumentID]
		if !ok || current == r.DocumentVersion {
			continue
		}
		stale = append(stale, StaleUsage{
			Record:          r,
			RecordedVersion: r.DocumentVersion,
			CurrentVersion:  current,
		})
	}
	return stale, nil
}
