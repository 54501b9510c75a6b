// Package agentctx gives agents a single place to pull project
// documents (PRD, architecture, epic/story definitions, coding
// standards) without knowing file paths, cache keys, or how usage is
// tracked. Every access is cached, lazily loaded on miss, and recorded
// to the audit trail.
package agentctx

import (
	"context"
	"time"

	"github.com/gaoforge/dev-engine/internal/cache"
	"github.com/gaoforge/dev-engine/internal/lineage"
	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/workflowctx"
)

// API composes the cache, trackers, and resolver behind Scope. A
// single API instance is typically shared across a process; each
// caller obtains its own Scope rather than mutating shared state.
type API struct {
	cache    cache.Cache
	usage    *lineage.UsageTracker
	lineage  *lineage.LineageTracker
	resolver *Resolver
}

// New constructs an API. usage/lineageTracker may be nil if usage
// tracking isn't wired for this process (e.g. a short-lived CLI
// invocation); resolution and caching still work without them.
func New(c cache.Cache, usage *lineage.UsageTracker, lineageTracker *lineage.LineageTracker, resolver *Resolver) *API {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	return &API{cache: c, usage: usage, lineage: lineageTracker, resolver: resolver}
}

// Scope binds an API to one workflow execution's context, so every
// Get* call is automatically attributed to the right feature/epic/
// story/workflow without the caller repeating them.
type Scope struct {
	api *API
	ctx workflowctx.Context
}

// NewScope returns a Scope bound to wfCtx.
func (a *API) NewScope(wfCtx workflowctx.Context) *Scope {
	return &Scope{api: a, ctx: wfCtx}
}

// GetPRD returns the feature's PRD content, or ("", false) if none exists.
func (s *Scope) GetPRD(ctx context.Context) (string, bool, error) {
	return s.getDocument(ctx, "prd")
}

// GetArchitecture returns the feature's architecture document.
func (s *Scope) GetArchitecture(ctx context.Context) (string, bool, error) {
	return s.getDocument(ctx, "architecture")
}

// GetEpicDefinition returns the scope's epic definition document.
func (s *Scope) GetEpicDefinition(ctx context.Context) (string, bool, error) {
	return s.getDocument(ctx, "epic_definition")
}

// GetStoryDefinition returns the scope's story definition document, or
// ("", false, nil) if the scope has no story number.
func (s *Scope) GetStoryDefinition(ctx context.Context) (string, bool, error) {
	if s.ctx.StoryNum == nil {
		return "", false, nil
	}
	return s.getDocument(ctx, "story_definition")
}

// GetCodingStandards returns the project's coding standards document.
func (s *Scope) GetCodingStandards(ctx context.Context) (string, bool, error) {
	return s.getDocument(ctx, "coding_standards")
}

// GetAcceptanceCriteria returns the scope's acceptance criteria
// (currently backed by the same file as the story definition).
func (s *Scope) GetAcceptanceCriteria(ctx context.Context) (string, bool, error) {
	if s.ctx.StoryNum == nil {
		return "", false, nil
	}
	return s.getDocument(ctx, "acceptance_criteria")
}

// CacheStatistics reports the underlying cache's hit/miss counters.
func (s *Scope) CacheStatistics() cache.Statistics {
	return s.api.cache.Statistics()
}

// ClearCache clears the underlying cache for every scope sharing this API.
func (s *Scope) ClearCache(ctx context.Context) error {
	return s.api.cache.Clear(ctx)
}

func (s *Scope) getDocument(ctx context.Context, docType string) (string, bool, error) {
	key := cache.Key(s.ctx.Feature, s.ctx.EpicNum, s.ctx.StoryNum, docType)

	cached, hit, err := s.api.cache.Get(ctx, key)
	if err != nil {
		return "", false, err
	}

	var content string
	if hit {
		content, _ = cached.(string)
	} else {
		loaded, found, _, loadErr := s.api.resolver.Load(docType, s.ctx)
		if loadErr != nil {
			return "", false, loadErr
		}
		if !found {
			return "", false, nil
		}
		content = loaded
		if err := s.api.cache.Set(ctx, key, content, 5*time.Minute); err != nil {
			return "", false, err
		}
	}

	s.recordUsage(docType, content, hit)
	return content, true, nil
}

func (s *Scope) recordUsage(docType, content string, cacheHit bool) {
	if s.api.usage == nil {
		return
	}

	hash := hashContent(content)
	artifactType, artifactID := artifactFor(s.ctx)
	workflowID := s.ctx.WorkflowID

	_ = s.api.usage.RecordUsage(artifactType, artifactID, hash, cacheHit, &workflowID, &s.ctx.EpicNum, storyIDPtr(s.ctx))

	if s.api.lineage != nil {
		docTypeCopy := docType
		_ = s.api.lineage.RecordUsage(lineage.RecordUsageInput{
			ArtifactType:    artifactType,
			ArtifactID:      artifactID,
			DocumentVersion: hash,
			DocumentType:    &docTypeCopy,
			WorkflowID:      &workflowID,
			WorkflowName:    &s.ctx.WorkflowName,
			EpicNum:         &s.ctx.EpicNum,
			Story:           storyIDPtr(s.ctx),
		})
	}
}

func artifactFor(c workflowctx.Context) (models.ArtifactType, string) {
	if c.StoryNum != nil {
		return models.ArtifactTypeStory, c.StoryID()
	}
	return models.ArtifactTypeEpic, c.StoryID()
}

func storyIDPtr(c workflowctx.Context) *string {
	id := c.StoryID()
	return &id
}
