// Package workflowctx holds the in-memory, immutable context a workflow
// carries through its phases: decisions made, artifacts produced, errors
// hit, and the phase history. Every transformer returns a new value
// rather than mutating the receiver, so a context can be handed to
// concurrent steps without a lock.
package workflowctx

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle status of a running workflow.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusPaused    Status = "paused"
)

// PhaseTransition records one completed phase: its name, when it ended,
// and how long the workflow spent in it.
type PhaseTransition struct {
	Phase     string
	Timestamp time.Time
	Duration  *time.Duration
}

// Context is the immutable snapshot passed through a workflow's steps.
// A derived Context may share slices and maps with the one it came from;
// each transformer copies the field it changes before changing it, so no
// slice or map is ever modified in place.
type Context struct {
	WorkflowID   uuid.UUID
	EpicNum      int
	StoryNum     *int
	Feature      string
	WorkflowName string

	CurrentPhase string
	PhaseHistory []PhaseTransition
	Decisions    map[string]interface{}
	Artifacts    []string
	Errors       []string
	Status       Status

	CreatedAt time.Time
	UpdatedAt time.Time
	Metadata  map[string]interface{}
	Tags      []string
}

// New constructs a fresh Context in the initialization phase, running status.
func New(workflowID uuid.UUID, epicNum int, storyNum *int, feature, workflowName string) Context {
	now := time.Now().UTC()
	return Context{
		WorkflowID:   workflowID,
		EpicNum:      epicNum,
		StoryNum:     storyNum,
		Feature:      feature,
		WorkflowName: workflowName,
		CurrentPhase: "initialization",
		Status:       StatusRunning,
		Decisions:    map[string]interface{}{},
		CreatedAt:    now,
		UpdatedAt:    now,
		Metadata:     map[string]interface{}{},
	}
}

// StoryID renders the composite identity as "epic.story", or just "epic"
// when the context is epic-scoped (StoryNum is nil).
func (c Context) StoryID() string {
	if c.StoryNum != nil {
		return itoa(c.EpicNum) + "." + itoa(*c.StoryNum)
	}
	return itoa(c.EpicNum)
}

// AddDecision returns a copy of c with name/value recorded among its decisions.
func (c Context) AddDecision(name string, value interface{}) Context {
	next := c.shallowCopy()
	next.Decisions = copyAnyMap(c.Decisions)
	next.Decisions[name] = value
	next.UpdatedAt = time.Now().UTC()
	return next
}

// AddArtifact returns a copy of c with path appended to its artifact list.
func (c Context) AddArtifact(path string) Context {
	next := c.shallowCopy()
	next.Artifacts = append(copyStrings(c.Artifacts), path)
	next.UpdatedAt = time.Now().UTC()
	return next
}

// AddError returns a copy of c with message appended to its error list.
func (c Context) AddError(message string) Context {
	next := c.shallowCopy()
	next.Errors = append(copyStrings(c.Errors), message)
	next.UpdatedAt = time.Now().UTC()
	return next
}

// TransitionPhase returns a copy of c in the new phase, with the
// outgoing phase appended to the phase history along with the time
// spent in it since the previous transition (nil on the very first
// transition).
func (c Context) TransitionPhase(phase string) Context {
	now := time.Now().UTC()

	var duration *time.Duration
	if len(c.PhaseHistory) > 0 {
		last := c.PhaseHistory[len(c.PhaseHistory)-1]
		d := now.Sub(last.Timestamp)
		duration = &d
	}

	transition := PhaseTransition{Phase: c.CurrentPhase, Timestamp: now, Duration: duration}

	next := c.shallowCopy()
	next.PhaseHistory = append(copyTransitions(c.PhaseHistory), transition)
	next.CurrentPhase = phase
	next.UpdatedAt = now
	return next
}

// WithStatus returns a copy of c with its status changed.
func (c Context) WithStatus(status Status) Context {
	next := c.shallowCopy()
	next.Status = status
	next.UpdatedAt = time.Now().UTC()
	return next
}

func (c Context) shallowCopy() Context {
	return c
}

func copyAnyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func copyTransitions(t []PhaseTransition) []PhaseTransition {
	out := make([]PhaseTransition, len(t))
	copy(out, t)
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
