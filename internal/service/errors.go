// Package service implements per-entity business logic on top of
// internal/store: validation, status transitions, and cross-field
// invariants the repository layer doesn't enforce.
package service

import "errors"

var (
	// ErrNotFound is returned when a lookup by key finds no row.
	ErrNotFound = errors.New("service: entity not found")

	// ErrDuplicateName is returned when a uniqueness rule would be
	// violated: a Feature name, an epic number, or an (epic, story) pair.
	ErrDuplicateName = errors.New("service: duplicate name")

	// ErrInvalidTransition is returned when a status transition request
	// is not allowed from the entity's current status.
	ErrInvalidTransition = errors.New("service: invalid status transition")

	// ErrAlreadyPromoted is returned by ActionItemService.Promote when an
	// epic already has a promoted action item and force was not set.
	ErrAlreadyPromoted = errors.New("service: epic already has a promoted action item")
)
