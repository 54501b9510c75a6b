// Package store implements the StateStore (C2): an embedded relational
// database — SQLite by default, PostgreSQL as an alternate driver — that
// holds every entity table, the append-only audit/usage/lineage tables,
// and the golang-migrate migration registry.
package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel repository errors, translated from GORM/database-driver errors
// so callers never need to import gorm directly.
var (
	ErrNotFound     = errors.New("store: record not found")
	ErrInvalidKey   = errors.New("store: invalid key")
	ErrDuplicateKey = errors.New("store: duplicate key violation")
	ErrForeignKey   = errors.New("store: foreign key constraint violation")
)

// BaseRepository provides common CRUD operations for an entity keyed by a
// single column of type K (uuid.UUID for Feature/ActionItem/Ceremony/
// Learning, int for Epic, uint for Story's surrogate ID).
type BaseRepository[T any, K any] struct {
	db        *gorm.DB
	keyColumn string
}

// NewBaseRepository creates a new base repository instance over the given
// primary-key column name.
func NewBaseRepository[T any, K any](db *gorm.DB, keyColumn string) *BaseRepository[T, K] {
	return &BaseRepository[T, K]{db: db, keyColumn: keyColumn}
}

// Create inserts a new entity row.
func (r *BaseRepository[T, K]) Create(entity *T) error {
	if err := r.db.Create(entity).Error; err != nil {
		return r.handleDBError(err)
	}
	return nil
}

// GetByKey retrieves an entity by its primary key.
func (r *BaseRepository[T, K]) GetByKey(key K) (*T, error) {
	var entity T
	if err := r.db.Where(fmt.Sprintf("%s = ?", r.keyColumn), key).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, r.handleDBError(err)
	}
	return &entity, nil
}

// Update saves a full entity row.
func (r *BaseRepository[T, K]) Update(entity *T) error {
	if err := r.db.Save(entity).Error; err != nil {
		return r.handleDBError(err)
	}
	return nil
}

// Delete removes an entity row by its primary key.
func (r *BaseRepository[T, K]) Delete(key K) error {
	var entity T
	if err := r.db.Where(fmt.Sprintf("%s = ?", r.keyColumn), key).Delete(&entity).Error; err != nil {
		return r.handleDBError(err)
	}
	return nil
}

// List retrieves entities with optional filtering, ordering, and pagination.
func (r *BaseRepository[T, K]) List(filters map[string]interface{}, orderBy string, limit, offset int) ([]T, error) {
	var entities []T
	query := r.db.Model(new(T))

	for field, value := range filters {
		query = query.Where(fmt.Sprintf("%s = ?", field), value)
	}

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&entities).Error; err != nil {
		return nil, r.handleDBError(err)
	}

	return entities, nil
}

// Count returns the number of entities matching filters.
func (r *BaseRepository[T, K]) Count(filters map[string]interface{}) (int64, error) {
	var count int64
	query := r.db.Model(new(T))

	for field, value := range filters {
		query = query.Where(fmt.Sprintf("%s = ?", field), value)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, r.handleDBError(err)
	}

	return count, nil
}

// Exists reports whether an entity with the given key exists.
func (r *BaseRepository[T, K]) Exists(key K) (bool, error) {
	var count int64
	if err := r.db.Model(new(T)).Where(fmt.Sprintf("%s = ?", r.keyColumn), key).Count(&count).Error; err != nil {
		return false, r.handleDBError(err)
	}
	return count > 0, nil
}

// WithTransaction runs fn within a database transaction.
func (r *BaseRepository[T, K]) WithTransaction(fn func(*gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetDB returns the underlying GORM handle.
func (r *BaseRepository[T, K]) GetDB() *gorm.DB {
	return r.db
}

func (r *BaseRepository[T, K]) handleDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKey
	default:
		return err
	}
}
