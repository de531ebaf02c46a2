// package models defines the data model for the notebook editor
package models

import (
	"time"
)

// Model is a journal entity persisted with soft deletes and a per-table sequence number.
type Model interface {
	ID() string
	Sequence() int
	CreatedAt() time.Time
	UpdatedAt() time.Time
	IsDeleted() bool

	// Validate checks required fields before the entity is written.
	Validate() error
}

// Repository stores one [Model] type.
//
// Get and List never return soft-deleted entities. List criteria keys are documented
// by each implementation; unknown keys are ignored.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
