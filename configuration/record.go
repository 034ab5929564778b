package configuration

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Record is a named JSON game configuration document.
// JSONConfig holds the document as encoded text, not as a nested object.
type Record struct {
	bun.BaseModel `bun:"table:configurations,alias:c" json:"-" msgpack:"-"`

	ID         string    `bun:"id,pk" json:"id" msgpack:"id"`
	Name       string    `bun:"name,notnull" json:"name" msgpack:"name"`
	JSONConfig string    `bun:"json_config,notnull" json:"jsonConfig" msgpack:"json_config"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"createdAt" msgpack:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,notnull" json:"updatedAt" msgpack:"updated_at"`
}

// Clone returns a copy of the record that shares no state with r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// ListOptions filters and paginates GetAll. Nil Skip or Take means unbounded.
type ListOptions struct {
	SearchTerm string `json:"searchTerm,omitempty"`
	Skip       *int   `json:"skip,omitempty"`
	Take       *int   `json:"take,omitempty"`
}

// Repository is the persistence contract for configuration records.
//
// GetByID and GetByName report a missing record as (nil, nil). Create,
// Update and Delete report expected failures with ErrDuplicateName and
// ErrNotFound; anything else is wrapped in a StoreError.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Record, error)
	GetByName(ctx context.Context, name string) (*Record, error)
	GetAll(ctx context.Context, opts ListOptions) ([]Record, error)
	Create(ctx context.Context, candidate Record) (*Record, error)
	Update(ctx context.Context, candidate Record) (*Record, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, name string) (bool, error)
}

// Pinger is implemented by repositories that can check their backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IntPtr is a small helper for building ListOptions.
func IntPtr(v int) *int {
	return &v
}
