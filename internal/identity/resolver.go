// Package identity maps scanned RFID tags to registered students.
package identity

import (
	"context"

	"tagtrack/internal/model"
	"tagtrack/internal/store"
)

// Resolver looks up students by their RFID tag. A miss is a normal outcome —
// a foreign tag, or a reader fired with nothing near it — not a fault.
type Resolver struct {
	store store.Store
}

func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// Resolve returns the student owning the tag, or store.ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, tag string) (*model.Student, error) {
	return r.store.GetStudentByTag(ctx, tag)
}
