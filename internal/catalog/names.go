package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Refs collects ids to resolve in one round trip per kind.
type Refs struct {
	ids map[Kind][]uuid.UUID
}

func NewRefs() *Refs {
	return &Refs{ids: make(map[Kind][]uuid.UUID)}
}

// Add records id under kind. Nil pointers are ignored.
func (r *Refs) Add(kind Kind, id *uuid.UUID) *Refs {
	if id != nil && *id != uuid.Nil {
		r.ids[kind] = append(r.ids[kind], *id)
	}
	return r
}

// Names holds resolved display names. Missing entries read as nil.
type Names struct {
	byKind map[Kind]map[uuid.UUID]string
}

// Get returns the display name for id, or nil when the reference dangles.
func (n *Names) Get(kind Kind, id *uuid.UUID) *string {
	if n == nil || id == nil {
		return nil
	}
	name, ok := n.byKind[kind][*id]
	if !ok {
		return nil
	}
	return &name
}

// GetOr is Get with a fallback for presentation strings.
func (n *Names) GetOr(kind Kind, id *uuid.UUID, fallback string) string {
	if name := n.Get(kind, id); name != nil {
		return *name
	}
	return fallback
}

// Resolve looks up every collected reference.
func Resolve(ctx context.Context, dir Directory, refs *Refs) (*Names, error) {
	names := &Names{byKind: make(map[Kind]map[uuid.UUID]string, len(refs.ids))}
	for kind, ids := range refs.ids {
		resolved, err := dir.Names(ctx, kind, ids)
		if err != nil {
			return nil, err
		}
		names.byKind[kind] = resolved
	}
	return names, nil
}
