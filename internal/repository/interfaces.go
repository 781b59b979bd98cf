// Package repository contains repository interfaces for persistence layers.
package repository

import (
	"context"

	"project-tracker/internal/entities"
)

// LifecycleInterface describes storage startup/shutdown hooks.
type LifecycleInterface interface {
	OnStart(_ context.Context) error
	OnStop(_ context.Context) error
}

// Store is the document store contract consumed by the usecase layer.
// out arguments are pointers to an entity (FindByID, FindOne) or to a slice of entities (Find).
type Store interface {
	FindByID(ctx context.Context, coll entities.Collection, id string, out any) error
	FindOne(ctx context.Context, coll entities.Collection, filter Filter, out any) error
	Find(ctx context.Context, coll entities.Collection, filter Filter, out any) error
	Save(ctx context.Context, doc entities.Document) error
	Delete(ctx context.Context, coll entities.Collection, id string) error
	// PushRef appends ref to the array field unless it is already present.
	PushRef(ctx context.Context, coll entities.Collection, id, field, ref string) error
	// PullRef removes every occurrence of ref from the array field.
	PullRef(ctx context.Context, coll entities.Collection, id, field, ref string) error
	// SetFields overwrites the named top-level fields of an existing document and leaves the others untouched.
	SetFields(ctx context.Context, coll entities.Collection, id string, fields map[string]any) error
}

// Locker serializes work on keys. All keys of one call are taken together in a
// fixed order and released by the single returned unlock, which must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}
