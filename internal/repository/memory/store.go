// Package memory implements the document store in process memory.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"project-tracker/internal/entities"
	"project-tracker/internal/repository"
	"project-tracker/internal/repository/keylock"

	"go.uber.org/zap"
)

type collection struct {
	docs  map[string][]byte
	order []string
}

// Memory keeps JSON-encoded documents per collection.
type Memory struct {
	*keylock.Locker

	log   *zap.SugaredLogger
	mu    sync.RWMutex
	colls map[entities.Collection]*collection
}

// New creates an empty in-memory store.
func New(log *zap.SugaredLogger) *Memory {
	colls := make(map[entities.Collection]*collection, len(entities.Collections))
	for _, c := range entities.Collections {
		colls[c] = &collection{docs: make(map[string][]byte)}
	}
	return &Memory{
		Locker: keylock.New(),
		log:    log.Named("repo.memory"),
		colls:  colls,
	}
}

// OnStart is a no-op.
func (m *Memory) OnStart(_ context.Context) error {
	m.log.Infow("memory store ready")
	return nil
}

// OnStop is a no-op.
func (m *Memory) OnStop(_ context.Context) error { return nil }

func (m *Memory) coll(name entities.Collection) (*collection, error) {
	c, ok := m.colls[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown collection %q", entities.ErrStore, name)
	}
	return c, nil
}

// FindByID decodes the document with id into out.
func (m *Memory) FindByID(ctx context.Context, coll entities.Collection, id string, out any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrStore, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, err := m.coll(coll)
	if err != nil {
		return err
	}
	raw, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", coll, id, entities.ErrNotFound)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", entities.ErrStore, coll, err)
	}
	return nil
}

// FindOne decodes the first matching document into out.
func (m *Memory) FindOne(ctx context.Context, coll entities.Collection, filter repository.Filter, out any) error {
	matches, err := m.match(ctx, coll, filter, 1)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("%s: %w", coll, entities.ErrNotFound)
	}
	if err := json.Unmarshal(matches[0], out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", entities.ErrStore, coll, err)
	}
	return nil
}

// Find decodes every matching document, in insertion order, into the slice pointed to by out.
func (m *Memory) Find(ctx context.Context, coll entities.Collection, filter repository.Filter, out any) error {
	matches, err := m.match(ctx, coll, filter, 0)
	if err != nil {
		return err
	}
	arr := make([]json.RawMessage, 0, len(matches))
	for _, raw := range matches {
		arr = append(arr, raw)
	}
	buf, err := json.Marshal(arr)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", entities.ErrStore, coll, err)
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", entities.ErrStore, coll, err)
	}
	return nil
}

func (m *Memory) match(ctx context.Context, coll entities.Collection, filter repository.Filter, limit int) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrStore, err)
	}
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrStore, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, err := m.coll(coll)
	if err != nil {
		return nil, err
	}
	res := make([][]byte, 0)
	for _, id := range c.order {
		raw := c.docs[id]
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %w", entities.ErrStore, coll, err)
		}
		if !matches(doc, filter) {
			continue
		}
		res = append(res, raw)
		if limit > 0 && len(res) == limit {
			break
		}
	}
	return res, nil
}

// Save upserts doc. Users are unique by email.
func (m *Memory) Save(ctx context.Context, doc entities.Document) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrStore, err)
	}
	if doc.DocID() == "" {
		return fmt.Errorf("%w: document id is required", entities.ErrStore)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", entities.ErrStore, doc.Collection(), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.coll(doc.Collection())
	if err != nil {
		return err
	}
	switch u := doc.(type) {
	case entities.User:
		err = c.checkUniqueEmail(u)
	case *entities.User:
		err = c.checkUniqueEmail(*u)
	}
	if err != nil {
		return err
	}
	if _, exists := c.docs[doc.DocID()]; !exists {
		c.order = append(c.order, doc.DocID())
	}
	c.docs[doc.DocID()] = raw
	return nil
}

func (c *collection) checkUniqueEmail(u entities.User) error {
	for id, raw := range c.docs {
		if id == u.ID {
			continue
		}
		var other struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(raw, &other); err != nil {
			return fmt.Errorf("%w: decode users: %w", entities.ErrStore, err)
		}
		if other.Email == u.Email {
			return fmt.Errorf("%w: duplicate email", entities.ErrConflict)
		}
	}
	return nil
}

// Delete removes the document with id.
func (m *Memory) Delete(ctx context.Context, coll entities.Collection, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrStore, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.coll(coll)
	if err != nil {
		return err
	}
	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("%s %s: %w", coll, id, entities.ErrNotFound)
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// PushRef appends ref to field unless already present.
func (m *Memory) PushRef(ctx context.Context, coll entities.Collection, id, field, ref string) error {
	return m.mutateRefs(ctx, coll, id, field, func(list []any) []any {
		for _, v := range list {
			if s, _ := v.(string); s == ref {
				return list
			}
		}
		return append(list, ref)
	})
}

// PullRef removes every occurrence of ref from field.
func (m *Memory) PullRef(ctx context.Context, coll entities.Collection, id, field, ref string) error {
	return m.mutateRefs(ctx, coll, id, field, func(list []any) []any {
		res := make([]any, 0, len(list))
		for _, v := range list {
			if s, _ := v.(string); s != ref {
				res = append(res, v)
			}
		}
		return res
	})
}

func (m *Memory) mutateRefs(ctx context.Context, coll entities.Collection, id, field string, fn func([]any) []any) error {
	if !repository.ValidField(field) {
		return fmt.Errorf("%w: invalid field %q", entities.ErrStore, field)
	}
	return m.mutate(ctx, coll, id, func(_ *collection, doc map[string]any) error {
		list, _ := doc[field].([]any)
		doc[field] = fn(list)
		return nil
	})
}

// SetFields overwrites the given top-level fields of the document with id.
func (m *Memory) SetFields(ctx context.Context, coll entities.Collection, id string, fields map[string]any) error {
	if err := repository.ValidateFields(fields); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrStore, err)
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: encode %s fields: %w", entities.ErrStore, coll, err)
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("%w: encode %s fields: %w", entities.ErrStore, coll, err)
	}
	return m.mutate(ctx, coll, id, func(c *collection, doc map[string]any) error {
		for k, v := range values {
			doc[k] = v
		}
		if email, ok := values["email"].(string); ok && coll == entities.CollectionUsers {
			return c.checkUniqueEmail(entities.User{ID: id, Email: email})
		}
		return nil
	})
}

func (m *Memory) mutate(ctx context.Context, coll entities.Collection, id string, fn func(*collection, map[string]any) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrStore, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.coll(coll)
	if err != nil {
		return err
	}
	raw, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", coll, id, entities.ErrNotFound)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: decode %s: %w", entities.ErrStore, coll, err)
	}
	if err := fn(c, doc); err != nil {
		return err
	}

	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", entities.ErrStore, coll, err)
	}
	c.docs[id] = updated
	return nil
}

func matches(doc map[string]any, filter repository.Filter) bool {
	for _, c := range filter {
		if !matchCond(doc[c.Field], c) {
			return false
		}
	}
	return true
}

func matchCond(v any, c repository.Cond) bool {
	switch c.Op {
	case repository.OpEq:
		s, ok := v.(string)
		return ok && s == c.Value.(string)
	case repository.OpIn:
		s, ok := v.(string)
		if !ok {
			return false
		}
		for _, want := range c.Value.([]string) {
			if s == want {
				return true
			}
		}
		return false
	case repository.OpGt, repository.OpLte:
		s, ok := v.(string)
		if !ok {
			return false
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return false
		}
		bound := c.Value.(time.Time)
		if c.Op == repository.OpGt {
			return t.After(bound)
		}
		return !t.After(bound)
	case repository.OpHas:
		list, ok := v.([]any)
		if !ok {
			return false
		}
		for _, item := range list {
			if s, _ := item.(string); s == c.Value.(string) {
				return true
			}
		}
		return false
	}
	return false
}
