package mongo

import (
	"context"
	"errors"
	"fmt"

	"project-tracker/internal/entities"
	"project-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *Mongo) coll(name entities.Collection) (*mongo.Collection, error) {
	for _, c := range entities.Collections {
		if c == name {
			return m.db.Collection(string(name)), nil
		}
	}
	return nil, fmt.Errorf("%w: unknown collection %q", entities.ErrStore, name)
}

// FindByID decodes the document with id into out.
func (m *Mongo) FindByID(ctx context.Context, coll entities.Collection, id string, out any) error {
	c, err := m.coll(coll)
	if err != nil {
		return err
	}
	if err := c.FindOne(ctx, bson.M{"_id": id}).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%s %s: %w", coll, id, entities.ErrNotFound)
		}
		m.log.Errorw("failed to find document", "error", err, "collection", coll, "id", id)
		return fmt.Errorf("%w: find %s: %w", entities.ErrStore, coll, err)
	}
	return nil
}

// FindOne decodes the first matching document into out.
func (m *Mongo) FindOne(ctx context.Context, coll entities.Collection, filter repository.Filter, out any) error {
	c, err := m.coll(coll)
	if err != nil {
		return err
	}
	q, err := toBSON(filter)
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrStore, err)
	}
	if err := c.FindOne(ctx, q).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%s: %w", coll, entities.ErrNotFound)
		}
		return fmt.Errorf("%w: find %s: %w", entities.ErrStore, coll, err)
	}
	return nil
}

// Find decodes all matching documents into the slice pointed to by out.
func (m *Mongo) Find(ctx context.Context, coll entities.Collection, filter repository.Filter, out any) error {
	c, err := m.coll(coll)
	if err != nil {
		return err
	}
	q, err := toBSON(filter)
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrStore, err)
	}
	cur, err := c.Find(ctx, q)
	if err != nil {
		m.log.Errorw("failed to query documents", "error", err, "collection", coll)
		return fmt.Errorf("%w: find %s: %w", entities.ErrStore, coll, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", entities.ErrStore, coll, err)
	}
	return nil
}

// Save replaces or inserts doc by id.
func (m *Mongo) Save(ctx context.Context, doc entities.Document) error {
	if doc.DocID() == "" {
		return fmt.Errorf("%w: document id is required", entities.ErrStore)
	}
	c, err := m.coll(doc.Collection())
	if err != nil {
		return err
	}
	_, err = c.ReplaceOne(ctx, bson.M{"_id": doc.DocID()}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: duplicate key", entities.ErrConflict)
		}
		m.log.Errorw("failed to save document", "error", err, "collection", doc.Collection(), "id", doc.DocID())
		return fmt.Errorf("%w: save %s: %w", entities.ErrStore, doc.Collection(), err)
	}
	return nil
}

// Delete removes the document with id.
func (m *Mongo) Delete(ctx context.Context, coll entities.Collection, id string) error {
	c, err := m.coll(coll)
	if err != nil {
		return err
	}
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", entities.ErrStore, coll, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %s: %w", coll, id, entities.ErrNotFound)
	}
	return nil
}

// PushRef adds ref to the array field with $addToSet.
func (m *Mongo) PushRef(ctx context.Context, coll entities.Collection, id, field, ref string) error {
	return m.updateRefs(ctx, coll, id, field, bson.M{"$addToSet": bson.M{field: ref}})
}

// PullRef removes ref from the array field with $pull.
func (m *Mongo) PullRef(ctx context.Context, coll entities.Collection, id, field, ref string) error {
	return m.updateRefs(ctx, coll, id, field, bson.M{"$pull": bson.M{field: ref}})
}

func (m *Mongo) updateRefs(ctx context.Context, coll entities.Collection, id, field string, update bson.M) error {
	if !repository.ValidField(field) {
		return fmt.Errorf("%w: invalid field %q", entities.ErrStore, field)
	}
	c, err := m.coll(coll)
	if err != nil {
		return err
	}
	res, err := c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		m.log.Errorw("failed to update references", "error", err, "collection", coll, "id", id, "field", field)
		return fmt.Errorf("%w: update %s.%s: %w", entities.ErrStore, coll, field, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %s: %w", coll, id, entities.ErrNotFound)
	}
	return nil
}

// SetFields overwrites fields with $set.
func (m *Mongo) SetFields(ctx context.Context, coll entities.Collection, id string, fields map[string]any) error {
	if err := repository.ValidateFields(fields); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrStore, err)
	}
	c, err := m.coll(coll)
	if err != nil {
		return err
	}
	res, err := c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: duplicate key", entities.ErrConflict)
		}
		m.log.Errorw("failed to set fields", "error", err, "collection", coll, "id", id)
		return fmt.Errorf("%w: set %s: %w", entities.ErrStore, coll, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %s: %w", coll, id, entities.ErrNotFound)
	}
	return nil
}

func toBSON(filter repository.Filter) (bson.M, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if len(filter) == 0 {
		return bson.M{}, nil
	}
	conds := make([]bson.M, 0, len(filter))
	for _, c := range filter {
		switch c.Op {
		case repository.OpEq, repository.OpHas:
			conds = append(conds, bson.M{c.Field: c.Value})
		case repository.OpIn:
			conds = append(conds, bson.M{c.Field: bson.M{"$in": c.Value}})
		case repository.OpGt:
			conds = append(conds, bson.M{c.Field: bson.M{"$gt": c.Value}})
		case repository.OpLte:
			conds = append(conds, bson.M{c.Field: bson.M{"$lte": c.Value}})
		}
	}
	return bson.M{"$and": conds}, nil
}
