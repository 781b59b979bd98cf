package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"project-tracker/internal/entities"
	"project-tracker/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

var tables = func() map[entities.Collection]string {
	m := make(map[entities.Collection]string, len(entities.Collections))
	for _, c := range entities.Collections {
		m[c] = string(c)
	}
	return m
}()

const (
	selectByIDQuery = `SELECT doc FROM %s WHERE id=$1`
	upsertDocQuery  = `
INSERT INTO %s(id, doc) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`
	deleteDocQuery = `DELETE FROM %s WHERE id=$1`
	setFieldsQuery = `UPDATE %s SET doc = doc || $2::jsonb, updated_at = NOW() WHERE id=$1`
	pushRefQuery   = `
UPDATE %s SET
    doc = CASE
        WHEN COALESCE(doc->$2::text, '[]'::jsonb) ? $3::text THEN doc
        ELSE jsonb_set(doc, ARRAY[$2::text], COALESCE(doc->$2::text, '[]'::jsonb) || to_jsonb($3::text))
    END,
    updated_at = NOW()
WHERE id=$1`
	pullRefQuery = `
UPDATE %s SET
    doc = jsonb_set(doc, ARRAY[$2::text], COALESCE(
        (SELECT jsonb_agg(e) FROM jsonb_array_elements(COALESCE(doc->$2::text, '[]'::jsonb)) e WHERE e <> to_jsonb($3::text)),
        '[]'::jsonb)),
    updated_at = NOW()
WHERE id=$1`
)

func table(coll entities.Collection) (string, error) {
	t, ok := tables[coll]
	if !ok {
		return "", fmt.Errorf("%w: unknown collection %q", entities.ErrStore, coll)
	}
	return t, nil
}

// FindByID decodes the document with id into out.
func (p *Postgres) FindByID(ctx context.Context, coll entities.Collection, id string, out any) error {
	t, err := table(coll)
	if err != nil {
		return err
	}

	var raw []byte
	if err := p.db.QueryRow(ctx, fmt.Sprintf(selectByIDQuery, t), id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s %s: %w", coll, id, entities.ErrNotFound)
		}
		p.log.Errorw("failed to select document", "error", err, "collection", coll, "id", id)
		return fmt.Errorf("%w: select %s: %w", entities.ErrStore, coll, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", entities.ErrStore, coll, err)
	}
	return nil
}

// FindOne decodes the first matching document into out.
func (p *Postgres) FindOne(ctx context.Context, coll entities.Collection, filter repository.Filter, out any) error {
	docs, err := p.query(ctx, coll, filter, 1)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("%s: %w", coll, entities.ErrNotFound)
	}
	if err := json.Unmarshal(docs[0], out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", entities.ErrStore, coll, err)
	}
	return nil
}

// Find decodes all matching documents, oldest first, into the slice pointed to by out.
func (p *Postgres) Find(ctx context.Context, coll entities.Collection, filter repository.Filter, out any) error {
	docs, err := p.query(ctx, coll, filter, 0)
	if err != nil {
		return err
	}
	buf, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", entities.ErrStore, coll, err)
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", entities.ErrStore, coll, err)
	}
	return nil
}

func (p *Postgres) query(ctx context.Context, coll entities.Collection, filter repository.Filter, limit int) ([]json.RawMessage, error) {
	t, err := table(coll)
	if err != nil {
		return nil, err
	}
	q, args, err := buildSelect(t, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrStore, err)
	}

	rows, err := p.db.Query(ctx, q, args...)
	if err != nil {
		p.log.Errorw("failed to query documents", "error", err, "collection", coll)
		return nil, fmt.Errorf("%w: query %s: %w", entities.ErrStore, coll, err)
	}
	defer rows.Close()

	docs := make([]json.RawMessage, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %w", entities.ErrStore, coll, err)
		}
		docs = append(docs, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %w", entities.ErrStore, coll, err)
	}
	return docs, nil
}

// Save upserts doc; a duplicate user email yields ErrConflict.
func (p *Postgres) Save(ctx context.Context, doc entities.Document) error {
	if doc.DocID() == "" || isNilPointer(doc) {
		return fmt.Errorf("%w: document id is required", entities.ErrStore)
	}
	t, err := table(doc.Collection())
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", entities.ErrStore, doc.Collection(), err)
	}

	if _, err := p.db.Exec(ctx, fmt.Sprintf(upsertDocQuery, t), doc.DocID(), raw); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", entities.ErrConflict, pgErr.ConstraintName)
		}
		p.log.Errorw("failed to upsert document", "error", err, "collection", doc.Collection(), "id", doc.DocID())
		return fmt.Errorf("%w: upsert %s: %w", entities.ErrStore, doc.Collection(), err)
	}
	return nil
}

// Delete removes the document with id.
func (p *Postgres) Delete(ctx context.Context, coll entities.Collection, id string) error {
	t, err := table(coll)
	if err != nil {
		return err
	}
	tag, err := p.db.Exec(ctx, fmt.Sprintf(deleteDocQuery, t), id)
	if err != nil {
		p.log.Errorw("failed to delete document", "error", err, "collection", coll, "id", id)
		return fmt.Errorf("%w: delete %s: %w", entities.ErrStore, coll, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", coll, id, entities.ErrNotFound)
	}
	return nil
}

// PushRef appends ref to the JSON array field unless present.
func (p *Postgres) PushRef(ctx context.Context, coll entities.Collection, id, field, ref string) error {
	return p.updateRefs(ctx, pushRefQuery, coll, id, field, ref)
}

// PullRef removes ref from the JSON array field.
func (p *Postgres) PullRef(ctx context.Context, coll entities.Collection, id, field, ref string) error {
	return p.updateRefs(ctx, pullRefQuery, coll, id, field, ref)
}

func (p *Postgres) updateRefs(ctx context.Context, query string, coll entities.Collection, id, field, ref string) error {
	t, err := table(coll)
	if err != nil {
		return err
	}
	if !repository.ValidField(field) {
		return fmt.Errorf("%w: invalid field %q", entities.ErrStore, field)
	}
	tag, err := p.db.Exec(ctx, fmt.Sprintf(query, t), id, field, ref)
	if err != nil {
		p.log.Errorw("failed to update references", "error", err, "collection", coll, "id", id, "field", field)
		return fmt.Errorf("%w: update %s.%s: %w", entities.ErrStore, coll, field, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", coll, id, entities.ErrNotFound)
	}
	return nil
}

// SetFields merges fields into the stored JSON document.
func (p *Postgres) SetFields(ctx context.Context, coll entities.Collection, id string, fields map[string]any) error {
	t, err := table(coll)
	if err != nil {
		return err
	}
	if err := repository.ValidateFields(fields); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrStore, err)
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: encode %s fields: %w", entities.ErrStore, coll, err)
	}

	tag, err := p.db.Exec(ctx, fmt.Sprintf(setFieldsQuery, t), id, raw)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", entities.ErrConflict, pgErr.ConstraintName)
		}
		p.log.Errorw("failed to set fields", "error", err, "collection", coll, "id", id)
		return fmt.Errorf("%w: set %s: %w", entities.ErrStore, coll, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", coll, id, entities.ErrNotFound)
	}
	return nil
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
