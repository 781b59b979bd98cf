package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"project-tracker/internal/repository"
)

// buildSelect translates a filter into a parameterised query over the doc column.
// Field names travel as parameters; only the table name is interpolated.
func buildSelect(table string, filter repository.Filter, limit int) (string, []any, error) {
	if err := filter.Validate(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT doc FROM ")
	b.WriteString(table)

	args := make([]any, 0, len(filter)*2+1)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	for i, c := range filter {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		field := next(c.Field) + "::text"
		switch c.Op {
		case repository.OpEq:
			fmt.Fprintf(&b, "doc->>%s = %s", field, next(c.Value))
		case repository.OpIn:
			fmt.Fprintf(&b, "doc->>%s = ANY(%s::text[])", field, next(c.Value))
		case repository.OpGt:
			fmt.Fprintf(&b, "(doc->>%s)::timestamptz > %s", field, next(c.Value))
		case repository.OpLte:
			fmt.Fprintf(&b, "(doc->>%s)::timestamptz <= %s", field, next(c.Value))
		case repository.OpHas:
			fmt.Fprintf(&b, "COALESCE(doc->%s, '[]'::jsonb) ? %s::text", field, next(c.Value))
		}
	}

	b.WriteString(" ORDER BY created_at, id")
	if limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(next(limit))
	}
	return b.String(), args, nil
}
