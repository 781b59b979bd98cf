package repository

import (
	"fmt"
	"regexp"
	"time"
)

// Op is a comparison operator in a filter condition.
type Op int

const (
	// OpEq matches a scalar field equal to a string value.
	OpEq Op = iota
	// OpIn matches a scalar field equal to any of a []string value.
	OpIn
	// OpGt matches a time field strictly after a time.Time value.
	OpGt
	// OpLte matches a time field at or before a time.Time value.
	OpLte
	// OpHas matches an array field containing a string value.
	OpHas
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpIn:
		return "in"
	case OpGt:
		return "gt"
	case OpLte:
		return "lte"
	case OpHas:
		return "has"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Cond is a single field condition.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Filter is a conjunction of conditions. The empty filter matches everything.
type Filter []Cond

// Eq builds an equality condition.
func Eq(field, value string) Cond { return Cond{Field: field, Op: OpEq, Value: value} }

// In builds a set membership condition.
func In(field string, values []string) Cond { return Cond{Field: field, Op: OpIn, Value: values} }

// Gt builds a strictly-after condition on a time field.
func Gt(field string, t time.Time) Cond { return Cond{Field: field, Op: OpGt, Value: t} }

// Lte builds an at-or-before condition on a time field.
func Lte(field string, t time.Time) Cond { return Cond{Field: field, Op: OpLte, Value: t} }

// Has builds an array containment condition.
func Has(field, value string) Cond { return Cond{Field: field, Op: OpHas, Value: value} }

var fieldPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Validate checks field names and value types so backends can translate conditions blindly.
func (f Filter) Validate() error {
	for _, c := range f {
		if !fieldPattern.MatchString(c.Field) {
			return fmt.Errorf("filter: invalid field %q", c.Field)
		}
		switch c.Op {
		case OpEq, OpHas:
			if _, ok := c.Value.(string); !ok {
				return fmt.Errorf("filter: %s on %q needs a string", c.Op, c.Field)
			}
		case OpIn:
			if _, ok := c.Value.([]string); !ok {
				return fmt.Errorf("filter: %s on %q needs a []string", c.Op, c.Field)
			}
		case OpGt, OpLte:
			if _, ok := c.Value.(time.Time); !ok {
				return fmt.Errorf("filter: %s on %q needs a time.Time", c.Op, c.Field)
			}
		default:
			return fmt.Errorf("filter: unknown operator %s", c.Op)
		}
	}
	return nil
}

// ValidField reports whether name is safe to use as a document field.
func ValidField(name string) bool {
	return fieldPattern.MatchString(name)
}

// ValidateFields checks a field update: at least one field, safe names, and never the id.
func ValidateFields(fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("set: no fields")
	}
	for name := range fields {
		if !fieldPattern.MatchString(name) || name == "id" {
			return fmt.Errorf("set: invalid field %q", name)
		}
	}
	return nil
}
