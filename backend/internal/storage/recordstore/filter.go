package recordstore

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsafeValue is returned when a filter value contains characters that
// belong to the where syntax. NocoDB has no way to quote them.
var ErrUnsafeValue = errors.New("recordstore: filter value contains where syntax")

const whereSyntax = "(),~"

// Filter is a where clause. String renders NocoDB syntax, e.g.
// (Email,eq,a@b.c)~or(Phone,eq,+15555550123).
type Filter interface {
	String() string
	// Match evaluates the filter against a record in memory.
	Match(r Record) bool
}

// Comparison is a single (field,eq,value) term.
type Comparison struct {
	Field string
	Value any
}

func Eq(field string, value any) Comparison {
	return Comparison{Field: field, Value: value}
}

func (c Comparison) String() string {
	return fmt.Sprintf("(%s,eq,%s)", c.Field, FormatValue(c.Value))
}

func (c Comparison) Match(r Record) bool {
	got := r[c.Field]
	// an unset checkbox reads as false
	if b, ok := c.Value.(bool); ok && got == nil {
		return !b
	}
	return FormatValue(got) == FormatValue(c.Value)
}

// FormatValue renders a value the way it appears in a where clause.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
	}
	return fmt.Sprint(v)
}

// Group joins terms with ~and or ~or.
type Group struct {
	Op    string
	Terms []Filter
}

func And(terms ...Filter) Filter { return group("and", terms) }
func Or(terms ...Filter) Filter  { return group("or", terms) }

func group(op string, terms []Filter) Filter {
	kept := terms[:0:0]
	for _, t := range terms {
		if t != nil {
			kept = append(kept, t)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return Group{Op: op, Terms: kept}
}

func (g Group) String() string {
	parts := make([]string, len(g.Terms))
	for i, t := range g.Terms {
		s := t.String()
		// nested groups are wrapped so precedence survives rendering
		if _, nested := t.(Group); nested {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, "~"+g.Op)
}

func (g Group) Match(r Record) bool {
	for _, t := range g.Terms {
		m := t.Match(r)
		if g.Op == "or" && m {
			return true
		}
		if g.Op == "and" && !m {
			return false
		}
	}
	return g.Op == "and"
}

// CheckFilter rejects filters that cannot be rendered literally.
func CheckFilter(f Filter) error {
	switch f := f.(type) {
	case Comparison:
		if strings.ContainsAny(FormatValue(f.Value), whereSyntax) {
			return fmt.Errorf("%w: field %s", ErrUnsafeValue, f.Field)
		}
	case Group:
		for _, t := range f.Terms {
			if err := CheckFilter(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// Matches reports whether r passes f; a nil filter matches everything.
func Matches(f Filter, r Record) bool {
	return f == nil || f.Match(r)
}
