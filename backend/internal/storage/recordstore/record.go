package recordstore

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// IDField is the primary key column every table exposes.
const IDField = "Id"

// Record is one row as the store returns it: JSON values keyed by column.
type Record map[string]any

func (r Record) ID() int64 {
	return toInt64(r[IDField])
}

func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return FormatValue(v)
	}
}

func (r Record) Bool(field string) bool {
	switch v := r[field].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int64:
		return v != 0
	case int:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func (r Record) Int64(field string) int64 {
	return toInt64(r[field])
}

// RefID reads a link column. Depending on the store and the table setup it
// comes back as a bare id, an object with an Id, or a list of such objects.
func (r Record) RefID(field string) int64 {
	switch v := r[field].(type) {
	case map[string]any:
		return toInt64(v[IDField])
	case Record:
		return v.ID()
	case []any:
		if len(v) > 0 {
			if m, ok := v[0].(map[string]any); ok {
				return toInt64(m[IDField])
			}
			return toInt64(v[0])
		}
		return 0
	}
	return toInt64(r[field])
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

// NotFoundError is returned by Update when the id does not exist.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %d not found", e.ID)
}
