package recordstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Table. It backs tests and the memory store backend.
type Memory struct {
	mu     sync.RWMutex
	rows   []Record
	nextID int64
}

// NewMemory returns a store holding seed. Seed rows that carry an Id keep it.
func NewMemory(seed ...Record) *Memory {
	m := &Memory{nextID: 1}
	for _, r := range seed {
		m.insert(r, r.ID())
	}
	return m
}

func (m *Memory) List(ctx context.Context, params ListParams) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	// same rule as NocoDB so local runs behave like production
	if err := CheckFilter(params.Where); err != nil {
		return Page{}, err
	}
	m.mu.RLock()
	var matched []Record
	for _, r := range m.rows {
		if Matches(params.Where, r) {
			matched = append(matched, project(r, params.Fields))
		}
	}
	m.mu.RUnlock()

	sortRecords(matched, params.Sort)

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	total := len(matched)
	start := min(params.Offset, total)
	end := min(start+limit, total)
	return Page{
		Records:    matched[start:end],
		IsLastPage: end >= total,
		TotalRows:  total,
	}, nil
}

func (m *Memory) Create(ctx context.Context, data Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.insert(data, 0), nil
}

func (m *Memory) insert(data Record, id int64) Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id <= 0 {
		id = m.nextID
	}
	m.nextID = max(m.nextID, id+1)
	r := data.Clone()
	r[IDField] = id
	m.rows = append(m.rows, r)
	return r.Clone()
}

func (m *Memory) Update(ctx context.Context, id int64, data Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID() == id {
			for k, v := range data {
				if k != IDField {
					r[k] = v
				}
			}
			return r.Clone(), nil
		}
	}
	return nil, &NotFoundError{ID: id}
}

// Len is the number of stored rows.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

func project(r Record, fields []string) Record {
	if len(fields) == 0 {
		return r.Clone()
	}
	out := Record{IDField: r[IDField]}
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

func sortRecords(rows []Record, spec string) {
	if spec == "" {
		return
	}
	keys := strings.Split(spec, ",")
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			desc := strings.HasPrefix(k, "-")
			k = strings.TrimPrefix(k, "-")
			if k == IDField {
				a, b := rows[i].ID(), rows[j].ID()
				if a == b {
					continue
				}
				return (a < b) != desc
			}
			a, b := rows[i].String(k), rows[j].String(k)
			if a == b {
				continue
			}
			if desc {
				return a > b
			}
			return a < b
		}
		return false
	})
}
