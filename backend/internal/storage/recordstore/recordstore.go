// Package recordstore defines the table contract shared by every record store
// backend: NocoDB, Postgres and the in-memory store.
package recordstore

import (
	"context"
	"errors"
	"fmt"
)

// Table is one table of the external record store.
type Table interface {
	List(ctx context.Context, params ListParams) (Page, error)
	Create(ctx context.Context, data Record) (Record, error)
	Update(ctx context.Context, id int64, data Record) (Record, error)
}

type ListParams struct {
	Where  Filter
	Limit  int
	Offset int
	// Sort is a comma separated field list; a leading '-' sorts descending.
	Sort   string
	Fields []string
}

// cacheKey identifies params for caching purposes.
func (p ListParams) cacheKey() string {
	where := ""
	if p.Where != nil {
		where = p.Where.String()
	}
	return fmt.Sprintf("%s|%d|%d|%s|%v", where, p.Limit, p.Offset, p.Sort, p.Fields)
}

type Page struct {
	Records    []Record
	IsLastPage bool
	TotalRows  int
}

// DefaultPageSize is what backends use when ListParams.Limit is zero.
const DefaultPageSize = 100

// ListAll follows pages until the store reports the last one.
func ListAll(ctx context.Context, t Table, params ListParams) ([]Record, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultPageSize
	}
	var all []Record
	for {
		page, err := t.List(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if page.IsLastPage || len(page.Records) == 0 {
			return all, nil
		}
		params.Offset += len(page.Records)
	}
}

// ErrNotConfigured is returned by Unconfigured tables.
var ErrNotConfigured = errors.New("record store is not configured")

// Unconfigured stands in for a table whose store settings are missing, so the
// process can start and fail per request instead.
type Unconfigured struct {
	Name string
}

func (u Unconfigured) List(context.Context, ListParams) (Page, error) {
	return Page{}, fmt.Errorf("%s: %w", u.Name, ErrNotConfigured)
}

func (u Unconfigured) Create(context.Context, Record) (Record, error) {
	return nil, fmt.Errorf("%s: %w", u.Name, ErrNotConfigured)
}

func (u Unconfigured) Update(context.Context, int64, Record) (Record, error) {
	return nil, fmt.Errorf("%s: %w", u.Name, ErrNotConfigured)
}

// Ping checks that t can be listed.
func Ping(ctx context.Context, t Table) error {
	_, err := t.List(ctx, ListParams{Limit: 1, Fields: []string{IDField}})
	return err
}
