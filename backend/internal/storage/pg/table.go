package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Serubin/AJD-Site/backend/internal/storage/recordstore"
)

// Table is one logical table: the rows of records sharing a table_id.
type Table struct {
	s       *Storage
	tableID string
}

// whereSQL renders f over data->>field. Arguments are appended to args.
func whereSQL(f recordstore.Filter, args *[]any) (string, error) {
	switch v := f.(type) {
	case nil:
		return "TRUE", nil
	case recordstore.Comparison:
		*args = append(*args, v.Field)
		field := len(*args)
		*args = append(*args, recordstore.FormatValue(v.Value))
		value := len(*args)
		fallback := "''"
		// unset checkboxes read as false
		if _, isBool := v.Value.(bool); isBool {
			fallback = "'false'"
		}
		return fmt.Sprintf("COALESCE(data->>$%d::text, %s) = $%d", field, fallback, value), nil
	case recordstore.Group:
		parts := make([]string, 0, len(v.Terms))
		for _, t := range v.Terms {
			p, err := whereSQL(t, args)
			if err != nil {
				return "", err
			}
			parts = append(parts, "("+p+")")
		}
		op := " AND "
		if v.Op == "or" {
			op = " OR "
		}
		return strings.Join(parts, op), nil
	}
	return "", fmt.Errorf("pg: unsupported filter %T", f)
}

// orderSQL renders a NocoDB style sort list.
func orderSQL(sortSpec string, args *[]any) string {
	if sortSpec == "" {
		return "id"
	}
	var parts []string
	for _, k := range strings.Split(sortSpec, ",") {
		dir := "ASC"
		if strings.HasPrefix(k, "-") {
			dir = "DESC"
			k = k[1:]
		}
		if k == recordstore.IDField {
			parts = append(parts, "id "+dir)
			continue
		}
		*args = append(*args, k)
		parts = append(parts, fmt.Sprintf("data->>$%d::text %s", len(*args), dir))
	}
	return strings.Join(append(parts, "id"), ", ")
}

func (t *Table) List(ctx context.Context, params recordstore.ListParams) (recordstore.Page, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = recordstore.DefaultPageSize
	}
	args := []any{t.tableID}
	where, err := whereSQL(params.Where, &args)
	if err != nil {
		return recordstore.Page{}, err
	}
	order := orderSQL(params.Sort, &args)
	args = append(args, limit, params.Offset)

	q := fmt.Sprintf(`
		SELECT id, data, COUNT(*) OVER ()
		FROM %s
		WHERE table_id = $1 AND (%s)
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		t.s.table, where, order, len(args)-1, len(args))

	rows, err := t.s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return recordstore.Page{}, fmt.Errorf("pg: list %s: %w", t.tableID, err)
	}
	defer rows.Close()

	page := recordstore.Page{}
	for rows.Next() {
		var (
			id  int64
			raw []byte
		)
		if err := rows.Scan(&id, &raw, &page.TotalRows); err != nil {
			return recordstore.Page{}, fmt.Errorf("pg: scan %s: %w", t.tableID, err)
		}
		rec, err := decode(id, raw)
		if err != nil {
			return recordstore.Page{}, err
		}
		page.Records = append(page.Records, project(rec, params.Fields))
	}
	if err := rows.Err(); err != nil {
		return recordstore.Page{}, fmt.Errorf("pg: list %s: %w", t.tableID, err)
	}
	if len(page.Records) == 0 && params.Offset > 0 {
		// COUNT(*) OVER () has no row to ride on past the end.
		page.TotalRows = params.Offset
	}
	page.IsLastPage = params.Offset+len(page.Records) >= page.TotalRows
	return page, nil
}

func (t *Table) Create(ctx context.Context, data recordstore.Record) (recordstore.Record, error) {
	raw, err := encode(data)
	if err != nil {
		return nil, err
	}
	var id int64
	err = t.s.db.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (table_id, data) VALUES ($1, $2) RETURNING id`, t.s.table),
		t.tableID, raw,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("pg: create in %s: %w", t.tableID, err)
	}
	rec := data.Clone()
	rec[recordstore.IDField] = id
	return rec, nil
}

// Update merges data into the stored row.
func (t *Table) Update(ctx context.Context, id int64, data recordstore.Record) (recordstore.Record, error) {
	raw, err := encode(data)
	if err != nil {
		return nil, err
	}
	var merged []byte
	err = t.s.db.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE %s SET data = data || $3::jsonb, updated_at = now()
			WHERE table_id = $1 AND id = $2 RETURNING data`, t.s.table),
		t.tableID, id, raw,
	).Scan(&merged)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &recordstore.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("pg: update %s/%d: %w", t.tableID, id, err)
	}
	return decode(id, merged)
}

func encode(data recordstore.Record) ([]byte, error) {
	body := data.Clone()
	delete(body, recordstore.IDField)
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("pg: encode record: %w", err)
	}
	return raw, nil
}

func decode(id int64, raw []byte) (recordstore.Record, error) {
	rec := recordstore.Record{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("pg: decode record %d: %w", id, err)
	}
	rec[recordstore.IDField] = id
	return rec, nil
}

func project(r recordstore.Record, fields []string) recordstore.Record {
	if len(fields) == 0 {
		return r
	}
	out := recordstore.Record{recordstore.IDField: r[recordstore.IDField]}
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}
