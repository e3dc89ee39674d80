package dao

import (
	"context"

	rs "github.com/Serubin/AJD-Site/backend/internal/storage/recordstore"
	"github.com/Serubin/AJD-Site/shared/domain"
)

type CMS struct {
	table rs.Table
}

func NewCMS(t rs.Table) *CMS {
	return &CMS{table: t}
}

// PageRows returns the rows of one page. The whole table is read and filtered
// here so a cached table holds a single entry for every page.
func (c *CMS) PageRows(ctx context.Context, page string) ([]domain.ContentRow, error) {
	records, err := rs.ListAll(ctx, c.table, rs.ListParams{})
	if err != nil {
		return nil, err
	}
	var rows []domain.ContentRow
	for _, r := range records {
		if r.String("Page") != page {
			continue
		}
		rows = append(rows, domain.ContentRow{
			Page:    page,
			Sub:     r.String("Sub"),
			Type:    r.String("Type"),
			Content: r.String("Content"),
		})
	}
	return rows, nil
}
