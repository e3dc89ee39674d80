package dao

import (
	"context"
	"time"

	rs "github.com/Serubin/AJD-Site/backend/internal/storage/recordstore"
	"github.com/Serubin/AJD-Site/shared/domain"
)

// Presigned links table columns. User is a link column pointing at the users
// table.
const (
	linkSlug      = "Slug"
	linkUser      = "User"
	linkExpiresAt = "ExpiresAt"
	linkUsed      = "Used"
)

type Links struct {
	table rs.Table
}

func NewLinks(t rs.Table) *Links {
	return &Links{table: t}
}

// ListUnused returns every link not yet consumed, expired ones included.
func (l *Links) ListUnused(ctx context.Context) ([]domain.PresignedLink, error) {
	records, err := rs.ListAll(ctx, l.table, rs.ListParams{Where: rs.Eq(linkUsed, false)})
	if err != nil {
		return nil, err
	}
	links := make([]domain.PresignedLink, 0, len(records))
	for _, r := range records {
		links = append(links, linkFromRecord(r))
	}
	return links, nil
}

// FindUnusedBySlug looks up a link that has not been consumed. Expiry is left
// to the caller.
func (l *Links) FindUnusedBySlug(ctx context.Context, slug domain.Slug) (domain.PresignedLink, bool, error) {
	page, err := l.table.List(ctx, rs.ListParams{
		Where: rs.And(rs.Eq(linkSlug, slug), rs.Eq(linkUsed, false)),
		Limit: 1,
	})
	if err != nil {
		return domain.PresignedLink{}, false, err
	}
	if len(page.Records) == 0 {
		return domain.PresignedLink{}, false, nil
	}
	return linkFromRecord(page.Records[0]), true, nil
}

func (l *Links) Create(ctx context.Context, slug domain.Slug, userID domain.UserId, expiresAt time.Time) (domain.PresignedLink, error) {
	rec, err := l.table.Create(ctx, rs.Record{
		linkSlug:      slug,
		linkUser:      userID,
		linkExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		linkUsed:      false,
	})
	if err != nil {
		return domain.PresignedLink{}, err
	}
	return linkFromRecord(rec), nil
}

func (l *Links) MarkUsed(ctx context.Context, id domain.LinkId) error {
	_, err := l.table.Update(ctx, id, rs.Record{linkUsed: true})
	return err
}

// linkFromRecord decodes a row. An unreadable expiry becomes the zero time,
// which every check treats as expired.
func linkFromRecord(r rs.Record) domain.PresignedLink {
	expiresAt, err := time.Parse(time.RFC3339, r.String(linkExpiresAt))
	if err != nil {
		expiresAt = time.Time{}
	}
	return domain.PresignedLink{
		Id:        r.ID(),
		Slug:      r.String(linkSlug),
		UserId:    r.RefID(linkUser),
		ExpiresAt: expiresAt,
		Used:      r.Bool(linkUsed),
	}
}
