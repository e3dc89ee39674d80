// Package dao maps record store rows to domain types.
package dao

import (
	"context"
	"strings"

	rs "github.com/Serubin/AJD-Site/backend/internal/storage/recordstore"
	"github.com/Serubin/AJD-Site/shared/domain"
)

// Users table columns.
const (
	userName     = "Name"
	userEmail    = "Email"
	userPhone    = "Phone"
	userStates   = "States"
	userDistrict = "CongressionalDistrict"
)

type Users struct {
	table rs.Table
}

func NewUsers(t rs.Table) *Users {
	return &Users{table: t}
}

// FindByContact returns every user whose email or phone equals a non-empty
// field of c. Matching is exact.
func (u *Users) FindByContact(ctx context.Context, c domain.Contact) ([]domain.User, error) {
	var terms []rs.Filter
	if c.Email != "" {
		terms = append(terms, rs.Eq(userEmail, c.Email))
	}
	if c.Phone != "" {
		terms = append(terms, rs.Eq(userPhone, c.Phone))
	}
	if len(terms) == 0 {
		return nil, nil
	}
	records, err := rs.ListAll(ctx, u.table, rs.ListParams{Where: rs.Or(terms...)})
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(records))
	for _, r := range records {
		users = append(users, userFromRecord(r))
	}
	return users, nil
}

func (u *Users) Get(ctx context.Context, id domain.UserId) (domain.User, bool, error) {
	page, err := u.table.List(ctx, rs.ListParams{Where: rs.Eq(rs.IDField, id), Limit: 1})
	if err != nil {
		return domain.User{}, false, err
	}
	if len(page.Records) == 0 {
		return domain.User{}, false, nil
	}
	return userFromRecord(page.Records[0]), true, nil
}

func (u *Users) Create(ctx context.Context, in domain.UserInput) (domain.User, error) {
	rec, err := u.table.Create(ctx, userRecord(in))
	if err != nil {
		return domain.User{}, err
	}
	return userFromRecord(rec), nil
}

// Update replaces every mutable field of the user.
func (u *Users) Update(ctx context.Context, id domain.UserId, in domain.UserInput) (domain.User, error) {
	rec, err := u.table.Update(ctx, id, userRecord(in))
	if err != nil {
		return domain.User{}, err
	}
	return userFromRecord(rec), nil
}

func userRecord(in domain.UserInput) rs.Record {
	return rs.Record{
		userName:     strings.TrimSpace(in.Name),
		userEmail:    strings.TrimSpace(in.Email),
		userPhone:    in.Phone,
		userStates:   domain.JoinStates(in.States),
		userDistrict: strings.TrimSpace(in.CongressionalDistrict),
	}
}

func userFromRecord(r rs.Record) domain.User {
	return domain.User{
		Id:                    r.ID(),
		Name:                  r.String(userName),
		Email:                 r.String(userEmail),
		Phone:                 r.String(userPhone),
		States:                domain.SplitStates(r.String(userStates)),
		CongressionalDistrict: r.String(userDistrict),
	}
}

// Ping probes the users table, which every data operation depends on.
func (u *Users) Ping(ctx context.Context) error {
	return rs.Ping(ctx, u.table)
}
