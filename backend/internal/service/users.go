package service

import (
	"context"
	"strings"

	"github.com/Serubin/AJD-Site/shared/domain"
	"github.com/Serubin/AJD-Site/shared/errors"
	"github.com/Serubin/AJD-Site/shared/logger"
	"github.com/Serubin/AJD-Site/shared/middleware/metrics"
)

const (
	emailTakenMsg = "This email is already registered."
	phoneTakenMsg = "This phone number is already registered."
)

type UserService interface {
	FindByContact(ctx context.Context, c domain.Contact) (domain.User, bool, error)
	FindByID(ctx context.Context, id domain.UserId) (domain.User, bool, error)
	CheckUniqueness(ctx context.Context, c domain.Contact, exclude domain.UserId) (domain.Uniqueness, error)
	Create(ctx context.Context, in domain.UserInput) (domain.User, error)
	Update(ctx context.Context, id domain.UserId, in domain.UserInput) (domain.User, error)
}

type UserStorage interface {
	FindByContact(ctx context.Context, c domain.Contact) ([]domain.User, error)
	Get(ctx context.Context, id domain.UserId) (domain.User, bool, error)
	Create(ctx context.Context, in domain.UserInput) (domain.User, error)
	Update(ctx context.Context, id domain.UserId, in domain.UserInput) (domain.User, error)
}

type Users struct {
	storage UserStorage
}

func NewUsers(storage UserStorage) *Users {
	return &Users{storage: storage}
}

func normalizeContact(c domain.Contact) domain.Contact {
	return domain.Contact{Email: strings.TrimSpace(c.Email), Phone: strings.TrimSpace(c.Phone)}
}

// FindByContact returns the first user whose email or phone matches.
func (u *Users) FindByContact(ctx context.Context, c domain.Contact) (domain.User, bool, error) {
	c = normalizeContact(c)
	if c.Empty() {
		return domain.User{}, false, errors.Validation(map[string]string{"email": "Email or phone is required"})
	}
	users, err := u.storage.FindByContact(ctx, c)
	if err != nil {
		return domain.User{}, false, storeError("find user by contact", err)
	}
	if len(users) == 0 {
		return domain.User{}, false, nil
	}
	return users[0], true, nil
}

func (u *Users) FindByID(ctx context.Context, id domain.UserId) (domain.User, bool, error) {
	user, ok, err := u.storage.Get(ctx, id)
	if err != nil {
		return domain.User{}, false, storeError("get user", err)
	}
	return user, ok, nil
}

// CheckUniqueness reports which of c's fields belong to a user other than
// exclude. Pass 0 to exclude nobody. Empty fields are never taken.
func (u *Users) CheckUniqueness(ctx context.Context, c domain.Contact, exclude domain.UserId) (domain.Uniqueness, error) {
	c = normalizeContact(c)
	var res domain.Uniqueness
	if c.Empty() {
		return res, nil
	}
	users, err := u.storage.FindByContact(ctx, c)
	if err != nil {
		return res, storeError("check uniqueness", err)
	}
	for _, other := range users {
		if exclude != 0 && other.Id == exclude {
			continue
		}
		if c.Email != "" && other.Email == c.Email {
			res.EmailTaken = true
		}
		if c.Phone != "" && other.Phone == c.Phone {
			res.PhoneTaken = true
		}
	}
	return res, nil
}

func (u *Users) Create(ctx context.Context, in domain.UserInput) (domain.User, error) {
	in = normalizeInput(in)
	if err := u.ensureUnique(ctx, in, 0); err != nil {
		return domain.User{}, err
	}
	user, err := u.storage.Create(ctx, in)
	if err != nil {
		return domain.User{}, storeError("create user", err)
	}
	metrics.SignupsCreated.Inc()
	logger.Log.Info("user created", "component", "users", "user_id", user.Id)
	return user, nil
}

// Update replaces the user's data. The user's own email and phone never
// count as conflicts.
func (u *Users) Update(ctx context.Context, id domain.UserId, in domain.UserInput) (domain.User, error) {
	in = normalizeInput(in)
	if err := u.ensureUnique(ctx, in, id); err != nil {
		return domain.User{}, err
	}
	user, err := u.storage.Update(ctx, id, in)
	if err != nil {
		return domain.User{}, storeError("update user", err)
	}
	logger.Log.Info("user updated", "component", "users", "user_id", user.Id)
	return user, nil
}

func (u *Users) ensureUnique(ctx context.Context, in domain.UserInput, exclude domain.UserId) error {
	taken, err := u.CheckUniqueness(ctx, domain.Contact{Email: in.Email, Phone: in.Phone}, exclude)
	if err != nil {
		return err
	}
	if !taken.Conflicting() {
		return nil
	}
	fields := map[string]string{}
	if taken.EmailTaken {
		fields["email"] = emailTakenMsg
		metrics.ContactConflicts.WithLabelValues("email").Inc()
	}
	if taken.PhoneTaken {
		fields["phone"] = phoneTakenMsg
		metrics.ContactConflicts.WithLabelValues("phone").Inc()
	}
	return errors.Conflict(fields)
}

func normalizeInput(in domain.UserInput) domain.UserInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.CongressionalDistrict = strings.TrimSpace(in.CongressionalDistrict)
	return in
}
