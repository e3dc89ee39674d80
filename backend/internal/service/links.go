package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Serubin/AJD-Site/backend/internal/utils/email"
	"github.com/Serubin/AJD-Site/shared/domain"
	"github.com/Serubin/AJD-Site/shared/errors"
	"github.com/Serubin/AJD-Site/shared/logger"
	"github.com/Serubin/AJD-Site/shared/middleware/metrics"
	"github.com/Serubin/AJD-Site/shared/phone"
)

// InvalidLinkMessage is the one answer for unknown, used and expired links.
const InvalidLinkMessage = "Invalid or expired link"

type LinkService interface {
	Issue(ctx context.Context, userID domain.UserId) (domain.PresignedLink, error)
	Resolve(ctx context.Context, slug domain.Slug) (domain.PresignedLink, error)
	Consume(ctx context.Context, id domain.LinkId) error
	RequestUpdateLink(ctx context.Context, c domain.Contact) error
	Prefill(ctx context.Context, slug domain.Slug) (Prefill, error)
	UpdateViaLink(ctx context.Context, slug domain.Slug, in domain.UserInput) (domain.User, error)
}

type LinkStorage interface {
	ListUnused(ctx context.Context) ([]domain.PresignedLink, error)
	FindUnusedBySlug(ctx context.Context, slug domain.Slug) (domain.PresignedLink, bool, error)
	Create(ctx context.Context, slug domain.Slug, userID domain.UserId, expiresAt time.Time) (domain.PresignedLink, error)
	MarkUsed(ctx context.Context, id domain.LinkId) error
}

type LinksConfig struct {
	BaseURL string
	TTL     time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Prefill is what the update form starts from.
type Prefill struct {
	User  domain.User
	Phone phone.Parsed
}

type Links struct {
	storage LinkStorage
	users   UserService
	mailer  email.Sender
	cfg     LinksConfig
	now     func() time.Time
	newSlug func() string
}

func NewLinks(storage LinkStorage, users UserService, mailer email.Sender, cfg LinksConfig) *Links {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Links{
		storage: storage,
		users:   users,
		mailer:  mailer,
		cfg:     cfg,
		now:     cfg.Now,
		newSlug: uuid.NewString,
	}
}

// Issue returns a valid link for the user, reusing an unexpired unused one
// when it exists.
func (l *Links) Issue(ctx context.Context, userID domain.UserId) (domain.PresignedLink, error) {
	now := l.now()
	unused, err := l.storage.ListUnused(ctx)
	if err != nil {
		return domain.PresignedLink{}, storeError("list links", err)
	}
	for _, link := range unused {
		if link.UserId == userID && link.ValidAt(now) {
			metrics.LinksIssued.WithLabelValues("true").Inc()
			return link, nil
		}
	}

	link, err := l.storage.Create(ctx, l.newSlug(), userID, now.Add(l.cfg.TTL))
	if err != nil {
		return domain.PresignedLink{}, storeError("create link", err)
	}
	metrics.LinksIssued.WithLabelValues("false").Inc()
	return link, nil
}

// Resolve finds a usable link. Unknown, used and expired slugs all produce
// the same not found error.
func (l *Links) Resolve(ctx context.Context, slug domain.Slug) (domain.PresignedLink, error) {
	if slug == "" {
		return domain.PresignedLink{}, errors.NotFound(InvalidLinkMessage)
	}
	link, ok, err := l.storage.FindUnusedBySlug(ctx, slug)
	if err != nil {
		return domain.PresignedLink{}, storeError("find link", err)
	}
	if !ok || !link.ValidAt(l.now()) {
		return domain.PresignedLink{}, errors.NotFound(InvalidLinkMessage)
	}
	return link, nil
}

func (l *Links) Consume(ctx context.Context, id domain.LinkId) error {
	if err := l.storage.MarkUsed(ctx, id); err != nil {
		if isMissing(err) {
			return errors.NotFound(InvalidLinkMessage)
		}
		return storeError("consume link", err)
	}
	metrics.LinksConsumed.Inc()
	return nil
}

// RequestUpdateLink sends an update link to the user owning c. When nobody
// matches it does nothing, so callers cannot tell the two cases apart.
func (l *Links) RequestUpdateLink(ctx context.Context, c domain.Contact) error {
	user, found, err := l.users.FindByContact(ctx, c)
	if err != nil {
		return err
	}
	if !found {
		logger.Log.Debug("update link requested for unknown contact", "component", "links")
		return nil
	}

	link, err := l.Issue(ctx, user.Id)
	if err != nil {
		return err
	}

	subject, body := email.UpdateLinkMessage(user.Name, l.linkURL(link.Slug), l.cfg.TTL)
	if err := l.mailer.Send(user.Email, subject, body); err != nil {
		logger.Log.Error("failed to deliver update link", "component", "links",
			"user_id", user.Id, "link_id", link.Id, "error", err)
	}
	return nil
}

func (l *Links) linkURL(slug domain.Slug) string {
	return l.cfg.BaseURL + "/get-involved/" + slug
}

func (l *Links) Prefill(ctx context.Context, slug domain.Slug) (Prefill, error) {
	link, err := l.Resolve(ctx, slug)
	if err != nil {
		return Prefill{}, err
	}
	user, ok, err := l.users.FindByID(ctx, link.UserId)
	if err != nil {
		return Prefill{}, err
	}
	if !ok {
		logger.Log.Warn("link points at missing user", "component", "links",
			"link_id", link.Id, "user_id", link.UserId)
		return Prefill{}, errors.NotFound(InvalidLinkMessage)
	}
	return Prefill{User: user, Phone: phone.ParseCanonicalOrLegacy(user.Phone)}, nil
}

// UpdateViaLink applies in to the link owner and consumes the link. The link
// stays usable if anything fails before the final step.
func (l *Links) UpdateViaLink(ctx context.Context, slug domain.Slug, in domain.UserInput) (domain.User, error) {
	link, err := l.Resolve(ctx, slug)
	if err != nil {
		return domain.User{}, err
	}
	user, err := l.users.Update(ctx, link.UserId, in)
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.User{}, errors.NotFound(InvalidLinkMessage)
		}
		return domain.User{}, err
	}
	if err := l.Consume(ctx, link.Id); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
