package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Serubin/AJD-Site/shared/domain"
	internal_errors "github.com/Serubin/AJD-Site/shared/errors"
)

func TestLinksIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("new link expires after ttl", func(t *testing.T) {
		f := newFixture()
		link, err := f.links.Issue(ctx, 7)
		require.NoError(t, err)
		assert.NotEmpty(t, link.Slug)
		assert.Equal(t, int64(7), link.UserId)
		assert.True(t, link.ExpiresAt.Equal(f.now.Add(24*time.Hour)))
		assert.False(t, link.Used)
	})

	t.Run("reuses valid link", func(t *testing.T) {
		f := newFixture()
		first, err := f.links.Issue(ctx, 7)
		require.NoError(t, err)
		f.advance(time.Hour)

		second, err := f.links.Issue(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, first.Slug, second.Slug)
		assert.Equal(t, 1, f.linksTable.Len())
	})

	t.Run("other users get their own link", func(t *testing.T) {
		f := newFixture()
		a, _ := f.links.Issue(ctx, 7)
		b, _ := f.links.Issue(ctx, 8)
		assert.NotEqual(t, a.Slug, b.Slug)
	})

	t.Run("expired link is replaced", func(t *testing.T) {
		f := newFixture()
		first, _ := f.links.Issue(ctx, 7)
		f.advance(25 * time.Hour)

		second, err := f.links.Issue(ctx, 7)
		require.NoError(t, err)
		assert.NotEqual(t, first.Slug, second.Slug)
	})

	t.Run("used link is replaced", func(t *testing.T) {
		f := newFixture()
		first, _ := f.links.Issue(ctx, 7)
		require.NoError(t, f.links.Consume(ctx, first.Id))

		second, err := f.links.Issue(ctx, 7)
		require.NoError(t, err)
		assert.NotEqual(t, first.Slug, second.Slug)
	})

	t.Run("store failure", func(t *testing.T) {
		links := NewLinks(&MockLinkStorage{
			ListUnusedFunc: func(ctx context.Context) ([]domain.PresignedLink, error) {
				return nil, errors.New("timeout")
			},
		}, nil, &MockSender{}, LinksConfig{})
		_, err := links.Issue(ctx, 1)
		assert.Equal(t, http.StatusInternalServerError, internal_errors.StatusCode(err))
	})
}

func TestLinksResolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	link, err := f.links.Issue(ctx, 7)
	require.NoError(t, err)

	got, err := f.links.Resolve(ctx, link.Slug)
	require.NoError(t, err)
	assert.Equal(t, link.Id, got.Id)

	notFound := func(t *testing.T, slug string) {
		t.Helper()
		_, err := f.links.Resolve(ctx, slug)
		var e *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &e)
		assert.Equal(t, http.StatusNotFound, e.StatusCode)
		assert.Equal(t, InvalidLinkMessage, e.Message)
	}

	t.Run("unknown", func(t *testing.T) { notFound(t, "nope") })
	t.Run("empty", func(t *testing.T) { notFound(t, "") })

	t.Run("expired looks the same as unknown", func(t *testing.T) {
		f.advance(24 * time.Hour)
		notFound(t, link.Slug)
		f.advance(-24 * time.Hour)
	})

	t.Run("consumed looks the same as unknown", func(t *testing.T) {
		require.NoError(t, f.links.Consume(ctx, link.Id))
		notFound(t, link.Slug)
	})
}

func TestLinksConsumeMissing(t *testing.T) {
	f := newFixture()
	err := f.links.Consume(context.Background(), 12345)
	assert.True(t, internal_errors.IsNotFound(err))
}

func TestRequestUpdateLink(t *testing.T) {
	ctx := context.Background()

	t.Run("known user gets a link", func(t *testing.T) {
		f := newFixture()
		user, err := f.users.Create(ctx, jane())
		require.NoError(t, err)

		require.NoError(t, f.links.RequestUpdateLink(ctx, domain.Contact{Phone: "+15555550123"}))

		require.Len(t, f.mailer.Sent, 1)
		assert.Equal(t, user.Email, f.mailer.Sent[0].To)
		unused, _ := f.links.storage.ListUnused(ctx)
		require.Len(t, unused, 1)
		assert.Contains(t, f.mailer.Sent[0].Body, "https://ajd.example.org/get-involved/"+unused[0].Slug)
	})

	t.Run("unknown contact is silent", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.links.RequestUpdateLink(ctx, domain.Contact{Email: "nobody@x.com"}))
		assert.Empty(t, f.mailer.Sent)
		assert.Zero(t, f.linksTable.Len())
	})

	t.Run("repeat requests reuse the link", func(t *testing.T) {
		f := newFixture()
		_, err := f.users.Create(ctx, jane())
		require.NoError(t, err)

		require.NoError(t, f.links.RequestUpdateLink(ctx, domain.Contact{Email: "jane@x.com"}))
		require.NoError(t, f.links.RequestUpdateLink(ctx, domain.Contact{Email: "jane@x.com"}))
		assert.Equal(t, 1, f.linksTable.Len())
		require.Len(t, f.mailer.Sent, 2)
		assert.Equal(t, f.mailer.Sent[0].Body, f.mailer.Sent[1].Body)
	})

	t.Run("delivery failure is not surfaced", func(t *testing.T) {
		f := newFixture()
		_, err := f.users.Create(ctx, jane())
		require.NoError(t, err)
		f.mailer.SendFunc = func(to, subject, body string) error { return errors.New("smtp down") }

		assert.NoError(t, f.links.RequestUpdateLink(ctx, domain.Contact{Email: "jane@x.com"}))
	})
}

func TestPrefill(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	user, err := f.users.Create(ctx, domain.UserInput{
		Name: "Jane", Email: "jane@x.com", Phone: "+447911123456",
		States: []string{"CA", "NY"}, CongressionalDistrict: "CA-12",
	})
	require.NoError(t, err)
	link, err := f.links.Issue(ctx, user.Id)
	require.NoError(t, err)

	p, err := f.links.Prefill(ctx, link.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Jane", p.User.Name)
	assert.Equal(t, []string{"CA", "NY"}, p.User.States)
	assert.Equal(t, "44", p.Phone.CountryCode)
	assert.Equal(t, "7911123456", p.Phone.NationalDigits)

	t.Run("link to deleted user", func(t *testing.T) {
		orphan, err := f.links.Issue(ctx, 999)
		require.NoError(t, err)
		_, err = f.links.Prefill(ctx, orphan.Slug)
		assert.True(t, internal_errors.IsNotFound(err))
	})

	t.Run("prefill does not consume", func(t *testing.T) {
		_, err := f.links.Prefill(ctx, link.Slug)
		assert.NoError(t, err)
	})
}

func TestUpdateViaLink(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, domain.User, domain.PresignedLink) {
		f := newFixture()
		user, err := f.users.Create(ctx, jane())
		require.NoError(t, err)
		_, err = f.users.Create(ctx, domain.UserInput{Name: "Bob", Email: "bob@x.com", Phone: "+15555550124", States: []string{"TX"}})
		require.NoError(t, err)
		link, err := f.links.Issue(ctx, user.Id)
		require.NoError(t, err)
		return f, user, link
	}

	t.Run("updates and consumes", func(t *testing.T) {
		f, user, link := setup(t)
		in := jane()
		in.Name = "Jane Q"
		in.Phone = ""

		updated, err := f.links.UpdateViaLink(ctx, link.Slug, in)
		require.NoError(t, err)
		assert.Equal(t, user.Id, updated.Id)
		assert.Equal(t, "Jane Q", updated.Name)
		assert.Equal(t, "", updated.Phone)

		_, err = f.links.UpdateViaLink(ctx, link.Slug, in)
		assert.True(t, internal_errors.IsNotFound(err), "links are single use")
	})

	t.Run("conflict keeps link usable", func(t *testing.T) {
		f, _, link := setup(t)
		in := jane()
		in.Phone = "+15555550124"

		_, err := f.links.UpdateViaLink(ctx, link.Slug, in)
		var e *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &e)
		assert.Equal(t, http.StatusConflict, e.StatusCode)
		assert.Equal(t, phoneTakenMsg, e.Fields["phone"])

		_, err = f.links.Resolve(ctx, link.Slug)
		assert.NoError(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		f, _, link := setup(t)
		f.advance(48 * time.Hour)
		_, err := f.links.UpdateViaLink(ctx, link.Slug, jane())
		assert.True(t, internal_errors.IsNotFound(err))
	})

	t.Run("consume failure is reported", func(t *testing.T) {
		f, _, link := setup(t)
		f.links.storage = &consumeFails{LinkStorage: f.links.storage}
		_, err := f.links.UpdateViaLink(ctx, link.Slug, jane())
		assert.Equal(t, http.StatusInternalServerError, internal_errors.StatusCode(err))
	})
}

type consumeFails struct {
	LinkStorage
}

func (c *consumeFails) MarkUsed(context.Context, domain.LinkId) error {
	return errors.New("write failed")
}
