package service

import (
	"context"
	"sync"
	"time"

	"github.com/Serubin/AJD-Site/backend/internal/storage/dao"
	rs "github.com/Serubin/AJD-Site/backend/internal/storage/recordstore"
	"github.com/Serubin/AJD-Site/shared/domain"
)

// --- Mocks ---

type sentMail struct {
	To, Subject, Body string
}

type MockSender struct {
	mu       sync.Mutex
	Sent     []sentMail
	SendFunc func(to, subject, body string) error
}

func (m *MockSender) Send(to, subject, body string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, sentMail{to, subject, body})
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(to, subject, body)
	}
	return nil
}

type MockLinkStorage struct {
	ListUnusedFunc       func(ctx context.Context) ([]domain.PresignedLink, error)
	FindUnusedBySlugFunc func(ctx context.Context, slug domain.Slug) (domain.PresignedLink, bool, error)
	CreateFunc           func(ctx context.Context, slug domain.Slug, userID domain.UserId, expiresAt time.Time) (domain.PresignedLink, error)
	MarkUsedFunc         func(ctx context.Context, id domain.LinkId) error
}

func (m *MockLinkStorage) ListUnused(ctx context.Context) ([]domain.PresignedLink, error) {
	if m.ListUnusedFunc != nil {
		return m.ListUnusedFunc(ctx)
	}
	return nil, nil
}

func (m *MockLinkStorage) FindUnusedBySlug(ctx context.Context, slug domain.Slug) (domain.PresignedLink, bool, error) {
	if m.FindUnusedBySlugFunc != nil {
		return m.FindUnusedBySlugFunc(ctx, slug)
	}
	return domain.PresignedLink{}, false, nil
}

func (m *MockLinkStorage) Create(ctx context.Context, slug domain.Slug, userID domain.UserId, expiresAt time.Time) (domain.PresignedLink, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, slug, userID, expiresAt)
	}
	return domain.PresignedLink{Id: 1, Slug: slug, UserId: userID, ExpiresAt: expiresAt}, nil
}

func (m *MockLinkStorage) MarkUsed(ctx context.Context, id domain.LinkId) error {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, id)
	}
	return nil
}

// --- Fixture ---

// fixture wires the real services over in-memory tables.
type fixture struct {
	usersTable *rs.Memory
	linksTable *rs.Memory
	users      *Users
	links      *Links
	mailer     *MockSender
	now        time.Time
}

func newFixture() *fixture {
	f := &fixture{
		usersTable: rs.NewMemory(),
		linksTable: rs.NewMemory(),
		mailer:     &MockSender{},
		now:        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.users = NewUsers(dao.NewUsers(f.usersTable))
	f.links = NewLinks(dao.NewLinks(f.linksTable), f.users, f.mailer, LinksConfig{
		BaseURL: "https://ajd.example.org",
		TTL:     24 * time.Hour,
	})
	f.links.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func jane() domain.UserInput {
	return domain.UserInput{
		Name:   "Jane Doe",
		Email:  "jane@x.com",
		Phone:  "+15555550123",
		States: []string{"CA"},
	}
}
