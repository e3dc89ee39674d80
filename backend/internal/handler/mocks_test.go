package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Serubin/AJD-Site/backend/internal/service"
	"github.com/Serubin/AJD-Site/shared/config"
	"github.com/Serubin/AJD-Site/shared/domain"
)

// --- Mocks ---

type MockUserService struct {
	MockFindByContact   func(ctx context.Context, c domain.Contact) (domain.User, bool, error)
	MockFindByID        func(ctx context.Context, id domain.UserId) (domain.User, bool, error)
	MockCheckUniqueness func(ctx context.Context, c domain.Contact, exclude domain.UserId) (domain.Uniqueness, error)
	MockCreate          func(ctx context.Context, in domain.UserInput) (domain.User, error)
	MockUpdate          func(ctx context.Context, id domain.UserId, in domain.UserInput) (domain.User, error)
}

func (m *MockUserService) FindByContact(ctx context.Context, c domain.Contact) (domain.User, bool, error) {
	if m.MockFindByContact != nil {
		return m.MockFindByContact(ctx, c)
	}
	return domain.User{}, false, nil
}

func (m *MockUserService) FindByID(ctx context.Context, id domain.UserId) (domain.User, bool, error) {
	if m.MockFindByID != nil {
		return m.MockFindByID(ctx, id)
	}
	return domain.User{}, false, nil
}

func (m *MockUserService) CheckUniqueness(ctx context.Context, c domain.Contact, exclude domain.UserId) (domain.Uniqueness, error) {
	if m.MockCheckUniqueness != nil {
		return m.MockCheckUniqueness(ctx, c, exclude)
	}
	return domain.Uniqueness{}, nil
}

func (m *MockUserService) Create(ctx context.Context, in domain.UserInput) (domain.User, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, in)
	}
	return domain.User{}, nil
}

func (m *MockUserService) Update(ctx context.Context, id domain.UserId, in domain.UserInput) (domain.User, error) {
	if m.MockUpdate != nil {
		return m.MockUpdate(ctx, id, in)
	}
	return domain.User{}, nil
}

type MockLinkService struct {
	MockIssue             func(ctx context.Context, userID domain.UserId) (domain.PresignedLink, error)
	MockResolve           func(ctx context.Context, slug domain.Slug) (domain.PresignedLink, error)
	MockConsume           func(ctx context.Context, id domain.LinkId) error
	MockRequestUpdateLink func(ctx context.Context, c domain.Contact) error
	MockPrefill           func(ctx context.Context, slug domain.Slug) (service.Prefill, error)
	MockUpdateViaLink     func(ctx context.Context, slug domain.Slug, in domain.UserInput) (domain.User, error)
}

func (m *MockLinkService) Issue(ctx context.Context, userID domain.UserId) (domain.PresignedLink, error) {
	if m.MockIssue != nil {
		return m.MockIssue(ctx, userID)
	}
	return domain.PresignedLink{}, nil
}

func (m *MockLinkService) Resolve(ctx context.Context, slug domain.Slug) (domain.PresignedLink, error) {
	if m.MockResolve != nil {
		return m.MockResolve(ctx, slug)
	}
	return domain.PresignedLink{}, nil
}

func (m *MockLinkService) Consume(ctx context.Context, id domain.LinkId) error {
	if m.MockConsume != nil {
		return m.MockConsume(ctx, id)
	}
	return nil
}

func (m *MockLinkService) RequestUpdateLink(ctx context.Context, c domain.Contact) error {
	if m.MockRequestUpdateLink != nil {
		return m.MockRequestUpdateLink(ctx, c)
	}
	return nil
}

func (m *MockLinkService) Prefill(ctx context.Context, slug domain.Slug) (service.Prefill, error) {
	if m.MockPrefill != nil {
		return m.MockPrefill(ctx, slug)
	}
	return service.Prefill{}, nil
}

func (m *MockLinkService) UpdateViaLink(ctx context.Context, slug domain.Slug, in domain.UserInput) (domain.User, error) {
	if m.MockUpdateViaLink != nil {
		return m.MockUpdateViaLink(ctx, slug, in)
	}
	return domain.User{}, nil
}

type MockContentService struct {
	MockPage          func(ctx context.Context, page string) (map[string]domain.Section, error)
	MockStatusContent func(ctx context.Context) domain.StatusContent
}

func (m *MockContentService) Page(ctx context.Context, page string) (map[string]domain.Section, error) {
	if m.MockPage != nil {
		return m.MockPage(ctx, page)
	}
	return map[string]domain.Section{}, nil
}

func (m *MockContentService) StatusContent(ctx context.Context) domain.StatusContent {
	if m.MockStatusContent != nil {
		return m.MockStatusContent(ctx)
	}
	return domain.DefaultStatusContent
}

type MockDistrictService struct {
	MockLookup func(ctx context.Context, lat, lng string) (string, error)
}

func (m *MockDistrictService) Lookup(ctx context.Context, lat, lng string) (string, error) {
	if m.MockLookup != nil {
		return m.MockLookup(ctx, lat, lng)
	}
	return "", nil
}

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// --- Helpers ---

func newTestHandler() *Handler {
	return New(&MockUserService{}, &MockLinkService{}, &MockContentService{}, &MockDistrictService{},
		&MockHealthChecker{}, &config.Config{})
}

func createRequest(t *testing.T, method, url string, body []byte, cookies ...*http.Cookie) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewBuffer(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// serve routes req through a chi router so URL params resolve.
func serve(pattern, method string, fn http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, fn)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}
