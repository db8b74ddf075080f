package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/threads/backend/internal/service"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/domain"
	mw "github.com/itchan-dev/threads/shared/middleware"
)

const testUserId = "8c1f4a3e-6d0e-4b7f-9f9e-1b2c3d4e5f60"

// --- Mocks ---

type MockThreadService struct {
	MockCreateRoot    func(ctx context.Context, data domain.ThreadCreationData, path string) (domain.ThreadId, error)
	MockCreateComment func(ctx context.Context, data domain.ThreadCreationData, path string) (domain.ThreadId, error)
	MockGet           func(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	MockExpand        func(ctx context.Context, id domain.ThreadId, depth int) (*domain.Thread, error)
}

func (m *MockThreadService) CreateRoot(ctx context.Context, data domain.ThreadCreationData, path string) (domain.ThreadId, error) {
	if m.MockCreateRoot != nil {
		return m.MockCreateRoot(ctx, data, path)
	}
	return "", nil
}

func (m *MockThreadService) CreateComment(ctx context.Context, data domain.ThreadCreationData, path string) (domain.ThreadId, error) {
	if m.MockCreateComment != nil {
		return m.MockCreateComment(ctx, data, path)
	}
	return "", nil
}

func (m *MockThreadService) Get(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if m.MockGet != nil {
		return m.MockGet(ctx, id)
	}
	return nil, nil
}

func (m *MockThreadService) Expand(ctx context.Context, id domain.ThreadId, depth int) (*domain.Thread, error) {
	if m.MockExpand != nil {
		return m.MockExpand(ctx, id, depth)
	}
	return nil, nil
}

type MockFeedService struct {
	MockPage func(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error)
}

func (m *MockFeedService) Page(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error) {
	if m.MockPage != nil {
		return m.MockPage(ctx, page, pageSize)
	}
	return &domain.ThreadsPage{Threads: []*domain.Thread{}}, nil
}

type MockUserService struct {
	MockUpsertProfile func(ctx context.Context, profile domain.UserProfileData, path string) (*domain.User, error)
	MockGet           func(ctx context.Context, id domain.UserId) (*domain.User, error)
	MockThreads       func(ctx context.Context, id domain.UserId) (*service.UserThreads, error)
}

func (m *MockUserService) UpsertProfile(ctx context.Context, profile domain.UserProfileData, path string) (*domain.User, error) {
	if m.MockUpsertProfile != nil {
		return m.MockUpsertProfile(ctx, profile, path)
	}
	return &domain.User{Id: profile.Id}, nil
}

func (m *MockUserService) Get(ctx context.Context, id domain.UserId) (*domain.User, error) {
	if m.MockGet != nil {
		return m.MockGet(ctx, id)
	}
	return &domain.User{Id: id}, nil
}

func (m *MockUserService) Threads(ctx context.Context, id domain.UserId) (*service.UserThreads, error) {
	if m.MockThreads != nil {
		return m.MockThreads(ctx, id)
	}
	return &service.UserThreads{User: &domain.User{Id: id}}, nil
}

type MockHealthChecker struct {
	MockPing func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.MockPing != nil {
		return m.MockPing(ctx)
	}
	return nil
}

// --- Helpers ---

func testConfig() *config.Config {
	return &config.Config{Public: config.Public{ThreadsPerPage: 20, MaxPageSize: 100, PopulateDepth: 2, MaxPopulateDepth: 5}}
}

func newTestHandler() (*Handler, *MockThreadService, *MockFeedService, *MockUserService, *MockHealthChecker) {
	threads := &MockThreadService{}
	feed := &MockFeedService{}
	users := &MockUserService{}
	health := &MockHealthChecker{}
	return New(threads, feed, users, health, testConfig()), threads, feed, users, health
}

// newRequest builds a request with chi url params and an optional caller.
func newRequest(method, target, body string, userId string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userId != "" {
		ctx = context.WithValue(ctx, mw.UserIdKey, userId)
	}
	return req.WithContext(ctx)
}

func TestWriteJSONStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSONStatus(rr, http.StatusCreated, map[string]string{"id": "1"})

	if rr.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected json content type, got %q", ct)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"id":"1"}` {
		t.Errorf("unexpected body %q", rr.Body.String())
	}
}
