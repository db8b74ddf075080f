package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/itchan-dev/threads/backend/internal/storage/memory"
	"github.com/itchan-dev/threads/backend/internal/utils"
	"github.com/itchan-dev/threads/shared/domain"
	shared_utils "github.com/itchan-dev/threads/shared/utils"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockInvalidator struct {
	mu             sync.Mutex
	invalidateFunc func(ctx context.Context, path string) error
	paths          []string
}

func (m *MockInvalidator) Invalidate(ctx context.Context, path string) error {
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()

	if m.invalidateFunc != nil {
		return m.invalidateFunc(ctx, path)
	}
	return nil
}

func (m *MockInvalidator) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

// MockFeedStorage lets single calls fail while the rest hit a real store.
type MockFeedStorage struct {
	*memory.Storage
	getRootThreadsFunc   func(ctx context.Context, skip, limit int) ([]domain.ThreadDocument, error)
	countRootThreadsFunc func(ctx context.Context) (int, error)
}

func (m *MockFeedStorage) GetRootThreads(ctx context.Context, skip, limit int) ([]domain.ThreadDocument, error) {
	if m.getRootThreadsFunc != nil {
		return m.getRootThreadsFunc(ctx, skip, limit)
	}
	return m.Storage.GetRootThreads(ctx, skip, limit)
}

func (m *MockFeedStorage) CountRootThreads(ctx context.Context) (int, error) {
	if m.countRootThreadsFunc != nil {
		return m.countRootThreadsFunc(ctx)
	}
	return m.Storage.CountRootThreads(ctx)
}

// plainRenderer wraps text so tests can tell rendering happened.
type plainRenderer struct{}

func (plainRenderer) Render(text string) string {
	return "<p>" + text + "</p>"
}

// --- Fixtures ---

type fixture struct {
	store       *memory.Storage
	invalidator *MockInvalidator
	threads     ThreadService
	feed        FeedService
	users       UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	invalidator := &MockInvalidator{}
	return &fixture{
		store:       store,
		invalidator: invalidator,
		threads:     NewThread(store, store, &utils.ThreadTextValidator{MaxLength: 1000}, invalidator, plainRenderer{}, 5),
		feed:        NewFeed(store, store, plainRenderer{}, 100),
		users:       NewUser(store, store, &utils.UserProfileValidator{}, invalidator, plainRenderer{}),
	}
}

func (f *fixture) createUser(t *testing.T, username string) domain.User {
	t.Helper()
	user, err := f.store.UpsertUser(context.Background(), domain.UserProfileData{
		Id:       shared_utils.NewId(),
		Username: username,
		Name:     "Name of " + username,
		Bio:      "Bio of " + username,
		Image:    "https://img.example/" + username + ".png",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) createRoot(t *testing.T, author domain.UserId, text string) domain.ThreadId {
	t.Helper()
	id, err := f.threads.CreateRoot(context.Background(), domain.ThreadCreationData{Text: text, AuthorId: author}, "")
	require.NoError(t, err)
	return id
}

func (f *fixture) createComment(t *testing.T, parent domain.ThreadId, author domain.UserId, text string) domain.ThreadId {
	t.Helper()
	id, err := f.threads.CreateComment(context.Background(), domain.ThreadCreationData{Text: text, AuthorId: author, ParentId: &parent}, "")
	require.NoError(t, err)
	return id
}

// createChain builds root -> c1 -> ... -> cN and returns all ids, root first.
func (f *fixture) createChain(t *testing.T, author domain.UserId, length int) []domain.ThreadId {
	t.Helper()
	ids := []domain.ThreadId{f.createRoot(t, author, "root")}
	for i := 1; i <= length; i++ {
		ids = append(ids, f.createComment(t, ids[i-1], author, fmt.Sprintf("level %d", i)))
	}
	return ids
}
