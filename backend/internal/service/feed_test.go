package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedPage(t *testing.T) {
	ctx := context.Background()

	t.Run("has next page over 45 roots", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice")
		for i := range 45 {
			f.createRoot(t, alice.Id, fmt.Sprintf("root %d", i))
		}

		expected := []struct {
			page    int
			count   int
			hasNext bool
		}{
			{1, 20, true},
			{2, 20, true},
			{3, 5, false},
			{4, 0, false},
		}
		for _, tc := range expected {
			page, err := f.feed.Page(ctx, tc.page, 20)
			require.NoError(t, err)
			assert.Len(t, page.Threads, tc.count, "page %d", tc.page)
			assert.Equal(t, tc.hasNext, page.HasNextPage, "page %d", tc.page)
		}
	})

	t.Run("pages cover every root once, newest first", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice")
		var created []domain.ThreadId
		for i := range 23 {
			created = append(created, f.createRoot(t, alice.Id, fmt.Sprintf("root %d", i)))
		}
		// replies are not roots
		f.createComment(t, created[0], alice.Id, "reply")

		var seen []domain.ThreadId
		for page := 1; ; page++ {
			result, err := f.feed.Page(ctx, page, 5)
			require.NoError(t, err)
			for _, thread := range result.Threads {
				assert.Nil(t, thread.ParentId)
				seen = append(seen, thread.Id)
			}
			if !result.HasNextPage {
				break
			}
		}

		require.Len(t, seen, len(created))
		for i, id := range seen {
			assert.Equal(t, created[len(created)-1-i], id)
		}
	})

	t.Run("roots carry the profile author and one level of replies", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice")
		bob := f.createUser(t, "bob")
		root := f.createRoot(t, alice.Id, "root")
		reply := f.createComment(t, root, bob.Id, "reply")
		nested := f.createComment(t, reply, alice.Id, "nested")

		page, err := f.feed.Page(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, page.Threads, 1)

		thread := page.Threads[0]
		require.NotNil(t, thread.Author)
		assert.Equal(t, alice.Username, thread.Author.Username)
		assert.Equal(t, alice.Bio, thread.Author.Bio)
		assert.Equal(t, "<p>root</p>", thread.TextHTML)

		require.Len(t, thread.Children, 1)
		child := thread.Children[0]
		assert.Equal(t, reply, child.Id)
		require.NotNil(t, child.Author)
		assert.Equal(t, bob.Id, child.Author.Id)
		assert.Empty(t, child.Author.Username)
		assert.Nil(t, child.Children)
		assert.Equal(t, domain.Ids{nested}, child.ChildIds)
	})

	t.Run("page size is clamped", func(t *testing.T) {
		f := newFixture(t)
		f.feed = NewFeed(f.store, f.store, plainRenderer{}, 3)
		alice := f.createUser(t, "alice")
		for i := range 5 {
			f.createRoot(t, alice.Id, fmt.Sprintf("root %d", i))
		}

		page, err := f.feed.Page(ctx, 1, 50)
		require.NoError(t, err)
		assert.Len(t, page.Threads, 3)
		assert.True(t, page.HasNextPage)
	})

	t.Run("empty feed", func(t *testing.T) {
		f := newFixture(t)

		page, err := f.feed.Page(ctx, 1, 20)
		require.NoError(t, err)
		assert.NotNil(t, page.Threads)
		assert.Empty(t, page.Threads)
		assert.False(t, page.HasNextPage)
	})

	t.Run("page far past the end is empty", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice")
		f.createRoot(t, alice.Id, "only root")

		for _, pageNumber := range []int{math.MaxInt / 10, math.MaxInt} {
			page, err := f.feed.Page(ctx, pageNumber, 20)
			require.NoError(t, err)
			assert.NotNil(t, page.Threads)
			assert.Empty(t, page.Threads)
			assert.False(t, page.HasNextPage)
		}
	})

	t.Run("invalid page arguments", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.feed.Page(ctx, 0, 20)
		assert.ErrorIs(t, err, internal_errors.ErrValidation)

		_, err = f.feed.Page(ctx, 1, 0)
		assert.ErrorIs(t, err, internal_errors.ErrValidation)
	})

	t.Run("storage errors propagate", func(t *testing.T) {
		f := newFixture(t)
		storage := &MockFeedStorage{Storage: f.store}
		feed := NewFeed(storage, f.store, plainRenderer{}, 100)
		unreachable := &internal_errors.ConnectionError{Err: fmt.Errorf("dial tcp: refused")}

		storage.getRootThreadsFunc = func(ctx context.Context, skip, limit int) ([]domain.ThreadDocument, error) {
			return nil, unreachable
		}
		_, err := feed.Page(ctx, 1, 20)
		assert.ErrorIs(t, err, internal_errors.ErrConnection)

		storage.getRootThreadsFunc = nil
		storage.countRootThreadsFunc = func(ctx context.Context) (int, error) {
			return 0, unreachable
		}
		_, err = feed.Page(ctx, 1, 20)
		assert.ErrorIs(t, err, internal_errors.ErrConnection)
	})

	t.Run("skip and limit reach storage", func(t *testing.T) {
		f := newFixture(t)
		storage := &MockFeedStorage{Storage: f.store}
		feed := NewFeed(storage, f.store, plainRenderer{}, 100)

		var gotSkip, gotLimit int
		storage.getRootThreadsFunc = func(ctx context.Context, skip, limit int) ([]domain.ThreadDocument, error) {
			gotSkip, gotLimit = skip, limit
			return []domain.ThreadDocument{}, nil
		}
		_, err := feed.Page(ctx, 3, 7)
		require.NoError(t, err)
		assert.Equal(t, 14, gotSkip)
		assert.Equal(t, 7, gotLimit)
	})
}
