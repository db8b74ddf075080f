package service

import (
	"context"
	"errors"
	"testing"

	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	shared_utils "github.com/itchan-dev/threads/shared/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserUpsertProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and then updates without touching threads", func(t *testing.T) {
		f := newFixture(t)
		id := shared_utils.NewId()

		user, err := f.users.UpsertProfile(ctx, domain.UserProfileData{Id: id, Username: "alice", Name: "Alice"}, "/profile")
		require.NoError(t, err)
		assert.True(t, user.Onboarded)
		assert.Empty(t, user.Threads)

		root := f.createRoot(t, id, "root")

		user, err = f.users.UpsertProfile(ctx, domain.UserProfileData{Id: id, Username: "alice_2", Name: "Alice", Bio: "hi"}, "")
		require.NoError(t, err)
		assert.Equal(t, "alice_2", user.Username)
		assert.Equal(t, "hi", user.Bio)
		assert.Equal(t, domain.Ids{root}, user.Threads)
		assert.Equal(t, []string{"/profile"}, f.invalidator.Paths())
	})

	t.Run("invalid profile", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.users.UpsertProfile(ctx, domain.UserProfileData{Id: "x", Username: "alice", Name: "Alice"}, "")
		assert.ErrorIs(t, err, internal_errors.ErrValidation)

		_, err = f.users.UpsertProfile(ctx, domain.UserProfileData{Id: shared_utils.NewId(), Username: "al ice", Name: "Alice"}, "")
		assert.ErrorIs(t, err, internal_errors.ErrValidation)
	})

	t.Run("username taken", func(t *testing.T) {
		f := newFixture(t)
		f.createUser(t, "alice")

		_, err := f.users.UpsertProfile(ctx, domain.UserProfileData{Id: shared_utils.NewId(), Username: "alice", Name: "Alice"}, "")
		require.Error(t, err)
		assert.Equal(t, 409, internal_errors.StatusCode(err))
	})

	t.Run("failed invalidation keeps the profile", func(t *testing.T) {
		f := newFixture(t)
		f.invalidator.invalidateFunc = func(ctx context.Context, path string) error {
			return errors.New("broker down")
		}
		id := shared_utils.NewId()

		_, err := f.users.UpsertProfile(ctx, domain.UserProfileData{Id: id, Username: "alice", Name: "Alice"}, "/")
		assert.ErrorIs(t, err, internal_errors.ErrPartialWrite)

		_, err = f.store.GetUser(ctx, id)
		assert.NoError(t, err)
	})
}

func TestUserGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.createUser(t, "alice")

	user, err := f.users.Get(ctx, alice.Id)
	require.NoError(t, err)
	assert.Equal(t, alice.Username, user.Username)

	_, err = f.users.Get(ctx, shared_utils.NewId())
	assert.ErrorIs(t, err, internal_errors.ErrNotFound)

	_, err = f.users.Get(ctx, "bad")
	assert.ErrorIs(t, err, internal_errors.ErrValidation)
}

func TestUserThreads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	older := f.createRoot(t, alice.Id, "older")
	newer := f.createRoot(t, alice.Id, "newer")
	reply := f.createComment(t, older, bob.Id, "reply")
	f.createRoot(t, bob.Id, "not alice")

	result, err := f.users.Threads(ctx, alice.Id)
	require.NoError(t, err)
	assert.Equal(t, alice.Id, result.User.Id)
	require.Len(t, result.Threads, 2)
	assert.Equal(t, newer, result.Threads[0].Id)
	assert.Equal(t, older, result.Threads[1].Id)

	assert.Equal(t, alice.Username, result.Threads[0].Author.Username)
	require.Len(t, result.Threads[1].Children, 1)
	assert.Equal(t, reply, result.Threads[1].Children[0].Id)
	assert.Equal(t, bob.Id, result.Threads[1].Children[0].Author.Id)

	_, err = f.users.Threads(ctx, shared_utils.NewId())
	assert.ErrorIs(t, err, internal_errors.ErrNotFound)
}
