package service

import (
	"context"
	"slices"

	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/itchan-dev/threads/shared/utils"
)

type UserService interface {
	UpsertProfile(ctx context.Context, profile domain.UserProfileData, invalidationPath string) (*domain.User, error)
	Get(ctx context.Context, id domain.UserId) (*domain.User, error)
	Threads(ctx context.Context, id domain.UserId) (*UserThreads, error)
}

// UserThreads is a user with every authored thread populated one level deep.
type UserThreads struct {
	User    *domain.User
	Threads []*domain.Thread
}

type User struct {
	storage     UserStorage
	threads     ThreadReader
	validator   UserValidator
	invalidator Invalidator
	populator   *populator
}

type UserStorage interface {
	UserReader
	UpsertUser(ctx context.Context, profile domain.UserProfileData) (domain.User, error)
}

type UserValidator interface {
	Profile(profile domain.UserProfileData) error
}

func NewUser(storage UserStorage, threads ThreadReader, validator UserValidator, invalidator Invalidator, renderer TextRenderer) UserService {
	return &User{
		storage:     storage,
		threads:     threads,
		validator:   validator,
		invalidator: invalidator,
		populator:   &populator{threads: threads, users: storage, renderer: renderer},
	}
}

// UpsertProfile creates the user or overwrites its profile and marks it
// onboarded. The authored threads list is left as is.
func (s *User) UpsertProfile(ctx context.Context, profile domain.UserProfileData, invalidationPath string) (*domain.User, error) {
	id, err := utils.ParseId(profile.Id, "user id")
	if err != nil {
		return nil, err
	}
	profile.Id = id
	if err := s.validator.Profile(profile); err != nil {
		return nil, err
	}

	user, err := s.storage.UpsertUser(ctx, profile)
	if err != nil {
		logger.Log.Error("failed to upsert user", "user_id", profile.Id, "error", err)
		return nil, err
	}

	if invalidationPath != "" {
		if err := s.invalidator.Invalidate(ctx, invalidationPath); err != nil {
			logger.Log.Error("failed to signal invalidation", "user_id", user.Id, "path", invalidationPath, "error", err)
			return &user, &internal_errors.PartialWriteError{Id: user.Id, Step: "invalidation", Err: err}
		}
	}
	return &user, nil
}

func (s *User) Get(ctx context.Context, id domain.UserId) (*domain.User, error) {
	id, err := utils.ParseId(id, "user id")
	if err != nil {
		return nil, err
	}
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Threads returns the user's authored threads newest first, with replies
// populated one level.
func (s *User) Threads(ctx context.Context, id domain.UserId) (*UserThreads, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	docs, err := s.threads.GetThreads(ctx, user.Threads)
	if err != nil {
		logger.Log.Error("failed to fetch user threads", "user_id", id, "error", err)
		return nil, err
	}
	slices.SortFunc(docs, func(a, b domain.ThreadDocument) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	threads, err := s.populator.populate(ctx, docs, 1, profile)
	if err != nil {
		logger.Log.Error("failed to populate user threads", "user_id", id, "error", err)
		return nil, err
	}
	return &UserThreads{User: user, Threads: threads}, nil
}
