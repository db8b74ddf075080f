package service

import (
	"context"
	"math"

	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/logger"
)

type FeedService interface {
	Page(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error)
}

type Feed struct {
	storage     FeedStorage
	populator   *populator
	maxPageSize int
}

type FeedStorage interface {
	ThreadReader
	GetRootThreads(ctx context.Context, skip, limit int) ([]domain.ThreadDocument, error)
	CountRootThreads(ctx context.Context) (int, error)
}

func NewFeed(storage FeedStorage, users UserReader, renderer TextRenderer, maxPageSize int) FeedService {
	return &Feed{
		storage:     storage,
		populator:   &populator{threads: storage, users: users, renderer: renderer},
		maxPageSize: maxPageSize,
	}
}

// Page returns one window of root threads, newest first, each with its direct
// replies attached. The count and the window are separate reads, so
// HasNextPage may be stale under concurrent writes.
func (f *Feed) Page(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error) {
	if page < 1 {
		return nil, internal_errors.Validation("Page number must be positive")
	}
	if pageSize < 1 {
		return nil, internal_errors.Validation("Page size must be positive")
	}
	if f.maxPageSize > 0 && pageSize > f.maxPageSize {
		pageSize = f.maxPageSize
	}
	if page-1 > math.MaxInt/pageSize {
		// the window starts past anything storable
		return &domain.ThreadsPage{Threads: []*domain.Thread{}, HasNextPage: false}, nil
	}
	skip := (page - 1) * pageSize

	docs, err := f.storage.GetRootThreads(ctx, skip, pageSize)
	if err != nil {
		logger.Log.Error("failed to fetch root threads", "page", page, "page_size", pageSize, "error", err)
		return nil, err
	}

	threads, err := f.populator.populate(ctx, docs, 1, profile)
	if err != nil {
		logger.Log.Error("failed to populate root threads", "page", page, "error", err)
		return nil, err
	}

	total, err := f.storage.CountRootThreads(ctx)
	if err != nil {
		logger.Log.Error("failed to count root threads", "error", err)
		return nil, err
	}

	return &domain.ThreadsPage{
		Threads:     threads,
		HasNextPage: total > skip+len(threads),
	}, nil
}
