package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/itchan-dev/threads/shared/utils"
)

type ThreadService interface {
	CreateRoot(ctx context.Context, data domain.ThreadCreationData, invalidationPath string) (domain.ThreadId, error)
	CreateComment(ctx context.Context, data domain.ThreadCreationData, invalidationPath string) (domain.ThreadId, error)
	Get(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	Expand(ctx context.Context, id domain.ThreadId, depth int) (*domain.Thread, error)
}

type Thread struct {
	storage     ThreadStorage
	validator   ThreadValidator
	invalidator Invalidator
	populator   *populator
	maxDepth    int
}

type ThreadStorage interface {
	ThreadReader
	CreateRootThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.ThreadDocument, error)
	CreateComment(ctx context.Context, creationData domain.ThreadCreationData) (domain.ThreadDocument, error)
}

type ThreadValidator interface {
	Text(text domain.ThreadText) error
}

// Invalidator tells downstream caches that the view behind path is stale.
type Invalidator interface {
	Invalidate(ctx context.Context, path string) error
}

func NewThread(storage ThreadStorage, users UserReader, validator ThreadValidator, invalidator Invalidator, renderer TextRenderer, maxDepth int) ThreadService {
	if maxDepth < DefaultPopulateDepth {
		maxDepth = DefaultPopulateDepth
	}
	return &Thread{
		storage:     storage,
		validator:   validator,
		invalidator: invalidator,
		populator:   &populator{threads: storage, users: users, renderer: renderer},
		maxDepth:    maxDepth,
	}
}

// CreateRoot stores a new top level thread and indexes it under its author.
func (b *Thread) CreateRoot(ctx context.Context, data domain.ThreadCreationData, invalidationPath string) (domain.ThreadId, error) {
	data.ParentId = nil
	data, err := b.validateCreation(data)
	if err != nil {
		return "", err
	}

	doc, err := b.storage.CreateRootThread(ctx, data)
	if err != nil {
		logger.Log.Error("failed to create root thread", "author_id", data.AuthorId, "error", err)
		threadsCreated.WithLabelValues(kindRoot, resultError).Inc()
		return "", err
	}
	threadsCreated.WithLabelValues(kindRoot, resultOk).Inc()
	logger.Log.Info("root thread created", "thread_id", doc.Id, "author_id", data.AuthorId)

	return doc.Id, b.invalidate(ctx, doc.Id, invalidationPath)
}

// CreateComment stores a reply, appends it to its parent's children and
// indexes it under its author. A parent that does not exist is an error.
func (b *Thread) CreateComment(ctx context.Context, data domain.ThreadCreationData, invalidationPath string) (domain.ThreadId, error) {
	if data.ParentId == nil {
		return "", internal_errors.Validation("Parent thread is required")
	}
	// a malformed parent id cannot name any stored thread
	parentId, err := utils.ParseId(*data.ParentId, "thread id")
	if err != nil {
		logger.Log.Error("failed to create comment", "parent_id", *data.ParentId, "error", err)
		return "", fmt.Errorf("Error while creating thread: %w", internal_errors.NotFound("Thread not found"))
	}
	data.ParentId = &parentId
	data, err = b.validateCreation(data)
	if err != nil {
		return "", err
	}

	id, err := b.createComment(ctx, data)
	if err != nil {
		logger.Log.Error("failed to create comment",
			"parent_id", *data.ParentId,
			"author_id", data.AuthorId,
			"error", err)
		threadsCreated.WithLabelValues(kindComment, resultError).Inc()
		return "", fmt.Errorf("Error while creating thread: %w", err)
	}
	threadsCreated.WithLabelValues(kindComment, resultOk).Inc()
	logger.Log.Info("comment created", "thread_id", id, "parent_id", *data.ParentId, "author_id", data.AuthorId)

	return id, b.invalidate(ctx, id, invalidationPath)
}

func (b *Thread) createComment(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error) {
	if _, err := b.storage.GetThread(ctx, *data.ParentId); err != nil {
		return "", err
	}
	doc, err := b.storage.CreateComment(ctx, data)
	if err != nil {
		return "", err
	}
	return doc.Id, nil
}

// validateCreation checks the payload before any I/O and normalizes the author id.
func (b *Thread) validateCreation(data domain.ThreadCreationData) (domain.ThreadCreationData, error) {
	if err := b.validator.Text(data.Text); err != nil {
		return data, err
	}
	authorId, err := utils.ParseId(data.AuthorId, "author id")
	if err != nil {
		return data, err
	}
	data.AuthorId = authorId
	return data, nil
}

// invalidate signals a committed write. A failure here leaves the thread
// stored, so it is reported as a partial write carrying the new id.
func (b *Thread) invalidate(ctx context.Context, id domain.ThreadId, path string) error {
	if path == "" {
		return nil
	}
	if err := b.invalidator.Invalidate(ctx, path); err != nil {
		logger.Log.Error("failed to signal invalidation", "thread_id", id, "path", path, "error", err)
		return &internal_errors.PartialWriteError{Id: id, Step: "invalidation", Err: err}
	}
	return nil
}

// Get returns the thread with DefaultPopulateDepth levels of replies attached.
// A malformed or unknown id yields nil without an error.
func (b *Thread) Get(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	return b.fetch(ctx, id, DefaultPopulateDepth)
}

// Expand is Get with a caller chosen depth, used to open nodes below the
// default depth.
func (b *Thread) Expand(ctx context.Context, id domain.ThreadId, depth int) (*domain.Thread, error) {
	if depth < 0 || depth > b.maxDepth {
		return nil, internal_errors.Validation(fmt.Sprintf("Depth must be between 0 and %d", b.maxDepth))
	}
	return b.fetch(ctx, id, depth)
}

func (b *Thread) fetch(ctx context.Context, id domain.ThreadId, depth int) (*domain.Thread, error) {
	id, err := utils.ParseId(id, "thread id")
	if err != nil {
		return nil, nil
	}

	doc, err := b.storage.GetThread(ctx, id)
	if err != nil {
		if errors.Is(err, internal_errors.ErrNotFound) {
			return nil, nil
		}
		logger.Log.Error("failed to fetch thread", "thread_id", id, "error", err)
		return nil, err
	}

	thread, err := b.populator.populateOne(ctx, doc, depth, summary)
	if err != nil {
		logger.Log.Error("failed to populate thread", "thread_id", id, "depth", depth, "error", err)
		return nil, err
	}
	threadsPopulated.Observe(float64(countNodes(thread)))
	return thread, nil
}

func countNodes(thread *domain.Thread) int {
	n := 0
	thread.Walk(func(*domain.Thread, int) { n++ })
	return n
}
