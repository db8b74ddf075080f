package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/itchan-dev/threads/shared/domain"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/robfig/cron/v3"
)

// DefaultRepairBatch caps how many broken links one pass restores per kind.
const DefaultRepairBatch = 500

// LinkRepairer restores backlinks that a stored thread is missing: a comment
// absent from its parent's children, or a thread absent from its author's
// threads list. Creation writes both inside one transaction, so these only
// appear after bare inserts or manual edits.
type LinkRepairer struct {
	storage   RepairStorage
	batchSize int

	mu        sync.Mutex
	lastStats RepairStats
}

// RepairStats tracks metrics from the last repair run.
type RepairStats struct {
	RunAt             time.Time
	ChildrenScanned   int
	ChildrenLinked    int
	UserThreadScanned int
	UserThreadLinked  int
	DurationMs        int64
	Errors            []string
}

// RepairStorage defines the storage operations needed for the repair pass.
type RepairStorage interface {
	GetUnlinkedComments(ctx context.Context, limit int) ([]domain.ThreadDocument, error)
	LinkChild(ctx context.Context, parentId, childId domain.ThreadId) (bool, error)
	GetUnindexedThreads(ctx context.Context, limit int) ([]domain.ThreadDocument, error)
	LinkUserThread(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) (bool, error)
}

func NewLinkRepairer(storage RepairStorage, batchSize int) *LinkRepairer {
	if batchSize <= 0 {
		batchSize = DefaultRepairBatch
	}
	return &LinkRepairer{storage: storage, batchSize: batchSize}
}

// StartBackgroundRepair runs the repair pass on the given cron schedule until
// ctx is cancelled. An empty schedule disables it.
func (r *LinkRepairer) StartBackgroundRepair(ctx context.Context, expr string) error {
	if expr == "" {
		logger.Log.Warn("repair schedule not configured, background repair disabled",
			"component", "link_repair")
		return nil
	}
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("invalid repair schedule %q: %w", expr, err)
	}

	logger.Log.Info("started link repairer",
		"component", "link_repair",
		"schedule", expr)

	go func() {
		for {
			timer := time.NewTimer(time.Until(schedule.Next(time.Now())))
			select {
			case <-timer.C:
				if err := r.RunRepair(ctx); err != nil {
					logger.Log.Error("link repair failed",
						"component", "link_repair",
						"error", err)
					continue
				}
				stats := r.LastStats()
				logger.Log.Info("link repair completed",
					"component", "link_repair",
					"children_scanned", stats.ChildrenScanned,
					"children_linked", stats.ChildrenLinked,
					"user_threads_scanned", stats.UserThreadScanned,
					"user_threads_linked", stats.UserThreadLinked,
					"duration_ms", stats.DurationMs,
					"errors", len(stats.Errors))
			case <-ctx.Done():
				timer.Stop()
				logger.Log.Info("link repairer shutting down gracefully",
					"component", "link_repair")
				return
			}
		}
	}()
	return nil
}

// RunRepair executes a single repair cycle.
func (r *LinkRepairer) RunRepair(ctx context.Context) error {
	startTime := time.Now()
	stats := RepairStats{
		RunAt:  startTime,
		Errors: []string{},
	}

	// Step 1: comments missing from their parent
	comments, err := r.storage.GetUnlinkedComments(ctx, r.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list unlinked comments: %w", err)
	}
	stats.ChildrenScanned = len(comments)
	for _, comment := range comments {
		linked, err := r.storage.LinkChild(ctx, *comment.ParentId, comment.Id)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("thread %s: failed to link to parent %s: %v", comment.Id, *comment.ParentId, err))
			continue
		}
		if linked {
			stats.ChildrenLinked++
			linksRepaired.WithLabelValues("children").Inc()
		}
	}

	// Step 2: threads missing from their author
	threads, err := r.storage.GetUnindexedThreads(ctx, r.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list unindexed threads: %w", err)
	}
	stats.UserThreadScanned = len(threads)
	for _, thread := range threads {
		linked, err := r.storage.LinkUserThread(ctx, thread.AuthorId, thread.Id)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("thread %s: failed to link to author %s: %v", thread.Id, thread.AuthorId, err))
			continue
		}
		if linked {
			stats.UserThreadLinked++
			linksRepaired.WithLabelValues("user_threads").Inc()
		}
	}

	stats.DurationMs = time.Since(startTime).Milliseconds()
	r.mu.Lock()
	r.lastStats = stats
	r.mu.Unlock()

	return nil
}

// LastStats returns statistics from the last repair run.
func (r *LinkRepairer) LastStats() RepairStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastStats
}
