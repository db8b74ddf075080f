package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/storage/pg"
	"github.com/itchan-dev/threads/shared/utils"
	"github.com/lib/pq"
)

const threadColumns = `id, text, author_id, parent_id, children, community_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThread(row rowScanner) (domain.ThreadDocument, error) {
	var doc domain.ThreadDocument
	err := row.Scan(&doc.Id, &doc.Text, &doc.AuthorId, &doc.ParentId, &doc.Children, &doc.Community, &doc.CreatedAt)
	if doc.Children == nil {
		doc.Children = domain.Ids{}
	}
	return doc, err
}

func scanThreads(rows *sql.Rows) ([]domain.ThreadDocument, error) {
	defer rows.Close()

	threads := []domain.ThreadDocument{}
	for rows.Next() {
		doc, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return threads, nil
}

// CreateRootThread inserts a thread without parent and appends it to the
// author's reverse index in one transaction.
func (s *Storage) CreateRootThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.ThreadDocument, error) {
	var doc domain.ThreadDocument
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		creationData.ParentId = nil
		if doc, err = insertThread(ctx, tx, creationData); err != nil {
			return err
		}
		return pushUserThread(ctx, tx, creationData.AuthorId, doc.Id)
	})
	if err != nil {
		return domain.ThreadDocument{}, err
	}
	return doc, nil
}

// CreateComment inserts a reply, appends it to the parent's children and to the
// author's reverse index in one transaction. Both appends are single-statement
// array pushes, so concurrent replies to one parent never overwrite each other.
func (s *Storage) CreateComment(ctx context.Context, creationData domain.ThreadCreationData) (domain.ThreadDocument, error) {
	if creationData.ParentId == nil {
		return domain.ThreadDocument{}, internal_errors.Validation("Parent thread is required")
	}

	var doc domain.ThreadDocument
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if doc, err = insertThread(ctx, tx, creationData); err != nil {
			return err
		}
		if err := pushChild(ctx, tx, *creationData.ParentId, doc.Id); err != nil {
			return err
		}
		return pushUserThread(ctx, tx, creationData.AuthorId, doc.Id)
	})
	if err != nil {
		return domain.ThreadDocument{}, err
	}
	return doc, nil
}

// InsertThread stores a thread without touching any backlink. Creation goes
// through CreateRootThread and CreateComment; this is the bare insert primitive
// used by imports, and the link repair pass fixes what it leaves unlinked.
func (s *Storage) InsertThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.ThreadDocument, error) {
	db, err := s.db(ctx)
	if err != nil {
		return domain.ThreadDocument{}, err
	}
	return insertThread(ctx, db, creationData)
}

func insertThread(ctx context.Context, q pg.Querier, creationData domain.ThreadCreationData) (domain.ThreadDocument, error) {
	doc, err := scanThread(q.QueryRowContext(ctx, `
        INSERT INTO threads (id, text, author_id, parent_id, children, community_id)
        VALUES ($1, $2, $3, $4, '{}', NULL)
        RETURNING `+threadColumns,
		utils.NewId(), creationData.Text, creationData.AuthorId, creationData.ParentId,
	))
	if err != nil {
		return domain.ThreadDocument{}, fmt.Errorf("failed to insert thread: %w", err)
	}
	return doc, nil
}

func pushChild(ctx context.Context, q pg.Querier, parentId, childId domain.ThreadId) error {
	result, err := q.ExecContext(ctx, `
        UPDATE threads SET children = array_append(children, $1::uuid)
        WHERE id = $2
    `, childId, parentId)
	if err != nil {
		return fmt.Errorf("failed to append child: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return internal_errors.NotFound("Thread not found")
	}
	return nil
}

// GetThread returns a single stored thread or a not found error.
func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.ThreadDocument, error) {
	db, err := s.db(ctx)
	if err != nil {
		return domain.ThreadDocument{}, err
	}

	doc, err := scanThread(db.QueryRowContext(ctx, `SELECT `+threadColumns+` FROM threads WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ThreadDocument{}, internal_errors.NotFound("Thread not found")
		}
		return domain.ThreadDocument{}, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return doc, nil
}

// GetThreads is the batch lookup used for population. Missing ids are skipped
// and the result order is unspecified.
func (s *Storage) GetThreads(ctx context.Context, ids []domain.ThreadId) ([]domain.ThreadDocument, error) {
	if len(ids) == 0 {
		return []domain.ThreadDocument{}, nil
	}
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT `+threadColumns+` FROM threads WHERE id = ANY($1::uuid[])`, pq.StringArray(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch threads: %w", err)
	}
	return scanThreads(rows)
}

// GetRootThreads returns a window of root threads, newest first.
func (s *Storage) GetRootThreads(ctx context.Context, skip, limit int) ([]domain.ThreadDocument, error) {
	if skip < 0 || limit < 0 {
		return nil, internal_errors.Validation("Skip and limit must not be negative")
	}
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT `+threadColumns+`
        FROM threads
        WHERE parent_id IS NULL
        ORDER BY created_at DESC, id DESC
        OFFSET $1 LIMIT $2
    `, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch root threads: %w", err)
	}
	return scanThreads(rows)
}

func (s *Storage) CountRootThreads(ctx context.Context) (int, error) {
	db, err := s.db(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM threads WHERE parent_id IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count root threads: %w", err)
	}
	return count, nil
}

// GetUnlinkedComments returns comments whose existing parent does not list them.
func (s *Storage) GetUnlinkedComments(ctx context.Context, limit int) ([]domain.ThreadDocument, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT c.id, c.text, c.author_id, c.parent_id, c.children, c.community_id, c.created_at
        FROM threads c
        JOIN threads p ON p.id = c.parent_id
        WHERE NOT (c.id = ANY(p.children))
        ORDER BY c.created_at
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unlinked comments: %w", err)
	}
	return scanThreads(rows)
}

// LinkChild appends childId to the parent's children unless it is already there.
func (s *Storage) LinkChild(ctx context.Context, parentId, childId domain.ThreadId) (bool, error) {
	db, err := s.db(ctx)
	if err != nil {
		return false, err
	}

	result, err := db.ExecContext(ctx, `
        UPDATE threads SET children = array_append(children, $1::uuid)
        WHERE id = $2 AND NOT ($1::uuid = ANY(children))
    `, childId, parentId)
	if err != nil {
		return false, fmt.Errorf("failed to link child: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}
