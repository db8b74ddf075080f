package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/storage/pg"
	"github.com/lib/pq"
)

const userColumns = `id, username, name, bio, image, onboarded, threads, created_at`

// uniqueViolation is the postgres error code for a unique constraint violation.
const uniqueViolation = "23505"

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	err := row.Scan(&user.Id, &user.Username, &user.Name, &user.Bio, &user.Image, &user.Onboarded, &user.Threads, &user.CreatedAt)
	if user.Threads == nil {
		user.Threads = domain.Ids{}
	}
	return user, err
}

func pushUserThread(ctx context.Context, q pg.Querier, userId domain.UserId, threadId domain.ThreadId) error {
	result, err := q.ExecContext(ctx, `
        UPDATE users SET threads = array_append(threads, $1::uuid)
        WHERE id = $2
    `, threadId, userId)
	if err != nil {
		return fmt.Errorf("failed to append user thread: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return internal_errors.NotFound("User not found")
	}
	return nil
}

// UpsertUser creates the user or overwrites its profile fields.
// The threads reverse index is never touched here.
func (s *Storage) UpsertUser(ctx context.Context, profile domain.UserProfileData) (domain.User, error) {
	db, err := s.db(ctx)
	if err != nil {
		return domain.User{}, err
	}

	user, err := scanUser(db.QueryRowContext(ctx, `
        INSERT INTO users (id, username, name, bio, image, onboarded)
        VALUES ($1, $2, $3, $4, $5, TRUE)
        ON CONFLICT (id) DO UPDATE SET
            username = EXCLUDED.username,
            name = EXCLUDED.name,
            bio = EXCLUDED.bio,
            image = EXCLUDED.image,
            onboarded = TRUE
        RETURNING `+userColumns,
		profile.Id, profile.Username, profile.Name, profile.Bio, profile.Image,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{
				Message:    "Username is already taken",
				StatusCode: http.StatusConflict,
				Err:        internal_errors.ErrValidation,
			}
		}
		return domain.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

func (s *Storage) GetUser(ctx context.Context, id domain.UserId) (domain.User, error) {
	db, err := s.db(ctx)
	if err != nil {
		return domain.User{}, err
	}

	user, err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("User not found")
		}
		return domain.User{}, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

// GetUsers is the batch lookup used to attach authors. Missing ids are skipped.
func (s *Storage) GetUsers(ctx context.Context, ids []domain.UserId) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, pq.StringArray(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return users, nil
}

// GetUnindexedThreads returns threads missing from their existing author's reverse index.
func (s *Storage) GetUnindexedThreads(ctx context.Context, limit int) ([]domain.ThreadDocument, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT t.id, t.text, t.author_id, t.parent_id, t.children, t.community_id, t.created_at
        FROM threads t
        JOIN users u ON u.id = t.author_id
        WHERE NOT (t.id = ANY(u.threads))
        ORDER BY t.created_at
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unindexed threads: %w", err)
	}
	return scanThreads(rows)
}

// LinkUserThread appends threadId to the user's reverse index unless it is already there.
func (s *Storage) LinkUserThread(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) (bool, error) {
	db, err := s.db(ctx)
	if err != nil {
		return false, err
	}

	result, err := db.ExecContext(ctx, `
        UPDATE users SET threads = array_append(threads, $1::uuid)
        WHERE id = $2 AND NOT ($1::uuid = ANY(threads))
    `, threadId, userId)
	if err != nil {
		return false, fmt.Errorf("failed to link user thread: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}
