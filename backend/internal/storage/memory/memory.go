// Package memory is an in-process implementation of the thread and user
// document stores. It backs local development (storage: memory) and gives
// every test an isolated store.
package memory

import (
	"context"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/utils"
)

type threadRecord struct {
	doc domain.ThreadDocument
	seq int64 // insertion order, breaks created_at ties
}

// Storage keeps documents in maps guarded by one RWMutex. Every multi-document
// write happens under the write lock, which makes it atomic.
type Storage struct {
	mu        sync.RWMutex
	threads   map[domain.ThreadId]*threadRecord
	users     map[domain.UserId]*domain.User
	usernames map[domain.Username]domain.UserId
	seq       int64
	lastTs    time.Time
	now       func() time.Time
}

func New() *Storage {
	return &Storage{
		threads:   make(map[domain.ThreadId]*threadRecord),
		users:     make(map[domain.UserId]*domain.User),
		usernames: make(map[domain.Username]domain.UserId),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Storage) Ping(_ context.Context) error {
	return nil
}

func (s *Storage) Cleanup() error {
	return nil
}

// timestamp returns a strictly increasing creation time.
func (s *Storage) timestamp() time.Time {
	ts := s.now()
	if !ts.After(s.lastTs) {
		ts = s.lastTs.Add(time.Microsecond)
	}
	s.lastTs = ts
	return ts
}

func copyThread(doc domain.ThreadDocument) domain.ThreadDocument {
	doc.Children = slices.Clone(doc.Children)
	if doc.Children == nil {
		doc.Children = domain.Ids{}
	}
	if doc.ParentId != nil {
		parent := *doc.ParentId
		doc.ParentId = &parent
	}
	return doc
}

func copyUser(user domain.User) domain.User {
	user.Threads = slices.Clone(user.Threads)
	if user.Threads == nil {
		user.Threads = domain.Ids{}
	}
	return user
}

func (s *Storage) insertThread(creationData domain.ThreadCreationData) *threadRecord {
	s.seq++
	record := &threadRecord{
		doc: domain.ThreadDocument{
			Id:        utils.NewId(),
			Text:      creationData.Text,
			AuthorId:  creationData.AuthorId,
			ParentId:  creationData.ParentId,
			Children:  domain.Ids{},
			CreatedAt: s.timestamp(),
		},
		seq: s.seq,
	}
	s.threads[record.doc.Id] = record
	return record
}

func (s *Storage) CreateRootThread(_ context.Context, creationData domain.ThreadCreationData) (domain.ThreadDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	author, ok := s.users[creationData.AuthorId]
	if !ok {
		return domain.ThreadDocument{}, internal_errors.NotFound("User not found")
	}

	creationData.ParentId = nil
	record := s.insertThread(creationData)
	author.Threads = append(author.Threads, record.doc.Id)
	return copyThread(record.doc), nil
}

func (s *Storage) CreateComment(_ context.Context, creationData domain.ThreadCreationData) (domain.ThreadDocument, error) {
	if creationData.ParentId == nil {
		return domain.ThreadDocument{}, internal_errors.Validation("Parent thread is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.threads[*creationData.ParentId]
	if !ok {
		return domain.ThreadDocument{}, internal_errors.NotFound("Thread not found")
	}
	author, ok := s.users[creationData.AuthorId]
	if !ok {
		return domain.ThreadDocument{}, internal_errors.NotFound("User not found")
	}

	parentId := *creationData.ParentId
	creationData.ParentId = &parentId
	record := s.insertThread(creationData)
	parent.doc.Children = append(parent.doc.Children, record.doc.Id)
	author.Threads = append(author.Threads, record.doc.Id)
	return copyThread(record.doc), nil
}

// InsertThread stores a thread without touching any backlink. Creation goes
// through CreateRootThread and CreateComment; this is the bare insert primitive
// used by imports, and the link repair pass fixes what it leaves unlinked.
func (s *Storage) InsertThread(_ context.Context, creationData domain.ThreadCreationData) (domain.ThreadDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return copyThread(s.insertThread(creationData).doc), nil
}

func (s *Storage) GetThread(_ context.Context, id domain.ThreadId) (domain.ThreadDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.threads[id]
	if !ok {
		return domain.ThreadDocument{}, internal_errors.NotFound("Thread not found")
	}
	return copyThread(record.doc), nil
}

func (s *Storage) GetThreads(_ context.Context, ids []domain.ThreadId) ([]domain.ThreadDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threads := make([]domain.ThreadDocument, 0, len(ids))
	for _, id := range ids {
		if record, ok := s.threads[id]; ok {
			threads = append(threads, copyThread(record.doc))
		}
	}
	return threads, nil
}

// sortedRoots returns root records newest first. Caller holds the lock.
func (s *Storage) sortedRoots() []*threadRecord {
	var roots []*threadRecord
	for _, record := range s.threads {
		if record.doc.IsRoot() {
			roots = append(roots, record)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		if !roots[i].doc.CreatedAt.Equal(roots[j].doc.CreatedAt) {
			return roots[i].doc.CreatedAt.After(roots[j].doc.CreatedAt)
		}
		return roots[i].seq > roots[j].seq
	})
	return roots
}

func (s *Storage) GetRootThreads(_ context.Context, skip, limit int) ([]domain.ThreadDocument, error) {
	if skip < 0 || limit < 0 {
		return nil, internal_errors.Validation("Skip and limit must not be negative")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	roots := s.sortedRoots()
	if skip >= len(roots) {
		return []domain.ThreadDocument{}, nil
	}
	roots = roots[skip:skip+min(len(roots)-skip, limit)]

	threads := make([]domain.ThreadDocument, len(roots))
	for i, record := range roots {
		threads[i] = copyThread(record.doc)
	}
	return threads, nil
}

func (s *Storage) CountRootThreads(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.threads {
		if record.doc.IsRoot() {
			count++
		}
	}
	return count, nil
}

func (s *Storage) UpsertUser(_ context.Context, profile domain.UserProfileData) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, taken := s.usernames[profile.Username]; taken && owner != profile.Id {
		return domain.User{}, &internal_errors.ErrorWithStatusCode{
			Message:    "Username is already taken",
			StatusCode: http.StatusConflict,
			Err:        internal_errors.ErrValidation,
		}
	}

	user, ok := s.users[profile.Id]
	if !ok {
		user = &domain.User{Id: profile.Id, Threads: domain.Ids{}, CreatedAt: s.now()}
		s.users[profile.Id] = user
	} else {
		delete(s.usernames, user.Username)
	}
	user.Username = profile.Username
	user.Name = profile.Name
	user.Bio = profile.Bio
	user.Image = profile.Image
	user.Onboarded = true
	s.usernames[user.Username] = user.Id
	return copyUser(*user), nil
}

func (s *Storage) GetUser(_ context.Context, id domain.UserId) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return domain.User{}, internal_errors.NotFound("User not found")
	}
	return copyUser(*user), nil
}

func (s *Storage) GetUsers(_ context.Context, ids []domain.UserId) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			users = append(users, copyUser(*user))
		}
	}
	return users, nil
}

func (s *Storage) GetUnlinkedComments(_ context.Context, limit int) ([]domain.ThreadDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var unlinked []domain.ThreadDocument
	for _, record := range s.threads {
		if record.doc.IsRoot() {
			continue
		}
		parent, ok := s.threads[*record.doc.ParentId]
		if ok && !slices.Contains(parent.doc.Children, record.doc.Id) {
			unlinked = append(unlinked, copyThread(record.doc))
		}
	}
	return firstCreated(unlinked, limit), nil
}

func (s *Storage) LinkChild(_ context.Context, parentId, childId domain.ThreadId) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.threads[parentId]
	if !ok || slices.Contains(parent.doc.Children, childId) {
		return false, nil
	}
	parent.doc.Children = append(parent.doc.Children, childId)
	return true, nil
}

func (s *Storage) GetUnindexedThreads(_ context.Context, limit int) ([]domain.ThreadDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var unindexed []domain.ThreadDocument
	for _, record := range s.threads {
		author, ok := s.users[record.doc.AuthorId]
		if ok && !slices.Contains(author.Threads, record.doc.Id) {
			unindexed = append(unindexed, copyThread(record.doc))
		}
	}
	return firstCreated(unindexed, limit), nil
}

func (s *Storage) LinkUserThread(_ context.Context, userId domain.UserId, threadId domain.ThreadId) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userId]
	if !ok || slices.Contains(user.Threads, threadId) {
		return false, nil
	}
	user.Threads = append(user.Threads, threadId)
	return true, nil
}

func firstCreated(threads []domain.ThreadDocument, limit int) []domain.ThreadDocument {
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].CreatedAt.Before(threads[j].CreatedAt)
	})
	if len(threads) > limit {
		threads = threads[:limit]
	}
	if threads == nil {
		threads = []domain.ThreadDocument{}
	}
	return threads
}
