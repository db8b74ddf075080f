package service

import (
	"context"

	"github.com/itchan-dev/threads/shared/domain"
)

// DefaultPopulateDepth is how many reply levels a single-thread fetch attaches.
const DefaultPopulateDepth = 2

// ThreadReader is the read side of the thread document store.
type ThreadReader interface {
	GetThread(ctx context.Context, id domain.ThreadId) (domain.ThreadDocument, error)
	GetThreads(ctx context.Context, ids []domain.ThreadId) ([]domain.ThreadDocument, error)
}

// UserReader is the read side of the user document store.
type UserReader interface {
	GetUser(ctx context.Context, id domain.UserId) (domain.User, error)
	GetUsers(ctx context.Context, ids []domain.UserId) ([]domain.User, error)
}

type TextRenderer interface {
	Render(text string) string
}

// projection picks which user fields end up in a populated thread.
type projection func(u *domain.User) *domain.Author

// populator turns stored documents into populated views. It walks the tree
// breadth first with one batch thread lookup per level, then attaches all
// authors with a single batch user lookup.
type populator struct {
	threads  ThreadReader
	users    UserReader
	renderer TextRenderer
}

func newView(doc domain.ThreadDocument, renderer TextRenderer) *domain.Thread {
	return &domain.Thread{
		Id:        doc.Id,
		Text:      doc.Text,
		TextHTML:  renderer.Render(doc.Text),
		ParentId:  doc.ParentId,
		ChildIds:  doc.Children,
		Community: doc.Community,
		CreatedAt: doc.CreatedAt,
	}
}

// populate builds views for docs and attaches depth levels of replies below
// them. Top level authors use topAuthor, replies use the restricted summary.
// Children of the deepest populated level are left as ids only.
// Dangling child or author references are skipped.
func (p *populator) populate(ctx context.Context, docs []domain.ThreadDocument, depth int, topAuthor projection) ([]*domain.Thread, error) {
	authorIds := make(map[domain.UserId]struct{})
	top := make([]*domain.Thread, len(docs))
	authorOf := make(map[*domain.Thread]domain.UserId, len(docs))
	for i, doc := range docs {
		top[i] = newView(doc, p.renderer)
		authorOf[top[i]] = doc.AuthorId
		authorIds[doc.AuthorId] = struct{}{}
	}

	level := top
	for d := 0; d < depth && len(level) > 0; d++ {
		var ids []domain.ThreadId
		for _, node := range level {
			ids = append(ids, node.ChildIds...)
		}

		childDocs, err := p.threads.GetThreads(ctx, ids)
		if err != nil {
			return nil, err
		}
		byId := make(map[domain.ThreadId]domain.ThreadDocument, len(childDocs))
		for _, doc := range childDocs {
			byId[doc.Id] = doc
		}

		var next []*domain.Thread
		for _, node := range level {
			node.Children = make([]*domain.Thread, 0, len(node.ChildIds))
			for _, childId := range node.ChildIds {
				doc, ok := byId[childId]
				if !ok {
					continue
				}
				child := newView(doc, p.renderer)
				authorOf[child] = doc.AuthorId
				authorIds[doc.AuthorId] = struct{}{}
				node.Children = append(node.Children, child)
				next = append(next, child)
			}
		}
		level = next
	}

	users, err := p.users.GetUsers(ctx, keys(authorIds))
	if err != nil {
		return nil, err
	}
	byUserId := make(map[domain.UserId]*domain.User, len(users))
	for i := range users {
		byUserId[users[i].Id] = &users[i]
	}

	isTop := make(map[*domain.Thread]bool, len(top))
	for _, node := range top {
		isTop[node] = true
	}
	for node, authorId := range authorOf {
		user, ok := byUserId[authorId]
		if !ok {
			continue
		}
		if isTop[node] {
			node.Author = topAuthor(user)
		} else {
			node.Author = user.Summary()
		}
	}

	return top, nil
}

// populateOne is populate for a single document.
func (p *populator) populateOne(ctx context.Context, doc domain.ThreadDocument, depth int, topAuthor projection) (*domain.Thread, error) {
	threads, err := p.populate(ctx, []domain.ThreadDocument{doc}, depth, topAuthor)
	if err != nil {
		return nil, err
	}
	return threads[0], nil
}

func keys[K comparable, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func summary(u *domain.User) *domain.Author { return u.Summary() }

func profile(u *domain.User) *domain.Author { return u.Profile() }
