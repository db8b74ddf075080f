package domain

import (
	"time"
)

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Text     ThreadText
	AuthorId UserId
	ParentId *ThreadId // nil for a root thread
}

// ThreadDocument is a thread exactly as it is persisted: every reference is an id.
type ThreadDocument struct {
	Id        ThreadId
	Text      ThreadText
	AuthorId  UserId
	ParentId  *ThreadId
	Children  Ids // direct replies in arrival order, append only
	Community *string
	CreatedAt time.Time
}

// IsRoot treats a nil and an empty parent reference the same way.
func (t *ThreadDocument) IsRoot() bool {
	return t.ParentId == nil || *t.ParentId == ""
}

// Thread is a populated view of a ThreadDocument.
// Children is filled only down to the requested depth; ChildIds is always set,
// so the caller can expand a node whose replies were not populated.
type Thread struct {
	Id        ThreadId   `json:"id"`
	Text      ThreadText `json:"text"`
	TextHTML  string     `json:"text_html,omitempty"`
	ParentId  *ThreadId  `json:"parent_id"`
	Author    *Author    `json:"author"`
	ChildIds  Ids        `json:"child_ids"`
	Children  []*Thread  `json:"children,omitempty"`
	Community *string    `json:"community"`
	CreatedAt time.Time  `json:"created_at"`
}

// ThreadsPage is one window of the root feed.
type ThreadsPage struct {
	Threads     []*Thread `json:"threads"`
	HasNextPage bool      `json:"has_next_page"`
}
