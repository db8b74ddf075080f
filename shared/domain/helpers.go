package domain

import (
	"fmt"
	"strings"
	"time"
)

// for debug
func (t *ThreadDocument) String() string {
	parent := "<root>"
	if !t.IsRoot() {
		parent = *t.ParentId
	}
	return fmt.Sprintf("[id:%s, author:%s, parent:%s, created:%s, children:[%s]]",
		t.Id, t.AuthorId, parent, t.CreatedAt.Format(time.StampMilli), strings.Join(t.Children, ", "))
}

// Walk visits t and every populated descendant, depth first, with its depth (t is 0).
func (t *Thread) Walk(fn func(node *Thread, depth int)) {
	var walk func(node *Thread, depth int)
	walk = func(node *Thread, depth int) {
		fn(node, depth)
		for _, child := range node.Children {
			walk(child, depth+1)
		}
	}
	walk(t, 0)
}
