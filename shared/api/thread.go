package api

import (
	"github.com/itchan-dev/threads/shared/domain"
)

// Request DTOs

type CreateThreadRequest struct {
	Text             string `json:"text" validate:"required"`
	InvalidationPath string `json:"invalidation_path,omitempty"`
}

// Response DTOs

type CreateThreadResponse struct {
	Id domain.ThreadId `json:"id"`
	// Revalidate is the path whose cached views are stale after the write.
	Revalidate string `json:"revalidate,omitempty"`
}

// ThreadResponse wraps a populated thread tree
type ThreadResponse struct {
	*domain.Thread
}

type ThreadsPageResponse struct {
	domain.ThreadsPage
}
