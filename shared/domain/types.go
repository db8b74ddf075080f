package domain

import "github.com/lib/pq"

type (
	UserId   = string
	Username = string

	ThreadId   = string
	ThreadText = string

	// Ids is an ordered list of references, stored as a postgres UUID[] column.
	Ids = pq.StringArray
)
