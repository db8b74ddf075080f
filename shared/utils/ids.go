package utils

import (
	"github.com/google/uuid"
	"github.com/itchan-dev/threads/shared/errors"
)

// NewId returns a fresh opaque identifier for a stored document.
func NewId() string {
	return uuid.NewString()
}

// ParseId normalizes a caller supplied id and rejects malformed ones.
func ParseId(raw string, what string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", errors.Validation("Invalid " + what)
	}
	return id.String(), nil
}

// IsId reports whether raw is a well formed identifier.
func IsId(raw string) bool {
	return uuid.Validate(raw) == nil
}
