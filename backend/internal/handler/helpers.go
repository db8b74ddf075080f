package handler

import (
	"net/http"
	"strconv"

	internal_errors "github.com/itchan-dev/threads/shared/errors"
	mw "github.com/itchan-dev/threads/shared/middleware"
)

// parseIntParam parses an integer parameter from a string and returns a meaningful error
func parseIntParam(param string, paramName string) (int, error) {
	val, err := strconv.Atoi(param)
	if err != nil {
		return 0, internal_errors.Validation("Invalid " + paramName + ": must be an integer")
	}
	return val, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return parseIntParam(raw, name)
}

// requireUser returns the caller id or writes 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userId := mw.GetUserIdFromContext(r)
	if userId == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return userId, true
}
