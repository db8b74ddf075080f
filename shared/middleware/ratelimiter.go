package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/middleware/ratelimiter"
	"github.com/itchan-dev/threads/shared/utils"
)

// RateLimit rejects requests whose identity has run out of tokens.
func RateLimit(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GlobalRateLimit(rl *ratelimiter.UserRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// GetUserIdFromRequest identifies the caller by the id NeedAuth put in the context.
func GetUserIdFromRequest(r *http.Request) (string, error) {
	userId := GetUserIdFromContext(r)
	if userId == "" {
		return "", &errors.ErrorWithStatusCode{Message: "Please sign-in", StatusCode: http.StatusUnauthorized}
	}
	return "user_" + userId, nil
}

// GetIP extracts the real client IP from RemoteAddr
// Does NOT trust X-Real-IP or X-Forwarded-For headers (no reverse proxy)
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// Fallback: if RemoteAddr doesn't have port, use it directly
		ip = r.RemoteAddr
	}

	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	return ip, nil
}
