package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/itchan-dev/threads/shared/domain"
	jwt_internal "github.com/itchan-dev/threads/shared/jwt"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/itchan-dev/threads/shared/utils"
)

// Key to store the caller id in the request context
type key int

const UserIdKey key = 0

// Auth resolves the caller from a JWT in the accessToken cookie or a bearer header.
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// NeedAuth rejects requests without a valid token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userId, err := a.extractUserId(r)
			if err != nil {
				switch err {
				case errNoToken:
					http.Error(w, "Please sign-in", http.StatusUnauthorized)
				case errInvalidClaims:
					logger.Log.Error("invalid jwt claims")
					http.Error(w, "Invalid token", http.StatusUnauthorized)
				default:
					utils.WriteErrorAndStatusCode(w, err)
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserIdKey, userId)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth populates the caller id if the token is valid, but doesn't require it.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userId, err := a.extractUserId(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), UserIdKey, userId))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) extractUserId(r *http.Request) (domain.UserId, error) {
	// Try to get token from cookie first (for browser clients)
	var tokenString string
	if accessCookie, err := r.Cookie("accessToken"); err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}

	if tokenString == "" {
		return "", errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errInvalidClaims
	}

	uid, ok := claims["uid"].(string)
	if !ok || !utils.IsId(uid) {
		return "", errInvalidClaims
	}

	return uid, nil
}

// Sentinel errors for extractUserId
var (
	errNoToken       = errorString("no token")
	errInvalidClaims = errorString("invalid claims")
)

type errorString string

func (e errorString) Error() string { return string(e) }

// GetUserIdFromContext returns the caller id set by NeedAuth or OptionalAuth.
func GetUserIdFromContext(r *http.Request) domain.UserId {
	userId, _ := r.Context().Value(UserIdKey).(domain.UserId)
	return userId
}
