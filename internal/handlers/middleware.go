package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"brightsteps/internal/models"
	"brightsteps/internal/repository"
	"brightsteps/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// Middleware holds dependencies for middleware functions. Authentication
// happens upstream (the portal sits behind an authenticating proxy); the
// X-User-ID header carries the already-authenticated principal, which is
// resolved to a user record here.
type Middleware struct {
	userRepo    *repository.UserRepository
	rateLimiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(userRepo *repository.UserRepository) *Middleware {
	return &Middleware{
		userRepo:    userRepo,
		rateLimiter: security.NewRateLimiter(30, time.Minute),
	}
}

// RequireUser is middleware that resolves the acting user and rejects
// requests without one
func (m *Middleware) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Not signed in", nil)
			return
		}

		user, err := m.userRepo.GetUserByID(userID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Internal server error", err)
			return
		}
		if user == nil {
			respondWithError(w, http.StatusUnauthorized, "Not signed in", nil)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin is middleware that requires the acting user to be an admin
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireUser(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil || !user.IsAdmin() {
			respondWithError(w, http.StatusForbidden, "Administrator access required", nil)
			return
		}
		next(w, r)
	})
}

// RateLimit throttles a handler per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests, please slow down", nil)
			return
		}
		next(w, r)
	}
}

// GetUserFromContext retrieves the acting user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserContextKey).(*models.User)
	return user
}

// Logging logs every request with its duration
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
