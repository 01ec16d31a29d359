package middleware

import (
	"context"
	"net/http"

	"github.com/codingevents/server/internal/auth"
	"github.com/codingevents/server/internal/domain/users"
)

type contextKeyUser string

const currentUserKey contextKeyUser = "currentUser"

// UserResolver resolves a validated external identity to an internal User,
// creating it on first sight.
type UserResolver interface {
	ResolveOrCreate(ctx context.Context, identity users.Identity) (*users.User, error)
}

// BearerAuth validates the bearer token and resolves the caller to a User
// before the handler runs. Requests without a valid token get 401.
func BearerAuth(manager *auth.JWTManager, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveCaller(r, manager, resolver)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithUser(r.Context(), user)))
		})
	}
}

// OptionalBearerAuth resolves the caller when a bearer token is present and
// lets anonymous requests through untouched. A token that is present but
// invalid is still rejected.
func OptionalBearerAuth(manager *auth.JWTManager, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := resolveCaller(r, manager, resolver)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithUser(r.Context(), user)))
		})
	}
}

func resolveCaller(r *http.Request, manager *auth.JWTManager, resolver UserResolver) (*users.User, error) {
	token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}

	claims, err := manager.Validate(token)
	if err != nil {
		return nil, err
	}

	return resolver.ResolveOrCreate(r.Context(), users.Identity{
		Subject:  claims.Subject,
		Username: claims.Name,
		Email:    claims.Email,
	})
}

func contextWithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// ContextWithUser adds a resolved user to a context (exported for tests).
func ContextWithUser(ctx context.Context, user *users.User) context.Context {
	return contextWithUser(ctx, user)
}

// UserFromContext retrieves the resolved caller, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *users.User {
	if ctx == nil {
		return nil
	}
	if user, ok := ctx.Value(currentUserKey).(*users.User); ok {
		return user
	}
	return nil
}
