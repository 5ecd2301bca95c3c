package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/michat/michat-api/config"
	"github.com/michat/michat-api/databases"
	"github.com/michat/michat-api/models"
)

type contextKey int

const userContextKey contextKey = iota

// Auth authenticates bearer tokens for both REST and the websocket upgrade
type Auth struct {
	Users  databases.UserDatabase
	Tokens databases.TokenDatabase
	Issuer TokenIssuer
}

// ExtractToken pulls the bearer token from the request. Browser websocket
// clients cannot set headers, so the token is accepted as a ?token= query
// parameter (with or without the Bearer prefix) as well as in the standard
// Authorization header.
func ExtractToken(r *http.Request) string {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
	}
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = token[7:]
	}
	return strings.TrimSpace(token)
}

// Authenticate resolves the request's token to a live user. A revoked jti
// (ban, delete, logout) fails exactly like a bad signature.
func (a Auth) Authenticate(r *http.Request) (*models.User, error) {
	raw := ExtractToken(r)
	if raw == "" {
		return nil, errors.New("missing token")
	}

	userID, jti, err := a.Issuer.Verify(raw)
	if err != nil {
		return nil, err
	}

	ctx, cancel := WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := a.Tokens.FindByID(ctx, jti); err != nil {
		if errors.Is(err, databases.ErrNotFound) {
			return nil, errors.New("token revoked")
		}
		return nil, err
	}

	user, err := a.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Details.IsDeleted {
		return nil, errors.New("user deleted")
	}
	return user, nil
}

// Middleware guards a route with bearer authentication and stashes the
// resolved user in the request context
func (a Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := a.Authenticate(r)
		if err != nil {
			zap.S().Debugw("unauthorized",
				"url", r.URL.Path,
				"error", err,
			)
			config.ErrorStatus("invalid or expired token", http.StatusUnauthorized, w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// ContextWithUser returns ctx carrying the authenticated user
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user stored by Middleware, or
// nil when the route was not guarded
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}
