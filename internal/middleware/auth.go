package middleware

import (
	"context"
	"net/http"
	"strings"

	"tokopay-be/internal/logger"
	"tokopay-be/internal/user"
	"tokopay-be/internal/utils"
)

type contextKey string

const (
	UserIDKey      contextKey = "userID"
	TokenClaimsKey contextKey = "jwtClaims"
)

// AuthMiddleware attaches JWT claims to the request context when a valid
// bearer token is present. Requests without a token pass through; route
// handlers that need identity check the context themselves.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := user.ParseJWT(tokenStr)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), TokenClaimsKey, claims)
		ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok
}

// RequireAdmin gates admin routes behind the static x-admin-key header.
// The check happens before the wrapped handler runs any data access.
func RequireAdmin(adminKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if adminKey == "" {
			logger.FromCtx(r.Context()).Error("ADMIN_KEY not set in environment")
			utils.WriteJSONError(w, "server configuration error", http.StatusInternalServerError)
			return
		}

		provided := r.Header.Get("x-admin-key")
		if provided == "" || provided != adminKey {
			utils.WriteJSONError(w, "unauthorized: invalid admin key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
