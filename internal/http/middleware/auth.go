package middleware

import (
	"context"
	"net/http"
	"strings"

	"taxpro/internal/common"
	"taxpro/internal/http/response"
	"taxpro/internal/security"
)

type contextKey string

const (
	ContextProfileIDKey contextKey = "profile_id"
	ContextRolesKey     contextKey = "roles"
)

type AuthMiddleware struct {
	jwt *security.JWTProvider
}

func NewAuthMiddleware(jwt *security.JWTProvider) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid authorization header", nil))
			return
		}
		claims, err := m.jwt.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid token", err))
			return
		}
		profileID, err := common.ParseUUID(claims.ProfileID)
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid profile id", err))
			return
		}
		roles := make([]string, 0, len(claims.Roles))
		for _, role := range claims.Roles {
			if role = strings.ToLower(strings.TrimSpace(role)); role != "" {
				roles = append(roles, role)
			}
		}
		ctx := context.WithValue(r.Context(), ContextProfileIDKey, profileID)
		ctx = context.WithValue(ctx, ContextRolesKey, roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasRole(r.Context(), role) {
				response.Error(w, common.NewError(common.CodeForbidden, "insufficient role", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func HasRole(ctx context.Context, role string) bool {
	roles, _ := ctx.Value(ContextRolesKey).([]string)
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func ProfileIDFromContext(ctx context.Context) (common.UUID, bool) {
	id, ok := ctx.Value(ContextProfileIDKey).(common.UUID)
	return id, ok && id != ""
}

// WithProfileID is used by tests and internal callers that resolve identity
// without a token.
func WithProfileID(ctx context.Context, id common.UUID, roles ...string) context.Context {
	ctx = context.WithValue(ctx, ContextProfileIDKey, id)
	return context.WithValue(ctx, ContextRolesKey, roles)
}
