package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/types"
)

type contextKey string

const claimsContextKey contextKey = "user_claims"

// AnonymousActor is recorded on read paths when no token is presented
const AnonymousActor = "anonymous"

// AuthMiddleware validates the bearer token and attaches the user claims to
// the request context. Mutating requests without a valid token are rejected;
// reads fall back to the anonymous actor.
type AuthMiddleware struct {
	validator *TokenValidator
	logger    *logger.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(validator *TokenValidator, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    log,
	}
}

// Handler wraps the next handler with actor extraction
func (am *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractBearerToken(r)

		if tokenString == "" {
			if isMutating(r.Method) {
				http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		claims, err := am.validator.ValidateJWT(tokenString)
		if err != nil {
			am.logger.WithError(err).Warn("Rejected request with invalid token")
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		ctx = logger.ContextWithActor(ctx, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the validated claims attached to the request, if any
func ClaimsFromContext(ctx context.Context) (*types.UserClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*types.UserClaims)
	return claims, ok
}

// ActorFromContext returns the acting username, falling back to anonymous
func ActorFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok && claims.Username != "" {
		return claims.Username
	}
	return AnonymousActor
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
