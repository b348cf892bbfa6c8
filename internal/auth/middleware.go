package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/kechei-store/warehouse-api/internal/platform/httpx"
	"github.com/kechei-store/warehouse-api/internal/shared"
)

// Middleware resolves bearer tokens into principals.
type Middleware struct {
	logger  *slog.Logger
	service *Service
}

// NewMiddleware constructs the auth middleware.
func NewMiddleware(logger *slog.Logger, service *Service) *Middleware {
	return &Middleware{logger: logger, service: service}
}

// RequireAuth rejects requests without a valid bearer token and attaches the
// resolved principal to the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		principal, err := m.service.Resolve(r.Context(), token)
		if err != nil {
			if err != ErrTokenNotFound && m.logger != nil {
				m.logger.Error("resolve token", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
