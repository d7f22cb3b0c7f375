package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/iudanet/atmtrack/internal/server/handlers"
)

// AuthMiddleware создает middleware для проверки JWT токена
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(r.Context(), "missing Authorization header", "path", r.URL.Path)
				handlers.WriteDetail(w, logger, handlers.MsgNotAuthenticated, http.StatusUnauthorized)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				logger.WarnContext(r.Context(), "invalid Authorization header format")
				handlers.WriteDetail(w, logger, handlers.MsgTokenInvalid, http.StatusUnauthorized)
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, parts[1])
			if err != nil {
				logger.WarnContext(r.Context(), "invalid access token", "error", err)
				handlers.WriteDetail(w, logger, handlers.MsgTokenInvalid, http.StatusUnauthorized)
				return
			}

			logger.DebugContext(r.Context(), "user authenticated",
				"user_id", claims.UserID,
				"username", claims.Username,
				"role", claims.Role)

			next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), claims)))
		})
	}
}

// RequireRole пропускает запрос, только если роль пользователя входит в roles.
// Должен стоять после AuthMiddleware.
func RequireRole(logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := handlers.GetRole(r.Context())
			if !ok {
				handlers.WriteDetail(w, logger, handlers.MsgNotAuthenticated, http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, role) {
				logger.WarnContext(r.Context(), "access denied",
					"role", role,
					"required", roles,
					"path", r.URL.Path)
				handlers.WriteDetail(w, logger, handlers.MsgForbidden, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
