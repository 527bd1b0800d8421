// Package middlewarectx содержит HTTP middleware для обработки и проверки JWT токенов
// и ограничения частоты запросов.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization
// и в случае успеха добавляет в контекст идентификатор пользователя и платформу клиента.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lyssareba/flika-app-sub001/internal/http/response"
	"github.com/lyssareba/flika-app-sub001/internal/lib/jwt"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID: ключ идентификатора пользователя в контексте
	UserID Key = "user_id"
	// User: ключ для имени пользователя в контексте
	User Key = "username"
	// Platform: ключ платформы клиента (ios, android)
	Platform Key = "platform"
)

// PlatformHeader заголовок, в котором клиент передаёт свою платформу.
const PlatformHeader = "X-Platform"

// TokenParser описывает разбор JWT токена.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет идентификатор и имя пользователя, а также платформу
// из заголовка X-Platform в контекст запроса, иначе возвращает 401 Unauthorized.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), UserID, claims.UserID())
			ctx = context.WithValue(ctx, User, claims.Username)
			ctx = context.WithValue(ctx, Platform, strings.ToLower(strings.TrimSpace(r.Header.Get(PlatformHeader))))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity достаёт идентификатор пользователя и платформу из контекста.
// ok=false, если запрос не прошёл через JWTMiddleware.
func Identity(ctx context.Context) (userID, platform string, ok bool) {
	userID, _ = ctx.Value(UserID).(string)
	platform, _ = ctx.Value(Platform).(string)
	return userID, platform, userID != ""
}

// WithIdentity кладёт пользователя и платформу в контекст. Используется в тестах обработчиков.
func WithIdentity(ctx context.Context, userID, platform string) context.Context {
	ctx = context.WithValue(ctx, UserID, userID)
	return context.WithValue(ctx, Platform, platform)
}
