package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

// HeaderUserID is trusted only when no JWT secret is configured.
const HeaderUserID = "X-User-ID"

type ctxKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// Middleware кладет id пользователя в контекст или отвечает 401.
func Middleware(mgr *JWTManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := identify(mgr, r)
			if err != nil {
				logger.Debug("unauthenticated request",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				msg := "authentication required"
				if errors.Is(err, ErrExpiredToken) {
					msg = err.Error()
				}
				respond.Error(w, r, http.StatusUnauthorized, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func identify(mgr *JWTManager, r *http.Request) (string, error) {
	if !mgr.Enabled() {
		id := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if id == "" {
			return "", ErrInvalidToken
		}
		return id, nil
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return mgr.Validate(strings.TrimSpace(token))
}
