package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"FileVault/internal/auth"
)

type ctxKey int

const identityKey ctxKey = iota

// UserConfirmer проверяет, что владелец токена всё ещё существует.
type UserConfirmer func(ctx context.Context, userID string) (bool, error)

// ErrorWriter отвечает клиенту на ошибку. Тексты ответов задаёт вызывающий код,
// middleware только передаёт ошибку.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RequireAuth пропускает запрос дальше только с валидным Bearer-токеном.
// Идентичность пользователя кладётся в контекст; confirm может быть nil.
// Ошибки (auth.ErrMissingToken, auth.ErrInvalidToken и сбой confirm) уходят в fail.
func RequireAuth(verifier auth.TokenVerifier, confirm UserConfirmer, fail ErrorWriter) func(http.Handler) http.Handler {
	if fail == nil {
		fail = statusOnly
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id auth.Identity
			tok, err := auth.BearerToken(r)
			if err == nil {
				id, err = verifier.Verify(tok)
			}
			if err != nil {
				unauthorized(w, r, fail, err)
				return
			}

			if confirm != nil {
				ok, err := confirm(r.Context(), id.UserID)
				if err != nil {
					sugar.Errorw("RequireAuth: confirm user", "user_id", id.UserID, "error", err)
					fail(w, r, fmt.Errorf("confirm user: %w", err))
					return
				}
				if !ok {
					unauthorized(w, r, fail, auth.ErrInvalidToken)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity кладёт идентичность пользователя в контекст.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentityFromContext достаёт идентичность, положенную RequireAuth.
func GetIdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok && id.UserID != ""
}

// GetUserIDFromContext достаёт id пользователя.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := GetIdentityFromContext(ctx)
	return id.UserID, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request, fail ErrorWriter, err error) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="filevault"`)
	fail(w, r, err)
}

// statusOnly — ответ без тела, если ErrorWriter не задан.
func statusOnly(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, auth.ErrMissingToken) || errors.Is(err, auth.ErrInvalidToken) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
