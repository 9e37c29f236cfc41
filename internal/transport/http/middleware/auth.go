package httpmw

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cwrk-planet/liveroom/internal/identity"
)

type ctxKey string

const (
	ctxKeyToken  ctxKey = "token"
	ctxKeyUserID ctxKey = "user_id"
)

// Auth requires "Authorization: Bearer <token>" and resolves the caller through v.
// X-User-ID is passed along as the claimed id for verifiers that need it.
func Auth(v identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := identity.BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}
			ident, err := v.Verify(token, r.Header.Get("X-User-ID"))
			if err != nil {
				slog.Debug("httpmw.Auth:", slog.Any("err", err))
				writeUnauthorized(w, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyToken, ident.Token)
			ctx = context.WithValue(ctx, ctxKeyUserID, ident.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserID).(string); ok {
		return v
	}
	return ""
}

func TokenFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyToken).(string); ok {
		return v
	}
	return ""
}
