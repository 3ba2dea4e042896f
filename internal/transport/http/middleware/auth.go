package httpmw

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

type ctxKey string

const (
	ctxKeyToken  ctxKey = "token"
	ctxKeyUserID ctxKey = "user_id"
)

// AuthMiddleware: Bearer + X-User-ID (int64) кладутся в контекст, если
// присутствуют. Анонимные запросы пропускаем — листинг и просмотр
// доступны без логина, персонализация (pinned) просто выключается.
// Кривой X-User-ID — это 401, а не аноним.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") && len(auth) > 7 {
			ctx = context.WithValue(ctx, ctxKeyToken, strings.TrimSpace(auth[7:]))
		}

		if uidHeader := r.Header.Get("X-User-ID"); uidHeader != "" {
			uid, err := strconv.ParseInt(uidHeader, 10, 64)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid X-User-ID (must be int64)"}`))
				return
			}
			ctx = context.WithValue(ctx, ctxKeyUserID, uid)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromCtx возвращает nil для анонимного запроса.
func UserIDFromCtx(ctx context.Context) *int64 {
	if v := ctx.Value(ctxKeyUserID); v != nil {
		if id, ok := v.(int64); ok {
			return &id
		}
	}
	return nil
}
