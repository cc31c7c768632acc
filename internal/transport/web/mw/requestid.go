package mw

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/EgorLis/hashdrop/internal/logx"
)

const HeaderRequestID = "X-Request-ID"

// WithRequestID берёт X-Request-ID клиента (если это UUID) или выдаёт новый.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(logx.WithRequestID(r.Context(), id)))
	})
}

func RequestIDFromCtx(ctx context.Context) string {
	return logx.RequestIDFromCtx(ctx)
}
