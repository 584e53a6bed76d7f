package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/kurokira/storefront-backend/api/responses"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// SubmitRateLimit caps checkout submissions per session in a fixed window.
// Limiter errors fail open.
func SubmitRateLimit(limiter rateLimiter, limit int, window time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sessionID := SessionIDFromContext(ctx)
			if sessionID == "" || limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			allowed, _, err := limiter.FixedWindowAllow(ctx, "checkout-submit:"+sessionID, int64(limit), window)
			if err != nil {
				if logg != nil {
					logg.Warn(ctx, "rate limit check failed")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many checkout attempts, slow down"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
