package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kurokira/storefront-backend/api/responses"
	"github.com/kurokira/storefront-backend/pkg/auth"
	"github.com/kurokira/storefront-backend/pkg/config"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
)

const sessionHeader = "X-KK-Session"

// Session attaches an anonymous storefront session to every request. A valid
// token is honored; a missing or expired one gets a fresh session minted and
// echoed back in the response header and cookie.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := tokenFromRequest(r, cfg.CookieName)
			sessionID := ""
			if raw != "" {
				if claims, err := auth.ParseSessionToken(cfg, raw); err == nil {
					sessionID = claims.SessionID
				}
			}

			if sessionID == "" {
				token, sid, err := auth.MintSessionToken(cfg, time.Now(), "")
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session"))
					return
				}
				sessionID = sid
				w.Header().Set(sessionHeader, token)
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(cfg.TTL / time.Second),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx = WithSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if header := strings.TrimSpace(r.Header.Get(sessionHeader)); header != "" {
		return header
	}
	if bearer := strings.TrimSpace(r.Header.Get("Authorization")); strings.HasPrefix(bearer, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(bearer, "Bearer "))
	}
	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil {
			return cookie.Value
		}
	}
	return ""
}
