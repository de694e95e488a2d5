// Package identity issues the anonymous per-browser identifier used to
// partition cart and order records without requiring authentication.
package identity

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/luxecurl/storefront/pkg/web"
)

// CookieName is the cookie carrying the anonymous user ID.
const CookieName = "sf_uid"

// cookieTTL keeps the identity stable for a year; every request refreshes it.
const cookieTTL = 365 * 24 * time.Hour

// EnsureUserID is a middleware that reads the anonymous user ID cookie,
// minting and setting a fresh UUID when the cookie is absent or malformed,
// and injects the ID into the request context. Once issued, the same browser
// keeps the same ID; the middleware never regenerates a valid one.
func EnsureUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := ""
		if c, err := r.Cookie(CookieName); err == nil {
			if _, perr := uuid.Parse(c.Value); perr == nil {
				userID = c.Value
			}
		}
		if userID == "" {
			userID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    userID,
				Path:     "/",
				Expires:  time.Now().Add(cookieTTL),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := web.WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
