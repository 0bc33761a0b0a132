package web

import (
	"context"
	"net/http"
	"time"

	"github.com/vasudev124/musicmind/internal/session"
)

type contextKey int

const sessionKey contextKey = iota

// SessionFrom returns the session stored in the request context by the auth
// gate. The boolean is false on routes that did not pass through RequireAuth.
func SessionFrom(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(session.Session)
	return s, ok
}

// RequireAuth gates protected routes. Requests without a valid session get
// 401. An expired access token triggers exactly one refresh attempt: success
// rewrites the session cookie with the recomputed expiry and the request
// proceeds; failure destroys the session and returns 401. No retries; the
// user has to log in again.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.codec.Decode(r)
		if err != nil {
			respondError(w, h.logger, http.StatusUnauthorized, msgNotAuthenticated, nil)
			return
		}

		if sess.Expired(h.now()) {
			token, err := h.oauth.Refresh(r.Context(), sess.RefreshToken)
			if err != nil {
				h.codec.Clear(w)
				respondError(w, h.logger, http.StatusUnauthorized, msgSessionExpired, nil)
				return
			}

			sess = sess.Refreshed(token)
			if err := h.codec.Encode(w, sess); err != nil {
				respondError(w, h.logger, http.StatusInternalServerError, msgUpstreamFailed, err)
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// now goes through the injectable clock so gate expiry is testable.
func (h *Handlers) now() time.Time {
	return h.clock()
}
