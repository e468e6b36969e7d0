package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/hydrotrim/internal/app/system/prefs"
	"github.com/dalemusser/hydrotrim/internal/app/system/timeouts"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session cookie                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// CookieMaxAge is how long the preference cookie survives. Preferences play
// the role of browser local storage, so the cookie outlives the browser session.
const CookieMaxAge = 365 * 24 * time.Hour

// SessionManager owns the signed cookie store shared by the preference
// resolvers.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds the cookie store using the provided session key
// and domain. The `secure` flag controls whether cookies are marked Secure.
// Cookies are always SameSite=Lax so cross-site posts never carry them.
//
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if name == "" {
		return nil, fmt.Errorf("session name is empty")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(CookieMaxAge / time.Second),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.String("name", name))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// Store returns the underlying cookie store.
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// Name returns the cookie name.
func (sm *SessionManager) Name() string { return sm.name }

/*─────────────────────────────────────────────────────────────────────────────*
| Token gate                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireToken lets a request through only when the browser's preference
// store holds an auth token. Otherwise:
//   - HTMX: sends HX-Redirect to /
//   - HTML: 303 redirect to /
//   - API:  401 Unauthorized with a plain error body.
func RequireToken(res prefs.Resolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
			tok, ok, err := res.ForRequest(w, r).Get(ctx, models.PrefToken)
			cancel()
			if err != nil {
				logger.Warn("token read failed", zap.Error(err))
			}
			if ok && tok != "" {
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", "/")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if wantsHTML(r) {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}

func wantsHTML(r *http.Request) bool {
	// Very light heuristic: treat it as HTML if it's HTMX, a browser GET/POST
	// with no Accept header, or Accepts text/html.
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html")
}
