package auth

import (
	"fmt"
	"net/http"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// CSRFFieldName is the hidden form field carrying the token. HTMX requests
// send the same value in the X-CSRF-Token header.
const CSRFFieldName = "gorilla.csrf.Token"

// CSRF guards state-changing requests with gorilla/csrf. The key must be
// exactly 32 bytes. With secure=false (local http) requests are marked
// plaintext so the strict Referer check for TLS does not reject them.
func CSRF(key []byte, secure bool, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("csrf key must be 32 bytes, got %d", len(key))
	}

	protect := csrf.Protect(key,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName(CSRFFieldName),
		csrf.RequestHeader("X-CSRF-Token"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
				zap.Error(csrf.FailureReason(r)))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})),
	)

	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			h.ServeHTTP(w, r)
		})
	}, nil
}
