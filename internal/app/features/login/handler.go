// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/hydrotrim/internal/app/features/home"
	"github.com/dalemusser/hydrotrim/internal/app/system/diseaseapi"
	"github.com/dalemusser/hydrotrim/internal/app/system/prefs"
	"github.com/dalemusser/hydrotrim/internal/app/system/ratelimit"
	"github.com/dalemusser/hydrotrim/internal/app/system/timeouts"
	"github.com/dalemusser/hydrotrim/internal/app/system/translations"
	"github.com/dalemusser/hydrotrim/internal/app/system/viewdata"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Authenticator exchanges credentials for a token on the auth service.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type Handler struct {
	API     Authenticator
	Prefs   prefs.Resolver
	Text    *translations.Provider
	Log     *zap.Logger
	Limiter *ratelimit.LoginLimiter // nil disables attempt limiting
	Render  viewdata.Renderer
}

func NewHandler(api Authenticator, res prefs.Resolver, text *translations.Provider, logger *zap.Logger) *Handler {
	return &Handler{
		API:     api,
		Prefs:   res,
		Text:    text,
		Log:     logger,
		Limiter: ratelimit.NewLoginLimiter(),
		Render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}

// maxCredentialLen bounds what we forward to the auth service.
const maxCredentialLen = 256

// ServeLogin redirects GET /login to the entry screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLoginPost handles POST /login: the token returned by the auth
// service is kept in the preference store.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderFormWithError(w, r, http.StatusBadRequest, "", "signInFailed")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" || len(email) > maxCredentialLen || len(password) > maxCredentialLen {
		h.renderFormWithError(w, r, http.StatusBadRequest, email, "signInFailed")
		return
	}

	if h.Limiter != nil {
		if err := h.Limiter.Check(r, email); err != nil {
			h.Log.Warn("login rate limited",
				zap.String("email", email),
				zap.String("ip", h.Limiter.ClientIP(r)))
			h.renderFormWithError(w, r, http.StatusTooManyRequests, email, "tooManyAttempts")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Fetch())
	defer cancel()

	tok, err := h.API.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, diseaseapi.ErrStatus) {
			h.Log.Info("login rejected", zap.String("email", email), zap.Error(err))
			h.renderFormWithError(w, r, http.StatusUnauthorized, email, "signInFailed")
			return
		}
		h.Log.Error("login: auth service unavailable", zap.Error(err))
		h.renderFormWithError(w, r, http.StatusBadGateway, email, "signInFailed")
		return
	}

	sctx, scancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer scancel()
	if err := h.Prefs.ForRequest(w, r).Set(sctx, models.PrefToken, tok); err != nil {
		h.Log.Error("login: store token", zap.Error(err))
		h.renderFormWithError(w, r, http.StatusInternalServerError, email, "signInFailed")
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	h.Log.Info("login succeeded", zap.String("email", email))

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/admin/dashboard")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, status int, email, msgKey string) {
	data := home.NewEntryData(w, r, h.Prefs, h.Text, h.Log)
	data.Error = data.T.Get(msgKey)
	data.Email = email
	w.WriteHeader(status)
	h.Render(w, r, "home_page", data)
}
