// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dalemusser/hydrotrim/internal/app/system/diseaseapi"
	"github.com/dalemusser/hydrotrim/internal/app/system/prefs"
	"github.com/dalemusser/hydrotrim/internal/app/system/timeouts"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"go.uber.org/zap"
)

// RemoteLogout invalidates a token on the auth service.
type RemoteLogout interface {
	Logout(ctx context.Context, token string) error
}

// ViewCloser closes an open dashboard view.
type ViewCloser interface {
	Remove(id string)
}

type Handler struct {
	API   RemoteLogout
	Prefs prefs.Resolver
	Views ViewCloser
	Log   *zap.Logger

	inflight sync.WaitGroup
}

func NewHandler(api RemoteLogout, res prefs.Resolver, views ViewCloser, logger *zap.Logger) *Handler {
	return &Handler{
		API:   api,
		Prefs: res,
		Views: views,
		Log:   logger,
	}
}

// ServeLogout handles POST /admin/logout.
//
// The remote logout runs in the background and never delays the response;
// its failure is logged only. The token is removed locally in every case.
// Other preferences stay, so the cookie itself is kept.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := h.Prefs.ForRequest(w, r)

	tok, _, err := store.Get(ctx, models.PrefToken)
	if err != nil {
		h.Log.Warn("logout: token read failed", zap.Error(err))
	}
	h.remoteLogout(tok)

	if err := store.Delete(ctx, models.PrefToken); err != nil {
		h.Log.Error("logout: delete token", zap.Error(err))
	}

	if id := r.FormValue("view"); id != "" && h.Views != nil {
		h.Views.Remove(id)
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation to "/".
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) remoteLogout(tok string) {
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()

		ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Logout(), h.Log, "remote logout")
		defer cancel()

		if err := h.API.Logout(ctx, tok); err != nil {
			if errors.Is(err, diseaseapi.ErrNoToken) {
				h.Log.Debug("logout without token; remote call skipped")
				return
			}
			h.Log.Warn("remote logout failed; local logout proceeds", zap.Error(err))
		}
	}()
}

// Wait blocks until background remote logouts have finished.
func (h *Handler) Wait() {
	h.inflight.Wait()
}
