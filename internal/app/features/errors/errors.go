// internal/app/features/errors/errors.go
package errors

import (
	"context"
	"net/http"

	"github.com/dalemusser/hydrotrim/internal/app/system/prefs"
	"github.com/dalemusser/hydrotrim/internal/app/system/timeouts"
	"github.com/dalemusser/hydrotrim/internal/app/system/translations"
	"github.com/dalemusser/hydrotrim/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// pageData is the basic view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Message string
	BackURL string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct {
	Prefs  prefs.Resolver
	Text   *translations.Provider
	Log    *zap.Logger
	Render viewdata.Renderer
}

// NewHandler constructs an errors Handler.
func NewHandler(res prefs.Resolver, text *translations.Provider, logger *zap.Logger) *Handler {
	return &Handler{
		Prefs: res,
		Text:  text,
		Log:   logger,
		Render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}

// NotFound renders a friendly "page not found" page with a 404 status.
// Signed-in visitors are sent back to the dashboard, others to the entry screen.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p := prefs.Load(ctx, h.Prefs.ForRequest(w, r), h.Log)
	base := viewdata.NewBaseVM(r, p, h.Text, "notFound")

	back := "/"
	if p.HasToken() {
		back = "/admin/dashboard"
	}

	h.Log.Debug("page not found", zap.String("path", r.URL.Path))

	w.WriteHeader(http.StatusNotFound)
	h.Render(w, r, "error_not_found", pageData{
		BaseVM:  base,
		Message: base.T.Get("notFoundMessage"),
		BackURL: back,
	})
}
