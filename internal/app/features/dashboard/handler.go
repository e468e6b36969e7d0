// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dalemusser/hydrotrim/internal/app/system/prefs"
	"github.com/dalemusser/hydrotrim/internal/app/system/timeouts"
	"github.com/dalemusser/hydrotrim/internal/app/system/translations"
	"github.com/dalemusser/hydrotrim/internal/app/system/viewdata"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

type Handler struct {
	Views  *Registry
	Prefs  prefs.Resolver
	Text   *translations.Provider
	Log    *zap.Logger
	Render viewdata.Renderer
}

func NewHandler(views *Registry, res prefs.Resolver, text *translations.Provider, logger *zap.Logger) *Handler {
	return &Handler{
		Views: views,
		Prefs: res,
		Text:  text,
		Log:   logger,
		Render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func pageURL(viewID string) string {
	return "/admin/dashboard?view=" + url.QueryEscape(viewID)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/dashboard – full page                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeDashboard opens a new view, or re-renders the one named by ?view=.
// Preferences are re-read on every full page load.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	var c *Controller
	if id := r.URL.Query().Get("view"); id != "" {
		var err error
		if c, err = h.Views.Get(id); err != nil {
			h.Log.Debug("unknown dashboard view, opening a new one", zap.String("view", id))
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			return
		}
	} else {
		c = h.Views.Create()
		h.Log.Debug("dashboard view opened", zap.String("view", c.ID()))
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	c.Initialize(ctx, h.Prefs.ForRequest(w, r))

	st := c.State()
	base := viewdata.NewBaseVM(r, st.Prefs, h.Text, "dashboard")
	h.Render(w, r, "dashboard_page", buildPage(base, st))
}

/*─────────────────────────────────────────────────────────────────────────────*
| View actions                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// view resolves {viewID}. Unknown views answer 404; HTMX callers are sent
// to a fresh page.
func (h *Handler) view(w http.ResponseWriter, r *http.Request) (*Controller, bool) {
	id := chi.URLParam(r, "viewID")
	c, err := h.Views.Get(id)
	if err != nil {
		h.Log.Debug("dashboard view not found", zap.String("view", id))
		if isHTMX(r) {
			w.Header().Set("HX-Redirect", "/admin/dashboard")
		}
		http.Error(w, "view not found", http.StatusNotFound)
		return nil, false
	}
	return c, true
}

// ToggleReports handles POST /admin/dashboard/{viewID}/reports/toggle.
func (h *Handler) ToggleReports(w http.ResponseWriter, r *http.Request) {
	c, ok := h.view(w, r)
	if !ok {
		return
	}
	c.ToggleReportsMenu()

	if !isHTMX(r) {
		http.Redirect(w, r, pageURL(c.ID()), http.StatusSeeOther)
		return
	}
	st := c.State()
	h.Render(w, r, "dashboard_sidebar", buildSidebar(st, h.Text.Labels(st.Prefs.Language), csrf.Token(r)))
}

// SelectDisease handles POST /admin/dashboard/{viewID}/select/{disease}.
// The response does not wait for the fetch; the panel polls while loading.
// HTMX callers also get the sidebar out of band so the highlight follows.
func (h *Handler) SelectDisease(w http.ResponseWriter, r *http.Request) {
	c, ok := h.view(w, r)
	if !ok {
		return
	}

	d, ok := models.ParseDisease(chi.URLParam(r, "disease"))
	if !ok {
		http.Error(w, ErrUnknownDisease.Error(), http.StatusBadRequest)
		return
	}
	if err := c.SelectDisease(d); err != nil {
		if errors.Is(err, ErrViewNotFound) {
			http.Error(w, "view not found", http.StatusNotFound)
			return
		}
		h.Log.Error("select disease failed", zap.String("disease", d.String()), zap.Error(err))
		http.Error(w, "select failed", http.StatusInternalServerError)
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, pageURL(c.ID()), http.StatusSeeOther)
		return
	}
	st := c.State()
	t := h.Text.Labels(st.Prefs.Language)
	sb := buildSidebar(st, t, csrf.Token(r))
	sb.OOB = true
	h.Render(w, r, "dashboard_select", selectData{Panel: buildPanel(st, t), Sidebar: sb})
}

// ServePanel handles GET /admin/dashboard/{viewID}/panel.
func (h *Handler) ServePanel(w http.ResponseWriter, r *http.Request) {
	c, ok := h.view(w, r)
	if !ok {
		return
	}
	h.renderPanel(w, r, c)
}

func (h *Handler) renderPanel(w http.ResponseWriter, r *http.Request, c *Controller) {
	st := c.State()
	h.Render(w, r, "dashboard_panel", buildPanel(st, h.Text.Labels(st.Prefs.Language)))
}
