// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/hydrotrim/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/admin/dashboard").
//
// Every route requires an auth token in the preference store.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireToken(h.Prefs, h.Log))

		pr.Get("/", h.ServeDashboard)
		pr.Route("/{viewID}", func(vr chi.Router) {
			vr.Post("/reports/toggle", h.ToggleReports)
			vr.Post("/select/{disease}", h.SelectDisease)
			vr.Get("/panel", h.ServePanel)
		})
	})

	return r
}
