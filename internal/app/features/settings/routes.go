// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/hydrotrim/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes mounts all settings routes on the given router.
// All routes require an auth token.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireToken(h.Prefs, h.Log))
		pr.Get("/", h.ServeSettings)
		pr.Post("/", h.HandleSettings)
	})
}
