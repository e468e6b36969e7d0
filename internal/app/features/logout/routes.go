// internal/app/features/logout/routes.go
package logout

import "github.com/go-chi/chi/v5"

// Routes is mounted at /admin/logout. It is not behind the token gate:
// logging out without a token still lands on the entry screen.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeLogout)
	return r
}
