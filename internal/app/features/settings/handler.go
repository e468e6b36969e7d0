// internal/app/features/settings/handler.go
package settings

import (
	"net/http"

	"github.com/dalemusser/hydrotrim/internal/app/system/prefs"
	"github.com/dalemusser/hydrotrim/internal/app/system/translations"
	"github.com/dalemusser/hydrotrim/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler owns the preference settings page.
type Handler struct {
	Prefs  prefs.Resolver
	Text   *translations.Provider
	Log    *zap.Logger
	Render viewdata.Renderer
}

// NewHandler constructs a Handler bound to the preference resolver and translations.
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
