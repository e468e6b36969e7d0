package home

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

// Handler holds dependencies needed to serve the entry screen.
type Handler struct {
	Prefs  prefs.Resolver
	Text   *translations.Provider
	Log    *zap.Logger
	Render viewdata.Renderer
}

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

// EntryData is the entry screen. The login feature re-renders it with an
// error after a failed sign-in.
type EntryData struct {
	viewdata.BaseVM
	Error string
	Email string
}

// NewEntryData builds the entry screen for the visitor's preferences.
func NewEntryData(w http.ResponseWriter, r *http.Request, res prefs.Resolver, text *translations.Provider, logger *zap.Logger) EntryData {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p := prefs.Load(ctx, res.ForRequest(w, r), logger)
	return EntryData{BaseVM: viewdata.NewBaseVM(r, p, text, "signIn")}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – entry screen                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, "home_page", NewEntryData(w, r, h.Prefs, h.Text, h.Log))
}
