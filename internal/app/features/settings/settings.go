// internal/app/features/settings/settings.go
package settings

import (
	"context"
	"net/http"

	"github.com/dalemusser/hydrotrim/internal/app/system/prefs"
	"github.com/dalemusser/hydrotrim/internal/app/system/timeouts"
	"github.com/dalemusser/hydrotrim/internal/app/system/viewdata"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"go.uber.org/zap"
)

type languageOption struct {
	Code     string
	Name     string
	Selected bool
}

// languageNames are shown in their own script.
var languageNames = map[models.Language]string{
	models.LanguageEnglish: "English",
	models.LanguageHindi:   "हिन्दी",
}

type settingsVM struct {
	viewdata.BaseVM
	EmailNotifications bool
	SMSNotifications   bool
	DarkMode           bool
	Languages          []languageOption
	Saved              bool
	Error              string
}

func (h *Handler) buildVM(r *http.Request, p models.Preferences) settingsVM {
	langs := make([]languageOption, 0, len(models.Languages))
	for _, l := range models.Languages {
		langs = append(langs, languageOption{
			Code:     string(l),
			Name:     languageNames[l],
			Selected: l == p.Language,
		})
	}
	return settingsVM{
		BaseVM:             viewdata.NewBaseVM(r, p, h.Text, "settings"),
		EmailNotifications: p.EmailNotifications,
		SMSNotifications:   p.SMSNotifications,
		DarkMode:           p.DarkMode,
		Languages:          langs,
	}
}

// ServeSettings displays the settings form.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p := prefs.Load(ctx, h.Prefs.ForRequest(w, r), h.Log)
	vm := h.buildVM(r, p)
	vm.Saved = r.URL.Query().Get("saved") == "1"
	h.Render(w, r, "settings_page", vm)
}

// HandleSettings writes the submitted preferences. Unchecked boxes are
// absent from the form and stored as false.
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := h.Prefs.ForRequest(w, r)
	p := prefs.Load(ctx, store, h.Log)
	p.EmailNotifications = r.PostFormValue("emailNotifications") == "on"
	p.SMSNotifications = r.PostFormValue("smsNotifications") == "on"
	p.DarkMode = r.PostFormValue("darkMode") == "on"
	p.Language = models.ParseLanguage(r.PostFormValue("language"))

	if err := prefs.SaveDisplay(ctx, store, p); err != nil {
		h.Log.Error("save preferences", zap.Error(err))
		vm := h.buildVM(r, p)
		vm.Error = err.Error()
		w.WriteHeader(http.StatusInternalServerError)
		h.Render(w, r, "settings_page", vm)
		return
	}

	h.Log.Debug("preferences saved",
		zap.String("language", string(p.Language)),
		zap.Bool("dark_mode", p.DarkMode))
	http.Redirect(w, r, "/admin/settings?saved=1", http.StatusSeeOther)
}
