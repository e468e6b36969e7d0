// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/hydrotrim/internal/app/system/translations"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the sidebar brand and page titles.
const SiteName = "HydroTrim"

// Theme carries the CSS classes derived from the dark mode preference.
type Theme struct {
	Page string // page container and body
	Card string // cards and tables
}

// ThemeFor returns the classes for the given mode.
func ThemeFor(dark bool) Theme {
	if dark {
		return Theme{Page: "bg-dark text-light", Card: "bg-secondary text-light"}
	}
	return Theme{Page: "bg-light"}
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, p, h.Text, "settings"),
//	}
type BaseVM struct {
	SiteName   string
	Title      string
	Lang       string
	T          translations.Labels
	Theme      Theme
	IsLoggedIn bool

	// CSRF protection
	CSRFToken string // Token for form submission and the HTMX header
}

// NewBaseVM builds a BaseVM from the visitor's preferences. titleKey is a
// message ID; the page title is its translation.
func NewBaseVM(r *http.Request, p models.Preferences, text *translations.Provider, titleKey string) BaseVM {
	t := text.Labels(p.Language)
	return BaseVM{
		SiteName:   SiteName,
		Title:      t.Get(titleKey),
		Lang:       string(models.ParseLanguage(string(p.Language))),
		T:          t,
		Theme:      ThemeFor(p.DarkMode),
		IsLoggedIn: p.HasToken(),
		CSRFToken:  csrf.Token(r),
	}
}

// Renderer executes a named template into w.
type Renderer func(w http.ResponseWriter, r *http.Request, name string, data any)
