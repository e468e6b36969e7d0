// internal/domain/models/preferences.go
package models

import "strings"

// Language is a UI language code.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

// DefaultLanguage is used when no language preference is stored.
const DefaultLanguage = LanguageEnglish

// Languages lists the supported languages in settings order.
var Languages = []Language{LanguageEnglish, LanguageHindi}

// ParseLanguage maps a stored code to a supported Language, falling back to
// DefaultLanguage for empty or unsupported codes.
func ParseLanguage(s string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageHindi:
		return LanguageHindi
	case LanguageEnglish:
		return LanguageEnglish
	default:
		return DefaultLanguage
	}
}

// Preference store keys. Values are stored as strings;
// booleans use "true" / "false".
const (
	PrefEmailNotifications = "emailNotifications"
	PrefSMSNotifications   = "smsNotifications"
	PrefLanguage           = "language"
	PrefDarkMode           = "darkMode"
	PrefToken              = "token"
)

// Preferences are the per-browser settings the dashboard reads at start.
type Preferences struct {
	EmailNotifications bool
	SMSNotifications   bool
	Language           Language
	DarkMode           bool
	AuthToken          string // empty when signed out
}

// DefaultPreferences is what an empty store yields.
func DefaultPreferences() Preferences {
	return Preferences{Language: DefaultLanguage}
}

// HasToken reports whether an auth token is present.
func (p Preferences) HasToken() bool {
	return p.AuthToken != ""
}

// FormatBool encodes a boolean preference value.
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ParseBool decodes a boolean preference value. Only "true" is true.
func ParseBool(s string) bool {
	return s == "true"
}
