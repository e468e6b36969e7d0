// internal/domain/models/disease.go
package models

import (
	"strings"
)

// Disease identifies an outbreak category tracked by the dashboard.
// The zero value means "no disease selected".
type Disease string

const (
	DiseaseNone    Disease = ""
	DiseaseCholera Disease = "cholera"
	DiseaseTyphoid Disease = "typhoid"
	DiseaseDengue  Disease = "dengue"
)

// Diseases lists the known categories in the order the reports menu shows them.
var Diseases = []Disease{DiseaseDengue, DiseaseTyphoid, DiseaseCholera}

// ParseDisease maps a tag (case-insensitive, trimmed) to a known Disease.
// ok is false for empty or unknown tags.
func ParseDisease(s string) (Disease, bool) {
	switch Disease(strings.ToLower(strings.TrimSpace(s))) {
	case DiseaseCholera:
		return DiseaseCholera, true
	case DiseaseTyphoid:
		return DiseaseTyphoid, true
	case DiseaseDengue:
		return DiseaseDengue, true
	default:
		return DiseaseNone, false
	}
}

// Valid reports whether d is one of the known categories.
func (d Disease) Valid() bool {
	_, ok := ParseDisease(string(d))
	return ok
}

// Path returns the remote data service path that lists records for d.
// The cholera service lives under /all; the others are served at the root.
func (d Disease) Path() string {
	switch d {
	case DiseaseCholera:
		return "/api/cholera/all"
	case DiseaseTyphoid:
		return "/api/typhoid"
	case DiseaseDengue:
		return "/api/dengue"
	default:
		return ""
	}
}

// Icon is the glyph shown next to the table title.
func (d Disease) Icon() string {
	switch d {
	case DiseaseCholera:
		return "📌"
	case DiseaseTyphoid:
		return "🧫"
	case DiseaseDengue:
		return "🦠"
	default:
		return ""
	}
}

// String returns the tag.
func (d Disease) String() string { return string(d) }
