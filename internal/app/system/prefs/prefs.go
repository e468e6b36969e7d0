// Package prefs is the durable per-browser preference store.
//
// Values are plain strings keyed by the names in models (PrefLanguage,
// PrefDarkMode, ...). A Store is bound to one browser; a Resolver hands out
// the Store for the browser that sent a request. Two backends exist: the
// signed cookie backend (cookie.go) and a device backend that keeps values
// in MongoDB under a device ID held in the cookie (device.go).
package prefs

import (
	"context"
	"net/http"

	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"go.uber.org/zap"
)

// Store reads and writes single preference keys. Each call is atomic for
// its key; callers never see a partially written value.
type Store interface {
	// Get returns the stored value; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Resolver returns the Store belonging to the browser that sent r.
// Writes may set cookies, so ForRequest must be called before the
// response is written.
type Resolver interface {
	ForRequest(w http.ResponseWriter, r *http.Request) Store
}

// Load reads all preferences, applying defaults for absent keys.
// A failing read is logged and treated as absent.
func Load(ctx context.Context, s Store, log *zap.Logger) models.Preferences {
	p := models.DefaultPreferences()

	get := func(key string) string {
		v, ok, err := s.Get(ctx, key)
		if err != nil {
			log.Warn("preference read failed; using default",
				zap.String("key", key), zap.Error(err))
			return ""
		}
		if !ok {
			return ""
		}
		return v
	}

	p.EmailNotifications = models.ParseBool(get(models.PrefEmailNotifications))
	p.SMSNotifications = models.ParseBool(get(models.PrefSMSNotifications))
	p.Language = models.ParseLanguage(get(models.PrefLanguage))
	p.DarkMode = models.ParseBool(get(models.PrefDarkMode))
	p.AuthToken = get(models.PrefToken)
	return p
}

// SaveDisplay writes the user-editable preferences (everything but the token).
func SaveDisplay(ctx context.Context, s Store, p models.Preferences) error {
	writes := []struct{ key, val string }{
		{models.PrefEmailNotifications, models.FormatBool(p.EmailNotifications)},
		{models.PrefSMSNotifications, models.FormatBool(p.SMSNotifications)},
		{models.PrefLanguage, string(models.ParseLanguage(string(p.Language)))},
		{models.PrefDarkMode, models.FormatBool(p.DarkMode)},
	}
	for _, wr := range writes {
		if err := s.Set(ctx, wr.key, wr.val); err != nil {
			return err
		}
	}
	return nil
}
