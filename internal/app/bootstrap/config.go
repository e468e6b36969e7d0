// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/hydrotrim/internal/app/system/diseaseapi"
	"github.com/dalemusser/hydrotrim/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for HydroTrim.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_base_url, session_name, etc.
//   - Environment variables: HYDROTRIM_API_BASE_URL, HYDROTRIM_SESSION_NAME, etc.
//   - Command-line flags: --api_base_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "api_base_url", Default: "http://localhost:4000", Desc: "Remote data service base URL"},
	{Name: "api_timeout", Default: "10s", Desc: "Timeout for remote record fetches and login (e.g., 10s, 1m)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "hydrotrim-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-change-me-0123", Desc: "CSRF token key, exactly 32 bytes (must be random in production)"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated proxy IPs/CIDRs whose X-Forwarded-For is honoured"},

	{Name: "prefs_backend", Default: PrefsBackendCookie, Desc: "Preference storage: 'cookie' or 'mongo'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI (mongo backend)"},
	{Name: "mongo_database", Default: "hydrotrim", Desc: "MongoDB database name (mongo backend)"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 0, Desc: "MongoDB min connection pool size (default: 0)"},

	{Name: "view_idle_ttl", Default: "30m", Desc: "Close dashboard views idle this long"},
	{Name: "view_cleanup_interval", Default: "1m", Desc: "How often idle dashboard views are swept"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, HYDROTRIM_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HYDROTRIM", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		APIBaseURL: appValues.String("api_base_url"),
		APITimeout: appValues.Duration("api_timeout", 10*time.Second),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		CSRFKey:       appValues.String("csrf_key"),

		TrustedProxies: appValues.String("trusted_proxies"),

		PrefsBackend:     appValues.String("prefs_backend"),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		ViewIdleTTL:         appValues.Duration("view_idle_ttl", 30*time.Minute),
		ViewCleanupInterval: appValues.Duration("view_cleanup_interval", time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is only checked when the mongo backend is selected.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if _, err := diseaseapi.New(appCfg.APIBaseURL, nil, logger); err != nil {
		logger.Error("invalid API base URL", zap.Error(err))
		return fmt.Errorf("invalid api_base_url: %w", err)
	}

	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}
	if appCfg.SessionName == "" {
		return fmt.Errorf("session_name is required")
	}
	if len(appCfg.CSRFKey) != 32 {
		return fmt.Errorf("csrf_key must be exactly 32 bytes, got %d", len(appCfg.CSRFKey))
	}
	if _, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted_proxies: %w", err)
	}

	switch appCfg.PrefsBackend {
	case PrefsBackendCookie:
	case PrefsBackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required with the mongo preference backend")
		}
	default:
		return fmt.Errorf("prefs_backend must be %q or %q, got %q",
			PrefsBackendCookie, PrefsBackendMongo, appCfg.PrefsBackend)
	}

	if appCfg.ViewIdleTTL <= 0 || appCfg.ViewCleanupInterval <= 0 {
		return fmt.Errorf("view_idle_ttl and view_cleanup_interval must be positive")
	}

	return nil
}
