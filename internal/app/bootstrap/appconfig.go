// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Preference backends selectable with prefs_backend.
const (
	PrefsBackendCookie = "cookie"
	PrefsBackendMongo  = "mongo"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// The struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown should live here.
type AppConfig struct {
	// Remote data service
	APIBaseURL string        // Service root (e.g., http://localhost:4000)
	APITimeout time.Duration // Bound on each records fetch and login

	// Session cookie configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name (default: hydrotrim-session)
	SessionDomain string // Cookie domain (blank means current host)
	CSRFKey       string // 32-byte key for CSRF tokens

	// Comma-separated IPs or CIDRs of reverse proxies allowed to set
	// X-Forwarded-For. Blank means the peer address is always used.
	TrustedProxies string

	// Preference storage: "cookie" keeps values in the signed cookie,
	// "mongo" keeps them in MongoDB keyed by a device ID in the cookie.
	PrefsBackend string

	// MongoDB connection configuration (only used by the mongo backend)
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Dashboard views
	ViewIdleTTL         time.Duration // Views untouched this long are closed
	ViewCleanupInterval time.Duration // How often idle views are swept
}
