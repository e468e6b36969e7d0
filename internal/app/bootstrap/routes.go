// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	dashboardfeature "github.com/dalemusser/hydrotrim/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/hydrotrim/internal/app/features/errors"
	healthfeature "github.com/dalemusser/hydrotrim/internal/app/features/health"
	homefeature "github.com/dalemusser/hydrotrim/internal/app/features/home"
	loginfeature "github.com/dalemusser/hydrotrim/internal/app/features/login"
	logoutfeature "github.com/dalemusser/hydrotrim/internal/app/features/logout"
	settingsfeature "github.com/dalemusser/hydrotrim/internal/app/features/settings"
	preferencestore "github.com/dalemusser/hydrotrim/internal/app/store/preferences"
	"github.com/dalemusser/hydrotrim/internal/app/system/auth"
	"github.com/dalemusser/hydrotrim/internal/app/system/diseaseapi"
	"github.com/dalemusser/hydrotrim/internal/app/system/prefs"
	"github.com/dalemusser/hydrotrim/internal/app/system/ratelimit"
	"github.com/dalemusser/hydrotrim/internal/app/system/translations"
	"github.com/dalemusser/hydrotrim/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// running holds the long-lived components BuildHandler starts and
// Shutdown stops.
var running struct {
	views   *dashboardfeature.Registry
	cleanup *workers.ViewCleanup
	logout  *logoutfeature.Handler
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: the MongoDB client when the mongo preference backend is used
//   - logger: the fully configured zap.Logger for this app
//
// HydroTrim initializes the template engine, picks the preference backend,
// starts the idle view sweeper, and mounts the entry screen, sign-in,
// dashboard, settings, and logout routers behind CSRF protection.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	var resolver prefs.Resolver
	if deps.MongoDatabase != nil {
		resolver = prefs.NewDeviceResolver(sessionMgr.Store(), sessionMgr.Name(), preferencestore.New(deps.MongoDatabase), logger)
	} else {
		resolver = prefs.NewCookieResolver(sessionMgr.Store(), sessionMgr.Name(), logger)
	}

	api, err := diseaseapi.New(appCfg.APIBaseURL, &http.Client{}, logger)
	if err != nil {
		logger.Error("remote API client init failed", zap.Error(err))
		return nil, err
	}
	logger.Info("remote API configured", zap.String("base_url", api.BaseURL()))

	proxies, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies)
	if err != nil {
		logger.Error("trusted proxies invalid", zap.Error(err))
		return nil, err
	}

	csrfMW, err := auth.CSRF([]byte(appCfg.CSRFKey), secure, logger)
	if err != nil {
		logger.Error("csrf init failed", zap.Error(err))
		return nil, err
	}

	text, err := translations.Load(logger)
	if err != nil {
		logger.Error("translations load failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	views := dashboardfeature.NewRegistry(api, logger)
	cleanup := workers.NewViewCleanup(views, logger, appCfg.ViewCleanupInterval, appCfg.ViewIdleTTL)
	cleanup.Start()

	r := chi.NewRouter()
	r.Use(csrfMW)

	errorsHandler := errorsfeature.NewHandler(resolver, text, logger)
	r.NotFound(errorsHandler.NotFound)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, api, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Entry screen
	homeHandler := homefeature.NewHandler(resolver, text, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(api, resolver, text, logger)
	loginHandler.Limiter.TrustProxies(proxies)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(api, resolver, views, logger)
	r.Mount("/admin/logout", logoutfeature.Routes(logoutHandler))

	// Dashboard views
	dashboardHandler := dashboardfeature.NewHandler(views, resolver, text, logger)
	r.Mount("/admin/dashboard", dashboardfeature.Routes(dashboardHandler))

	// Preferences
	settingsHandler := settingsfeature.NewHandler(resolver, text, logger)
	r.Route("/admin/settings", settingsHandler.MountRoutes)

	running.views = views
	running.cleanup = cleanup
	running.logout = logoutHandler

	return r, nil
}
