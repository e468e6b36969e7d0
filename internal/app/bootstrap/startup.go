// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/hydrotrim/internal/app/resources"
	"github.com/dalemusser/hydrotrim/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It
// registers the shared templates and applies the configured timeouts.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	timeouts.Configure(timeouts.Config{Fetch: appCfg.APITimeout})
	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", cur.Ping),
		zap.Duration("short", cur.Short),
		zap.Duration("fetch", cur.Fetch),
		zap.Duration("logout", cur.Logout))
	return nil
}
