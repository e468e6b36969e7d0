// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the view sweeper, closes open dashboard views, waits for
// pending remote logouts, and disconnects MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if running.cleanup != nil {
		running.cleanup.Stop()
	}
	if running.views != nil {
		logger.Info("closing dashboard views", zap.Int("open", running.views.Len()))
		running.views.CloseAll()
	}
	if running.logout != nil {
		running.logout.Wait()
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
