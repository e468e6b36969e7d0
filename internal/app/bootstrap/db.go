// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	preferencestore "github.com/dalemusser/hydrotrim/internal/app/store/preferences"
	"github.com/dalemusser/hydrotrim/internal/app/system/auth"
	"github.com/dalemusser/hydrotrim/internal/app/system/timeouts"
	"github.com/dalemusser/hydrotrim/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB connection used by the mongo preference
// backend. With the cookie backend there is nothing to connect.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	if appCfg.PrefsBackend != PrefsBackendMongo {
		logger.Info("preferences kept in the session cookie; skipping MongoDB")
		return DBDeps{}, nil
	}

	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema sets up collections, validators, and indexes as needed.
// Device preference documents expire with the cookie that names them.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("ensure collections failed", zap.Error(err))
		return fmt.Errorf("ensure collections: %w", err)
	}
	if err := preferencestore.New(deps.MongoDatabase).EnsureIndexes(ctx, auth.CookieMaxAge); err != nil {
		logger.Error("ensure preference indexes failed", zap.Error(err))
		return fmt.Errorf("ensure preference indexes: %w", err)
	}
	return nil
}
