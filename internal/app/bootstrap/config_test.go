package bootstrap

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/hydrotrim/internal/app/system/timeouts"
	"github.com/dalemusser/hydrotrim/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		APIBaseURL:          "http://localhost:4000",
		APITimeout:          10 * time.Second,
		SessionKey:          "0123456789abcdef0123456789abcdef",
		SessionName:         "hydrotrim-session",
		CSRFKey:             "fedcba9876543210fedcba9876543210",
		PrefsBackend:        PrefsBackendCookie,
		MongoURI:            "mongodb://localhost:27017",
		MongoDatabase:       "hydrotrim",
		ViewIdleTTL:         30 * time.Minute,
		ViewCleanupInterval: time.Minute,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "cookie backend", mutate: func(*AppConfig) {}},
		{name: "mongo backend", mutate: func(c *AppConfig) { c.PrefsBackend = PrefsBackendMongo }},
		{
			name:   "bad mongo URI ignored with cookie backend",
			mutate: func(c *AppConfig) { c.MongoURI = "not-a-uri" },
		},
		{
			name:    "bad mongo URI with mongo backend",
			mutate:  func(c *AppConfig) { c.PrefsBackend = PrefsBackendMongo; c.MongoURI = "not-a-uri" },
			wantErr: "MongoDB URI",
		},
		{
			name:    "missing database with mongo backend",
			mutate:  func(c *AppConfig) { c.PrefsBackend = PrefsBackendMongo; c.MongoDatabase = "" },
			wantErr: "mongo_database",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *AppConfig) { c.PrefsBackend = "redis" },
			wantErr: "prefs_backend",
		},
		{
			name:    "relative API URL",
			mutate:  func(c *AppConfig) { c.APIBaseURL = "/api" },
			wantErr: "api_base_url",
		},
		{
			name:    "missing session key",
			mutate:  func(c *AppConfig) { c.SessionKey = "" },
			wantErr: "session_key",
		},
		{
			name:    "short csrf key",
			mutate:  func(c *AppConfig) { c.CSRFKey = "short" },
			wantErr: "csrf_key",
		},
		{
			name:   "trusted proxies",
			mutate: func(c *AppConfig) { c.TrustedProxies = "10.0.0.0/8, 192.168.1.5" },
		},
		{
			name:    "bad trusted proxy",
			mutate:  func(c *AppConfig) { c.TrustedProxies = "10.0.0.0/99" },
			wantErr: "trusted_proxies",
		},
		{
			name:    "zero idle ttl",
			mutate:  func(c *AppConfig) { c.ViewIdleTTL = 0 },
			wantErr: "view_idle_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)

			err := ValidateConfig(&config.CoreConfig{}, cfg, testLogger())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConnectDB_CookieBackendSkipsMongo(t *testing.T) {
	deps, err := ConnectDB(context.Background(), &config.CoreConfig{}, validAppConfig(), testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.MongoClient != nil || deps.MongoDatabase != nil {
		t.Error("cookie backend should not connect to MongoDB")
	}
	if err := EnsureSchema(context.Background(), &config.CoreConfig{}, validAppConfig(), deps, testLogger()); err != nil {
		t.Errorf("EnsureSchema without a database: %v", err)
	}
}

func TestEnsureSchema_CreatesTTLIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	if err := EnsureSchema(ctx, &config.CoreConfig{}, validAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	cur, err := db.Collection("preferences").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	var idx []bson.M
	if err := cur.All(ctx, &idx); err != nil {
		t.Fatalf("decode indexes: %v", err)
	}

	found := false
	for _, ix := range idx {
		if ix["name"] == "updated_at_ttl" {
			found = true
			if _, ok := ix["expireAfterSeconds"]; !ok {
				t.Error("updated_at_ttl has no expireAfterSeconds")
			}
		}
	}
	if !found {
		t.Error("updated_at_ttl index not created")
	}
}

func TestStartup_AppliesAPITimeout(t *testing.T) {
	cfg := validAppConfig()
	cfg.APITimeout = 3 * time.Second

	if err := Startup(context.Background(), &config.CoreConfig{}, cfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	t.Cleanup(timeouts.Reset)

	if got := timeouts.Fetch(); got != 3*time.Second {
		t.Errorf("fetch timeout: got %v, want 3s", got)
	}
}
