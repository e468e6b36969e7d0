package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/hydrotrim/internal/app/system/validators"
	"github.com/dalemusser/hydrotrim/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{"name": "preferences"})
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	if len(names) != 1 {
		t.Error("preferences collection not created")
	}
}

func TestEnsureAll_RejectsNonStringValues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	coll := db.Collection("preferences")
	_, err := coll.InsertOne(ctx, bson.M{
		"_id":        "device-ok",
		"values":     bson.M{"language": "hi", "darkMode": "true"},
		"updated_at": time.Now(),
	})
	if err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	_, err = coll.InsertOne(ctx, bson.M{
		"_id":        "device-bad",
		"values":     bson.M{"darkMode": true},
		"updated_at": time.Now(),
	})
	if err == nil {
		t.Error("document with a non-string value was accepted")
	}
}
