// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("preferences", preferencesSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure name exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	// Listing failed or the collection is new; a concurrent create is fine.
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandErrorMatches(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErrorMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErrorMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErrorMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

// preferencesSchema matches preferencestore.Doc: one document per device
// holding string values under "values".
func preferencesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "updated_at"},
			"properties": bson.M{
				"_id":        bson.M{"bsonType": "string", "minLength": 1},
				"updated_at": bson.M{"bsonType": "date"},
				"values": bson.M{
					"bsonType":             "object",
					"additionalProperties": bson.M{"bsonType": "string"},
				},
			},
		},
	}
}
