// internal/app/store/preferences/preferencestore.go
package preferencestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInvalidKey is returned for keys MongoDB cannot use as a field name.
var ErrInvalidKey = errors.New("invalid preference key")

// Doc is one device's preference document.
type Doc struct {
	DeviceID  string            `bson:"_id"`
	Values    map[string]string `bson:"values"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// Store provides access to the preferences collection.
// Each device has one document keyed by its device ID.
type Store struct {
	c *mongo.Collection
}

// New creates a new preference store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("preferences")}
}

func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, ".$")
}

// Get returns a single preference value for the device.
func (s *Store) Get(ctx context.Context, deviceID, key string) (string, bool, error) {
	if !validKey(key) {
		return "", false, ErrInvalidKey
	}

	var doc Doc
	opts := options.FindOne().SetProjection(bson.M{"values." + key: 1})
	err := s.c.FindOne(ctx, bson.M{"_id": deviceID}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Values[key]
	return v, ok, nil
}

// Set writes one value. Uses upsert so the first write creates the document.
func (s *Store) Set(ctx context.Context, deviceID, key, value string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	update := bson.M{
		"$set": bson.M{
			"values." + key: value,
			"updated_at":    time.Now().UTC(),
		},
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": deviceID}, update, options.Update().SetUpsert(true))
	return err
}

// Delete removes one value. Missing devices or keys are not an error.
func (s *Store) Delete(ctx context.Context, deviceID, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	update := bson.M{
		"$unset": bson.M{"values." + key: ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": deviceID}, update)
	return err
}

// EnsureIndexes creates the index used to expire abandoned devices.
func (s *Store) EnsureIndexes(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetName("updated_at_ttl").SetExpireAfterSeconds(int32(ttl.Seconds())),
	})
	return err
}
