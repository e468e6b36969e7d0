package prefs

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// deviceKey is the cookie value holding the device ID.
const deviceKey = "device_id"

// DeviceBackend stores preferences per device. The MongoDB preference store
// implements it.
type DeviceBackend interface {
	Get(ctx context.Context, deviceID, key string) (string, bool, error)
	Set(ctx context.Context, deviceID, key, value string) error
	Delete(ctx context.Context, deviceID, key string) error
}

// DeviceResolver identifies the browser by a random device ID kept in the
// signed cookie and delegates storage to a DeviceBackend.
type DeviceResolver struct {
	cookies *sessions.CookieStore
	name    string
	backend DeviceBackend
	log     *zap.Logger
}

// NewDeviceResolver builds a resolver over backend.
func NewDeviceResolver(cookies *sessions.CookieStore, name string, backend DeviceBackend, logger *zap.Logger) *DeviceResolver {
	return &DeviceResolver{cookies: cookies, name: name, backend: backend, log: logger}
}

// ForRequest returns the Store for r's device. The device ID is assigned
// lazily on the first write so read-only visitors get no cookie.
func (d *DeviceResolver) ForRequest(w http.ResponseWriter, r *http.Request) Store {
	return &deviceStore{resolver: d, w: w, r: r}
}

type deviceStore struct {
	resolver *DeviceResolver
	w        http.ResponseWriter
	r        *http.Request
}

func (s *deviceStore) session() *sessions.Session {
	sess, err := s.resolver.cookies.Get(s.r, s.resolver.name)
	if err != nil {
		s.resolver.log.Warn("device cookie invalid, starting fresh", zap.Error(err))
	}
	return sess
}

// deviceID returns the current device ID, creating and persisting one when
// create is set.
func (s *deviceStore) deviceID(create bool) (string, error) {
	sess := s.session()
	if id, ok := sess.Values[deviceKey].(string); ok && id != "" {
		return id, nil
	}
	if !create {
		return "", nil
	}
	id := uuid.NewString()
	sess.Values[deviceKey] = id
	if err := sess.Save(s.r, s.w); err != nil {
		return "", err
	}
	return id, nil
}

func (s *deviceStore) Get(ctx context.Context, key string) (string, bool, error) {
	id, err := s.deviceID(false)
	if err != nil || id == "" {
		return "", false, err
	}
	return s.resolver.backend.Get(ctx, id, key)
}

func (s *deviceStore) Set(ctx context.Context, key, value string) error {
	id, err := s.deviceID(true)
	if err != nil {
		return err
	}
	return s.resolver.backend.Set(ctx, id, key, value)
}

func (s *deviceStore) Delete(ctx context.Context, key string) error {
	id, err := s.deviceID(false)
	if err != nil || id == "" {
		return err
	}
	return s.resolver.backend.Delete(ctx, id, key)
}
