package prefs

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// CookieResolver keeps preferences in a signed cookie, the server-side
// counterpart of browser local storage. The cookie outlives the browser
// session (see NewCookieStore in package auth for its options).
type CookieResolver struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewCookieResolver binds preference reads and writes to the named cookie.
func NewCookieResolver(store *sessions.CookieStore, name string, logger *zap.Logger) *CookieResolver {
	return &CookieResolver{store: store, name: name, log: logger}
}

// ForRequest returns the cookie-backed Store for r.
func (c *CookieResolver) ForRequest(w http.ResponseWriter, r *http.Request) Store {
	return &cookieStore{resolver: c, w: w, r: r}
}

type cookieStore struct {
	resolver *CookieResolver
	w        http.ResponseWriter
	r        *http.Request
}

// session returns the request's session. gorilla caches it per request, so
// consecutive writes in one request accumulate in the same cookie.
func (s *cookieStore) session() *sessions.Session {
	sess, err := s.resolver.store.Get(s.r, s.resolver.name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			s.resolver.log.Warn("preference cookie invalid, starting fresh", zap.Error(err))
		} else {
			s.resolver.log.Error("preference cookie read failed, starting fresh", zap.Error(err))
		}
	}
	return sess
}

func (s *cookieStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.session().Values[key].(string)
	return v, ok, nil
}

func (s *cookieStore) Set(_ context.Context, key, value string) error {
	sess := s.session()
	sess.Values[key] = value
	return sess.Save(s.r, s.w)
}

func (s *cookieStore) Delete(_ context.Context, key string) error {
	sess := s.session()
	if _, ok := sess.Values[key]; !ok {
		return nil
	}
	delete(sess.Values, key)
	return sess.Save(s.r, s.w)
}
