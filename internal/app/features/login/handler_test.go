package login_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/hydrotrim/internal/app/features/home"
	"github.com/dalemusser/hydrotrim/internal/app/features/login"
	"github.com/dalemusser/hydrotrim/internal/app/system/diseaseapi"
	"github.com/dalemusser/hydrotrim/internal/app/system/prefs"
	"github.com/dalemusser/hydrotrim/internal/app/system/ratelimit"
	"github.com/dalemusser/hydrotrim/internal/app/system/translations"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"github.com/dalemusser/hydrotrim/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, api *testutil.RemoteAPI, store *prefs.Memory) *login.Handler {
	t.Helper()
	client, err := diseaseapi.New(api.URL, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("diseaseapi.New: %v", err)
	}
	text, err := translations.Load(zap.NewNop())
	if err != nil {
		t.Fatalf("translations.Load: %v", err)
	}
	h := login.NewHandler(client, store, text, zap.NewNop())
	h.Render = testutil.Renderer(t, home.FS)
	return h
}

func postLogin(h *login.Handler, email, password string) *testutil.ResponseRecorder {
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := testutil.NewRecorder()
	login.Routes(h).ServeHTTP(rec, req)
	return rec
}

func TestHandleLoginPost_StoresToken(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	api.LoginToken = "issued-token"
	store := prefs.NewMemory(nil)
	h := newTestHandler(t, api, store)

	rec := postLogin(h, "admin@example.com", "secret")

	rec.AssertRedirect(t, "/admin/dashboard")
	if v, ok, _ := store.Get(context.Background(), models.PrefToken); !ok || v != "issued-token" {
		t.Errorf("token: got (%q, %v)", v, ok)
	}
}

func TestHandleLoginPost_Rejected(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	store := prefs.NewMemory(nil)
	h := newTestHandler(t, api, store)

	rec := postLogin(h, "admin@example.com", "wrong")

	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "Sign in failed")
	rec.AssertContains(t, `value="admin@example.com"`)
	if _, ok, _ := store.Get(context.Background(), models.PrefToken); ok {
		t.Error("token stored after a rejected login")
	}
}

func TestHandleLoginPost_MissingFields(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	api.LoginToken = "issued-token"
	h := newTestHandler(t, api, prefs.NewMemory(nil))

	rec := postLogin(h, "", "")
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeLogin_RedirectsHome(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	h := newTestHandler(t, api, prefs.NewMemory(nil))

	rec := testutil.NewRecorder()
	login.Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	rec.AssertRedirect(t, "/")
}

func TestHandleLoginPost_RateLimited(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	h := newTestHandler(t, api, prefs.NewMemory(nil))
	h.Limiter = ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)

	postLogin(h, "admin@example.com", "wrong")
	postLogin(h, "admin@example.com", "wrong")
	rec := postLogin(h, "admin@example.com", "wrong")

	rec.AssertStatus(t, http.StatusTooManyRequests)
	rec.AssertContains(t, "Too many sign-in attempts")
}
