package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dalemusser/hydrotrim/internal/domain/models"
)

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	location := r.Header().Get("Location")
	if location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// Record builds a remote-shaped record for region with the given yearly values.
func Record(id, serial, region string, years ...string) map[string]any {
	m := map[string]any{"_id": id, "s__no": serial, "state_u_t_": region}
	for i, col := range models.YearColumns {
		if i < len(years) {
			m[col.Field] = years[i]
		}
	}
	return m
}

// RemoteAPI is a fake remote data service backed by httptest.Server.
type RemoteAPI struct {
	*httptest.Server

	// Records served per disease path; a missing path returns 500.
	Records map[string][]map[string]any

	logoutCalls atomic.Int32
	lastAuth    atomic.Value // string

	// LogoutStatus is the status the logout endpoint answers with.
	LogoutStatus int

	// LoginToken is returned by the login endpoint; empty means 401.
	LoginToken string
}

// NewRemoteAPI starts a fake remote data service; it is closed on cleanup.
func NewRemoteAPI(t *testing.T) *RemoteAPI {
	t.Helper()
	api := &RemoteAPI{
		Records:      map[string][]map[string]any{},
		LogoutStatus: http.StatusOK,
	}
	api.Server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.Close)
	return api
}

func (a *RemoteAPI) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout" {
		a.logoutCalls.Add(1)
		a.lastAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(a.LogoutStatus)
		return
	}
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/login" {
		if a.LoginToken == "" {
			http.Error(w, `{"message":"Invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": a.LoginToken})
		return
	}
	recs, ok := a.Records[r.URL.Path]
	if !ok || r.Method != http.MethodGet {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(recs)
}

// LogoutCalls returns how many logout requests were received.
func (a *RemoteAPI) LogoutCalls() int { return int(a.logoutCalls.Load()) }

// LastAuthorization returns the Authorization header of the last logout.
func (a *RemoteAPI) LastAuthorization() string {
	v, _ := a.lastAuth.Load().(string)
	return v
}
