package health_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/hydrotrim/internal/app/features/health"
	"github.com/dalemusser/hydrotrim/internal/app/system/diseaseapi"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"github.com/dalemusser/hydrotrim/internal/testutil"
	"go.uber.org/zap"
)

type response struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Remote   map[string]string `json:"remote"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var out response
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, out
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), nil, zap.NewNop())

	rec, out := serve(t, handler)
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if out.Status != "ok" || out.Database != "connected" {
		t.Errorf("got %+v", out)
	}
}

func TestServe_CookieBackendRemoteHealthy(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	for _, d := range models.Diseases {
		api.Records[d.Path()] = nil
	}
	client, err := diseaseapi.New(api.URL, api.Client(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	rec, out := serve(t, health.NewHandler(nil, client, zap.NewNop()))
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if out.Status != "ok" || out.Database != "not configured" {
		t.Errorf("got %+v", out)
	}
	for _, d := range models.Diseases {
		if out.Remote[string(d)] != "ok" {
			t.Errorf("remote %s: got %q", d, out.Remote[string(d)])
		}
	}
}

func TestServe_RemoteFailureDegrades(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	api.Records[models.DiseaseDengue.Path()] = nil
	client, err := diseaseapi.New(api.URL, api.Client(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	rec, out := serve(t, health.NewHandler(nil, client, zap.NewNop()))
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if out.Status != "degraded" {
		t.Errorf("status: got %q, want degraded", out.Status)
	}
	if out.Remote["dengue"] != "ok" {
		t.Errorf("dengue: got %q", out.Remote["dengue"])
	}
	if out.Remote["cholera"] == "ok" || out.Remote["cholera"] == "" {
		t.Errorf("cholera should report an error, got %q", out.Remote["cholera"])
	}
}
