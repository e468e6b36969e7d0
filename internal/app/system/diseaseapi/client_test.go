package diseaseapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/hydrotrim/internal/app/system/diseaseapi"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"github.com/dalemusser/hydrotrim/internal/testutil"
	"go.uber.org/zap"
)

func newClient(t *testing.T, baseURL string) *diseaseapi.Client {
	t.Helper()
	c, err := diseaseapi.New(baseURL, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := diseaseapi.New("/api", nil, zap.NewNop()); err == nil {
		t.Error("expected error for relative base url")
	}
	if _, err := diseaseapi.New("ftp://example.com", nil, zap.NewNop()); err == nil {
		t.Error("expected error for non-http scheme")
	}
}

func TestFetchRecords_PreservesOrder(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	api.Records["/api/dengue"] = []map[string]any{
		testutil.Record("1", "1", "Kerala", "10", "20", "30", "40", "5"),
		testutil.Record("2", "2", "Goa", "1", "2", "3", "4", "0"),
		testutil.Record("3", "3", "Assam"),
	}
	c := newClient(t, api.URL)

	recs, err := c.FetchRecords(context.Background(), models.DiseaseDengue)
	if err != nil {
		t.Fatalf("FetchRecords failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i, want := range []string{"Kerala", "Goa", "Assam"} {
		if recs[i].RegionName != want {
			t.Errorf("recs[%d].RegionName: got %q, want %q", i, recs[i].RegionName, want)
		}
	}
	if recs[0].YearCounts[4].Value != "5" {
		t.Errorf("provisional 2025 value: got %q, want %q", recs[0].YearCounts[4].Value, "5")
	}
	if recs[2].YearCounts[0].Value != "" {
		t.Errorf("missing year should be blank, got %q", recs[2].YearCounts[0].Value)
	}
}

func TestFetchRecords_UsesDiseasePaths(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	for _, d := range []models.Disease{models.DiseaseCholera, models.DiseaseTyphoid, models.DiseaseDengue} {
		if _, err := c.FetchRecords(context.Background(), d); err != nil {
			t.Fatalf("FetchRecords(%s) failed: %v", d, err)
		}
	}

	want := []string{"/api/cholera/all", "/api/typhoid", "/api/dengue"}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("request %d path: got %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestFetchRecords_SanitizesText(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	api.Records["/api/typhoid"] = []map[string]any{
		testutil.Record("1", "1", "<i>Bihar</i><script>x()</script>", "<b>9</b>"),
	}
	c := newClient(t, api.URL)

	recs, err := c.FetchRecords(context.Background(), models.DiseaseTyphoid)
	if err != nil {
		t.Fatalf("FetchRecords failed: %v", err)
	}
	if recs[0].RegionName != "Bihar" {
		t.Errorf("RegionName: got %q, want %q", recs[0].RegionName, "Bihar")
	}
	if recs[0].YearCounts[0].Value != "9" {
		t.Errorf("2021 value: got %q, want %q", recs[0].YearCounts[0].Value, "9")
	}
}

func TestFetchRecords_StatusError(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	c := newClient(t, api.URL)

	_, err := c.FetchRecords(context.Background(), models.DiseaseCholera)
	if !errors.Is(err, diseaseapi.ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	var se *diseaseapi.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Errorf("expected StatusError 500, got %v", err)
	}
}

func TestFetchRecords_UnknownDisease(t *testing.T) {
	c := newClient(t, "http://localhost:1")
	_, err := c.FetchRecords(context.Background(), models.Disease("malaria"))
	if !errors.Is(err, diseaseapi.ErrUnknownDisease) {
		t.Errorf("expected ErrUnknownDisease, got %v", err)
	}
}

func TestFetchRecords_CoalescesConcurrentCalls(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(`[{"_id":"1","state_u_t_":"Delhi"}]`))
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.FetchRecords(context.Background(), models.DiseaseDengue)
			errs <- err
		}()
	}

	// Give the callers time to join the in-flight request.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("FetchRecords failed: %v", err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("expected 1 upstream request, got %d", n)
	}
}

func TestFetchRecords_CallerCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	defer close(release)
	c := newClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchRecords(ctx, models.DiseaseDengue)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLogout_SendsBearerToken(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	c := newClient(t, api.URL)

	if err := c.Logout(context.Background(), "tok-xyz"); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if api.LogoutCalls() != 1 {
		t.Errorf("expected 1 logout call, got %d", api.LogoutCalls())
	}
	if got := api.LastAuthorization(); got != "Bearer tok-xyz" {
		t.Errorf("Authorization: got %q, want %q", got, "Bearer tok-xyz")
	}
}

func TestLogout_ServerError(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	api.LogoutStatus = http.StatusInternalServerError
	c := newClient(t, api.URL)

	if err := c.Logout(context.Background(), "tok"); !errors.Is(err, diseaseapi.ErrStatus) {
		t.Errorf("expected ErrStatus, got %v", err)
	}
}

func TestLogout_NoToken(t *testing.T) {
	c := newClient(t, "http://localhost:1")
	if err := c.Logout(context.Background(), ""); !errors.Is(err, diseaseapi.ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	c := newClient(t, api.URL)

	if _, err := c.Login(context.Background(), "a@b.c", "pw"); !errors.Is(err, diseaseapi.ErrStatus) {
		t.Errorf("expected ErrStatus without a configured token, got %v", err)
	}

	api.LoginToken = "issued"
	tok, err := c.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if tok != "issued" {
		t.Errorf("token: got %q, want %q", tok, "issued")
	}
}

func TestProbe_ReportsPerDisease(t *testing.T) {
	api := testutil.NewRemoteAPI(t)
	api.Records["/api/dengue"] = nil
	api.Records["/api/typhoid"] = []map[string]any{}
	c := newClient(t, api.URL)

	res := c.Probe(context.Background())

	if res[models.DiseaseDengue] != nil || res[models.DiseaseTyphoid] != nil {
		t.Errorf("healthy endpoints reported errors: %v", res)
	}
	if res[models.DiseaseCholera] == nil {
		t.Error("expected cholera probe to fail")
	}
}
