package auth_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/hydrotrim/internal/app/system/auth"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

var csrfKey = []byte("0123456789abcdef0123456789abcdef")

// csrfServer answers GETs with the current token and POSTs with "ok".
func csrfServer(t *testing.T) http.Handler {
	t.Helper()
	mw, err := auth.CSRF(csrfKey, false, zap.NewNop())
	if err != nil {
		t.Fatalf("CSRF failed: %v", err)
	}
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(csrf.Token(r)))
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
}

// issueToken performs a GET and returns the token plus the cookies set.
func issueToken(t *testing.T, h http.Handler) (string, []*http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET: got %d", rec.Code)
	}
	tok := rec.Body.String()
	if tok == "" {
		t.Fatal("expected a token on GET")
	}
	return tok, rec.Result().Cookies()
}

func postForm(h http.Handler, form url.Values, cookies []*http.Cookie, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/logout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if header != "" {
		req.Header.Set("X-CSRF-Token", header)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCSRF_RejectsPostWithoutToken(t *testing.T) {
	h := csrfServer(t)
	_, cookies := issueToken(t, h)

	rec := postForm(h, url.Values{"view": {"v1"}}, cookies, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestCSRF_RejectsCrossSitePost(t *testing.T) {
	h := csrfServer(t)

	// A forged form carries neither the cookie nor a valid token.
	rec := postForm(h, url.Values{auth.CSRFFieldName: {"forged"}}, nil, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestCSRF_AcceptsFormField(t *testing.T) {
	h := csrfServer(t)
	tok, cookies := issueToken(t, h)

	rec := postForm(h, url.Values{auth.CSRFFieldName: {tok}, "view": {"v1"}}, cookies, "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("expected 200 ok, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestCSRF_AcceptsHTMXHeader(t *testing.T) {
	h := csrfServer(t)
	tok, cookies := issueToken(t, h)

	rec := postForm(h, url.Values{}, cookies, tok)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestCSRF_RequiresThirtyTwoByteKey(t *testing.T) {
	if _, err := auth.CSRF([]byte("short"), false, zap.NewNop()); err == nil {
		t.Error("expected error for short key")
	}
}
