// Package diseaseapi is the client for the remote data service that serves
// per-disease statistics and the auth endpoints.
package diseaseapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/hydrotrim/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hydrotrim/internal/app/system/timeouts"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	logoutPath = "/api/auth/logout"
	loginPath  = "/api/auth/login"

	// maxBody caps how much of a response is read.
	maxBody = 8 << 20
)

var (
	// ErrStatus matches any non-2xx response (see StatusError).
	ErrStatus = errors.New("unexpected response status")

	// ErrUnknownDisease is returned for tags outside models.Diseases.
	ErrUnknownDisease = errors.New("unknown disease")

	// ErrNoToken is returned by Logout when there is no token to revoke.
	ErrNoToken = errors.New("no auth token")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Path, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Client talks to the remote data service. It is safe for concurrent use.
type Client struct {
	base *url.URL
	HTTP *http.Client
	Log  *zap.Logger

	// fetches coalesces concurrent listings of the same disease.
	fetches singleflight.Group
}

// New builds a Client for baseURL (scheme and host, optional path prefix).
// A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be an absolute http(s) URL", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: u, HTTP: httpClient, Log: logger}, nil
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// FetchRecords lists the records for d in the order the service returns them.
//
// Concurrent calls for the same disease share one request. The shared
// request is bounded by timeouts.Fetch rather than by any single caller's
// context; a caller whose ctx ends stops waiting and gets ctx.Err().
// The returned records must be treated as read-only.
func (c *Client) FetchRecords(ctx context.Context, d models.Disease) ([]models.DiseaseRecord, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDisease, d)
	}

	ch := c.fetches.DoChan(string(d), func() (interface{}, error) {
		fctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Fetch(), c.Log, "fetch "+string(d)+" records")
		defer cancel()
		return c.fetch(fctx, d)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.DiseaseRecord), nil
	}
}

func (c *Client) fetch(ctx context.Context, d models.Disease) ([]models.DiseaseRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(d.Path()), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s records: %w", d, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Path: d.Path()}
	}

	var recs []models.DiseaseRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode %s records: %w", d, err)
	}

	for i := range recs {
		sanitize(&recs[i])
	}

	c.Log.Debug("fetched disease records",
		zap.String("disease", string(d)),
		zap.Int("count", len(recs)))

	return recs, nil
}

func sanitize(rec *models.DiseaseRecord) {
	rec.ID = htmlsanitize.Text(rec.ID)
	rec.SerialNo = htmlsanitize.Text(rec.SerialNo)
	rec.RegionName = htmlsanitize.Text(rec.RegionName)
	for i := range rec.YearCounts {
		rec.YearCounts[i].Value = htmlsanitize.Text(rec.YearCounts[i].Value)
	}
}

// Logout revokes token on the remote service. The request carries the token
// as a bearer credential and an empty body; the response body is ignored.
func (c *Client) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}

	// oauth2 picks the base transport up from the context.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.HTTP)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(logoutPath), http.NoBody)
	if err != nil {
		return err
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("remote logout: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Path: logoutPath}
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for an auth token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(loginPath), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("remote login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode, Path: loginPath}
	}

	var out loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if out.Token == "" {
		return "", errors.New("remote login: empty token")
	}
	return out.Token, nil
}

// Probe lists every disease in parallel and returns the per-disease errors
// (nil entries for healthy endpoints). The first failure does not stop the
// other probes.
func (c *Client) Probe(ctx context.Context) map[models.Disease]error {
	results := make([]error, len(models.Diseases))

	var g errgroup.Group
	for i, d := range models.Diseases {
		g.Go(func() error {
			_, err := c.FetchRecords(ctx, d)
			results[i] = err
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[models.Disease]error, len(models.Diseases))
	for i, d := range models.Diseases {
		out[d] = results[i]
	}
	return out
}
