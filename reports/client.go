// Package reports talks to the SkyWatch reports backend over REST.
package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"skywatch/api"

	"github.com/apex/log"
	"golang.org/x/time/rate"
)

const contentType = "application/json"

// Client handles communication with the reports backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request. Zero keeps requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d, Transport: c.httpClient.Transport}
		}
	}
}

func WithRetry(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p.normalized() }
}

// WithRateLimit throttles outgoing requests to r per second.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		if r > 0 {
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(r), burst)
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		retry:      NoRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListReports fetches up to limit most recent reports.
func (c *Client) ListReports(ctx context.Context, limit int) ([]api.Report, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	u := fmt.Sprintf("%s%s?%s", c.baseURL, api.ReportsEndpoint, q.Encode())

	body, err := c.do(ctx, http.MethodGet, u, nil, true)
	if err != nil {
		return nil, err
	}
	reports := []api.Report{}
	if err := json.Unmarshal(body, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}
	log.WithField("count", len(reports)).Debug("reports loaded")
	return reports, nil
}

// CreateReport posts a new report and returns the stored record.
func (c *Client) CreateReport(ctx context.Context, args api.ReportArgs) (*api.Report, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, c.baseURL+api.ReportsEndpoint, payload, c.retry.RetryCreate)
	if err != nil {
		return nil, err
	}
	var created api.Report
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &created); err != nil {
			log.Warnf("Created report but could not decode the response: %v", err)
		}
	}
	return &created, nil
}

// Health checks that the backend answers {"status": "ok"}.
func (c *Client) Health(ctx context.Context) error {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+api.HealthEndpoint, nil, true)
	if err != nil {
		return err
	}
	var hr api.HealthResponse
	if err := json.Unmarshal(body, &hr); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}
	if hr.Status != "ok" {
		return fmt.Errorf("backend reports status %q", hr.Status)
	}
	return nil
}

// do runs one request under the retry policy and returns the body of the
// first 2xx response.
func (c *Client) do(ctx context.Context, method, u string, payload []byte, retryable bool) ([]byte, error) {
	attempts := 1
	if retryable {
		attempts = c.retry.Attempts
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := c.retry.backoff(attempt - 1)
			log.Warnf("%s %s failed (%v), retrying in %v", method, u, lastErr, wait)
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
		body, err := c.once(ctx, method, u, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !shouldRetry(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call reports backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
