// Package decisionapi is a client for the decision analysis service: stage 1
// (/analyze) turns a scenario into a framework, stage 2 (/evaluate) scores
// the framework against the user's answers.
package decisionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/decision-cli/internal/resilience"
)

// DefaultBaseURL is where the service listens in local development.
const DefaultBaseURL = "http://127.0.0.1:5000/api"

// Client calls the decision analysis service.
type Client interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)
	Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error)
	TestConnection(ctx context.Context) (*ConnectionStatus, error)
}

// APIError is a non-2xx response from the service.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("decisionapi: %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

// WithGuard routes every call through a rate limiter, breaker and retry
// policy.
func WithGuard(g *resilience.Guard) Option {
	return func(c *httpClient) {
		c.guard = g
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	guard   *resilience.Guard
}

// NewClient creates a decision service client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: DefaultBaseURL,
		http: &http.Client{
			Timeout: 90 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	return resilience.Call(ctx, c.guard, "analyze", func(ctx context.Context) (*AnalyzeResponse, error) {
		var out AnalyzeResponse
		if err := c.do(ctx, "analyze", http.MethodPost, "/analyze", req, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

func (c *httpClient) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	return resilience.Call(ctx, c.guard, "evaluate", func(ctx context.Context) (*EvaluateResponse, error) {
		var out EvaluateResponse
		if err := c.do(ctx, "evaluate", http.MethodPost, "/evaluate", req, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// TestConnection bypasses the guard so a probe always reaches the service.
func (c *httpClient) TestConnection(ctx context.Context) (*ConnectionStatus, error) {
	var out ConnectionStatus
	if err := c.do(ctx, "test", http.MethodGet, "/test", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return eris.Wrapf(err, "decisionapi: %s: marshal request", op)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return eris.Wrapf(err, "decisionapi: %s: create request", op)
	}
	httpReq.Header.Set("Accept", "application/json")
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrapf(err, "decisionapi: %s: send request", op)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "decisionapi: %s: read response", op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(apiErr, resp.StatusCode)
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrapf(err, "decisionapi: %s: unmarshal response", op)
	}
	return nil
}
