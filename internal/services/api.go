// API client for raw JSON requests to the watchlist backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/shared"
	"golang.org/x/time/rate"
)

const defaultBaseURL = shared.DefaultDevelopmentURL

// APIService provides methods for making raw HTTP requests to the backend.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// APIOption configures an [APIService].
type APIOption func(*APIService)

// WithRateLimit throttles requests to rps requests per second. Non-positive values disable throttling.
func WithRateLimit(rps float64) APIOption {
	return func(a *APIService) {
		if rps > 0 {
			a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) APIOption {
	return func(a *APIService) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAPIService creates a new API service instance for the backend.
func NewAPIService(baseURL string, client *http.Client, opts ...APIOption) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	a := &APIService{
		baseURL:    baseURL,
		httpClient: client,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewAPIServiceForBackend creates an [APIService] from a resolved [shared.Backend].
func NewAPIServiceForBackend(b shared.Backend, logger *log.Logger) *APIService {
	client := &http.Client{Timeout: b.Timeout}
	return NewAPIService(b.BaseURL, client, WithRateLimit(b.RateLimit), WithLogger(logger))
}

// BaseURL returns the backend address requests are sent to.
func (a *APIService) BaseURL() string { return a.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", r.StatusCode, err)
	}
	return nil
}

// Do sends a request with an optional body. A []byte body is sent as is; any other non-nil value is JSON encoded.
func (a *APIService) Do(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
	}

	a.logger.Debug("request", "method", method, "path", path, "request_id", requestID)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	a.logger.Debug("response", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)
	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON body and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, body any) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with the given JSON body and returns the raw response.
func (a *APIService) Put(ctx context.Context, path string, body any) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request and returns the raw response.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodDelete, path, nil)
}
