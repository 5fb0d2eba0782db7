package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultBaseURL = "http://localhost:5678/webhook"

// APIService makes raw HTTP requests against the automation service's webhook base URL.
type APIService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the webhook base URL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// WithAPIKey sets the key sent in the X-API-Key header of every request.
func (a *APIService) WithAPIKey(key string) *APIService {
	a.apiKey = key
	return a
}

// BaseURL returns the base URL requests are resolved against.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	Path       string
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the response carries a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the response body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", r.Path, err)
	}
	return nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, bytes.NewReader(data))
}

// PostJSON marshals v and posts it to path.
func (a *APIService) PostJSON(ctx context.Context, path string, v any) (*APIResponse, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return a.Post(ctx, path, data)
}

func (a *APIService) do(ctx context.Context, method, path string, body io.Reader) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.apiKey != "" {
		req.Header.Set("X-API-Key", a.apiKey)
	}

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
		Path:       path,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
