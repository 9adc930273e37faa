// Package client talks to the bizdir REST API.
package client

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
	"time"

	"github.com/nisimpson/bizdir"
)

// DefaultBaseURL is where the API listens by default.
const DefaultBaseURL = "http://localhost:9000"

// APIError is returned for any non-200 response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status of err if it is an *APIError, otherwise 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client is a bizdir API client. The zero value is not usable; use New.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a Client for baseURL. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type createResponse struct {
	Success  string          `json:"success"`
	Business bizdir.Business `json:"business"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// List fetches every business.
func (c *Client) List(ctx context.Context) ([]bizdir.Business, error) {
	var result bizdir.ScanResult
	if err := c.do(ctx, http.MethodGet, "/api/", nil, &result); err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	if result.Items == nil {
		result.Items = []bizdir.Business{}
	}
	return result.Items, nil
}

// Create adds a business and returns the stored record.
func (c *Client) Create(ctx context.Context, in bizdir.CreateInput) (bizdir.Business, error) {
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/api/", in, &resp); err != nil {
		return bizdir.Business{}, fmt.Errorf("failed to create business: %w", err)
	}
	return resp.Business, nil
}

// Delete removes the business with busID.
func (c *Client) Delete(ctx context.Context, busID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/"+url.PathEscape(busID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete business %s: %w", busID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		var e errorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
