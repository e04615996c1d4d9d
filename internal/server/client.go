package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/janekbaraniewski/wfdash/internal/codec"
	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/janekbaraniewski/wfdash/internal/projection"
	"github.com/janekbaraniewski/wfdash/internal/version"
)

type Client struct {
	BaseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL != "" && !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		BaseURL: baseURL,
		http:    &http.Client{Timeout: 12 * time.Second},
	}
}

// RemoteError is a non-2xx answer from the server. It unwraps to the
// matching core sentinel so callers can use errors.Is.
type RemoteError struct {
	Status int
	APIError
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("wfdash server: %s (HTTP %d)", e.Message, e.Status)
}

func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case "busy":
		return core.ErrBusy
	case "store_unavailable":
		return core.ErrStoreUnavailable
	case "source_unavailable":
		return core.ErrSourceUnavailable
	default:
		return nil
	}
}

func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &out)
	return out, err
}

// View fetches the projected view. Empty bounds are sent as open bounds;
// useDefault asks the server for its configured range instead.
func (c *Client) View(ctx context.Context, r projection.Range, useDefault bool) (projection.View, error) {
	path := "/" + APIVersion + "/view"
	if !useDefault {
		q := url.Values{}
		q.Set("start", r.Start.ISO())
		q.Set("end", r.End.ISO())
		path += "?" + q.Encode()
	}
	var out projection.View
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Grid(ctx context.Context) (GridResponse, error) {
	var out GridResponse
	err := c.do(ctx, http.MethodGet, "/"+APIVersion+"/grid", nil, &out)
	return out, err
}

func (c *Client) SaveGrid(ctx context.Context, rows []codec.GridRow, strict bool) (SaveResponse, error) {
	if rows == nil {
		rows = []codec.GridRow{}
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return SaveResponse{}, fmt.Errorf("marshal grid: %w", err)
	}
	path := "/" + APIVersion + "/grid"
	if strict {
		path += "?strict=true"
	}
	var out SaveResponse
	err = c.do(ctx, http.MethodPut, path, payload, &out)
	return out, err
}

func (c *Client) Seed(ctx context.Context) (SeedResponse, error) {
	var out SeedResponse
	err := c.do(ctx, http.MethodPost, "/"+APIVersion+"/seed", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	if c == nil || c.BaseURL == "" {
		return fmt.Errorf("wfdash client is not configured")
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		remote := &RemoteError{Status: resp.StatusCode}
		var env ErrorEnvelope
		if err := json.Unmarshal(data, &env); err == nil && env.Error.Message != "" {
			remote.APIError = env.Error
		} else {
			remote.Message = strings.TrimSpace(string(data))
		}
		return remote
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
