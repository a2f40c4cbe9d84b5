package eventctl

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

	"eventgate/pkg/types"
)

// APIError is a non-2xx response from the daemon.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eventgated returned %d: %s", e.Status, e.Message)
}

// Client talks to the eventgated HTTP API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewClient returns a client for server with a sane timeout.
func NewClient(server, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(server, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Publish(ctx context.Context, req types.PublishRequest) (types.PublishResponse, error) {
	var resp types.PublishResponse
	body, err := json.Marshal(req)
	if err != nil {
		return resp, err
	}
	err = c.do(ctx, http.MethodPost, "/events", body, &resp)
	return resp, err
}

func (c *Client) EventTypes(ctx context.Context) ([]types.EventType, error) {
	var resp types.EventTypesResponse
	err := c.do(ctx, http.MethodGet, "/event-types", nil, &resp)
	return resp.EventTypes, err
}

func (c *Client) Dispatches(ctx context.Context, limit int) ([]types.DispatchRecord, error) {
	var resp types.DispatchesResponse
	path := "/dispatches"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return resp.Dispatches, err
}

func (c *Client) Status(ctx context.Context) (types.StatusResponse, error) {
	var resp types.StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode/100 != 2 {
		var e types.ErrorResponse
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			return &APIError{Status: res.StatusCode, Message: e.Error}
		}
		return &APIError{Status: res.StatusCode, Message: strings.TrimSpace(string(b))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
