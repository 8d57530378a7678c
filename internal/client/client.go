// Package client is the thin HTTP wrapper the pages use to reach the REST
// API.
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

	"golang.org/x/sync/singleflight"

	"haushalt/internal/core"
)

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// TransportError means the API could not be reached or its answer could not
// be read.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Resource is an entry as the API represents it.
type Resource struct {
	ID      string     `json:"_id"`
	Name    string     `json:"name"`
	Details string     `json:"details"`
	Amount  string     `json:"amount"`
	Prio    string     `json:"prio"`
	Links   core.Links `json:"_links,omitempty"`
}

// Entry drops the links.
func (r Resource) Entry() core.Entry {
	return core.Entry{ID: r.ID, Name: r.Name, Details: r.Details, Amount: r.Amount, Prio: r.Prio}
}

// Client talks to one API base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	gets       singleflight.Group
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	// Timeout bounds each request. Zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: hc,
	}
}

// Fetch sends body as JSON and decodes the response into out. Either may
// be nil. Concurrent identical GETs share one round trip, and a caller
// whose ctx is cancelled leaves the others waiting on it unaffected.
func (c *Client) Fetch(ctx context.Context, method, path string, body, out any) error {
	var (
		data []byte
		err  error
	)
	if method == http.MethodGet && body == nil {
		// The shared round trip outlives any one caller's cancellation;
		// each caller still stops waiting when its own ctx ends.
		shared := context.WithoutCancel(ctx)
		ch := c.gets.DoChan(path, func() (any, error) {
			return c.roundTrip(shared, method, path, nil)
		})
		select {
		case res := <-ch:
			err = res.Err
			if err == nil {
				data = res.Val.([]byte)
			}
		case <-ctx.Done():
			return &TransportError{Method: method, URL: c.baseURL + path, Err: ctx.Err()}
		}
	} else {
		data, err = c.roundTrip(ctx, method, path, body)
	}
	if err != nil {
		return err
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Method: method, URL: c.baseURL + path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any) ([]byte, error) {
	target := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Code != "" {
			apiErr.Code, apiErr.Message = envelope.Code, envelope.Message
		}
		return nil, apiErr
	}
	return data, nil
}

// inputBody is the JSON body of create and replace calls.
func inputBody(in core.Input) map[string]string {
	return map[string]string{
		core.FieldName:    in.Name,
		core.FieldDetails: in.Details,
		core.FieldAmount:  in.Amount,
		core.FieldPrio:    in.Prio,
	}
}

func entryPath(kind core.Kind, id string) string {
	return kind.Prefix() + "/" + url.PathEscape(id)
}

// List returns every entry of kind matching the equality filter.
func (c *Client) List(ctx context.Context, kind core.Kind, filter map[string]string) ([]Resource, error) {
	path := kind.Prefix()
	if len(filter) > 0 {
		q := url.Values{}
		for k, v := range filter {
			q.Set(k, v)
		}
		path += "?" + q.Encode()
	}

	var out []Resource
	if err := c.Fetch(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, kind core.Kind, id string) (Resource, error) {
	var out Resource
	err := c.Fetch(ctx, http.MethodGet, entryPath(kind, id), nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, kind core.Kind, in core.Input) (Resource, error) {
	var out Resource
	err := c.Fetch(ctx, http.MethodPost, kind.Prefix(), inputBody(in), &out)
	return out, err
}

// Replace sends a PUT. Empty fields of in leave the stored values alone.
func (c *Client) Replace(ctx context.Context, kind core.Kind, id string, in core.Input) (Resource, error) {
	var out Resource
	err := c.Fetch(ctx, http.MethodPut, entryPath(kind, id), inputBody(in), &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, kind core.Kind, id string) error {
	return c.Fetch(ctx, http.MethodDelete, entryPath(kind, id), nil, nil)
}
