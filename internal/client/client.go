// Package client talks to a taskify server. Client implements
// task.Repository, so the client-side state can run against it or against a
// local store interchangeably.
package client

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

	"taskify/internal/task"
)

// DefaultTimeout bounds a single round trip.
const DefaultTimeout = 5 * time.Second

const maxErrorBytes = 64 << 10

type Client struct {
	base *url.URL
	http *http.Client
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

// StatusError is a non-2xx response. 400 and 404 unwrap to task.ErrInvalid
// and task.ErrNotFound.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusBadRequest:
		return task.ErrInvalid
	case http.StatusNotFound:
		return task.ErrNotFound
	default:
		return nil
	}
}

func (c *Client) List(ctx context.Context) ([]task.Task, error) {
	var out []task.Task
	if err := c.do(ctx, http.MethodGet, "tasks", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []task.Task{}
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	var out task.Task
	if err := c.do(ctx, http.MethodPost, "tasks", d, &out); err != nil {
		return task.Task{}, err
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, id int64, p task.Patch) error {
	return c.do(ctx, http.MethodPut, taskPath(id), p, nil)
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string { return "tasks/" + strconv.FormatInt(id, 10) }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	endpoint := c.base.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	// the list is unpaginated, so success bodies are streamed without a cap
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, endpoint, err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var eb struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
		return eb.Error
	}
	return strings.TrimSpace(string(raw))
}
