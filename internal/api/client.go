package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todo-remote/internal/logging"
	"github.com/idilsaglam/todo-remote/internal/model"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a response we are willing to read.
const maxBody = 4 << 20

// Client implements Service over HTTP for a fixed user.
type Client struct {
	base   *url.URL
	userID int
	http   *http.Client
	log    *log.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = logging.Component(l, "api") }
}

// NewClient returns a client for the service rooted at baseURL.
func NewClient(baseURL string, userID int, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("api url is empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:   u,
		userID: userID,
		http:   &http.Client{Timeout: DefaultTimeout},
		log:    logging.Component(nil, "api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// UserID returns the user identity every request is made for.
func (c *Client) UserID() int { return c.userID }

func (c *Client) List(ctx context.Context) ([]model.Todo, error) {
	q := url.Values{"userId": {strconv.Itoa(c.userID)}}
	body, err := c.do(ctx, http.MethodGet, "/todos", q, nil)
	if err != nil {
		return nil, err
	}
	if err := validateTodoList(body); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	var todos []model.Todo
	if err := json.Unmarshal(body, &todos); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

func (c *Client) Create(ctx context.Context, n model.NewTodo) (model.Todo, error) {
	if n.UserID == 0 {
		n.UserID = c.userID
	}
	body, err := c.do(ctx, http.MethodPost, "/todos", nil, n)
	if err != nil {
		return model.Todo{}, err
	}
	return decodeTodo("create todo", body)
}

func (c *Client) Update(ctx context.Context, t model.Todo) (model.Todo, error) {
	if t.ID <= 0 {
		return model.Todo{}, fmt.Errorf("update todo: invalid id %d", t.ID)
	}
	body, err := c.do(ctx, http.MethodPatch, "/todos/"+strconv.Itoa(t.ID), nil, t)
	if err != nil {
		return model.Todo{}, err
	}
	return decodeTodo("update todo", body)
}

func (c *Client) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("delete todo: invalid id %d", id)
	}
	_, err := c.do(ctx, http.MethodDelete, "/todos/"+strconv.Itoa(id), nil, nil)
	return err
}

func decodeTodo(op string, body []byte) (model.Todo, error) {
	if err := validateTodo(body); err != nil {
		return model.Todo{}, fmt.Errorf("%s: %w", op, err)
	}
	var t model.Todo
	if err := json.Unmarshal(body, &t); err != nil {
		return model.Todo{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// do performs one request and returns the response body of a 2xx answer.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, payload any) ([]byte, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "method", method, "path", path, "err", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	c.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}
	return body, nil
}
