// Package remote is the HTTP+JSON adapter against a Vanta-compatible REST API.
package remote

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

	"vanta/internal/core"
	"vanta/internal/store"
)

const maxBody = 8 << 20

// Client carries the base URL and bearer credential shared by every resource.
type Client struct {
	base  string
	token string
	http  *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient builds a client for baseURL, e.g. "http://localhost:8081/api".
// An empty token sends no Authorization header.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Resource adapts one REST collection to store.Adapter.
type Resource[T core.Record[T]] struct {
	c    *Client
	name string
}

func NewResource[T core.Record[T]](c *Client, schema core.Schema[T]) *Resource[T] {
	return &Resource[T]{c: c, name: schema.Resource}
}

func (r *Resource[T]) List(ctx context.Context, opts store.ListOptions) ([]T, error) {
	q := url.Values{}
	if opts.Skip > 0 {
		q.Set("skip", strconv.Itoa(opts.Skip))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	body, err := r.c.do(ctx, http.MethodGet, r.path(0), q, nil, r.name, 0)
	if err != nil {
		return nil, err
	}
	recs, err := decodeList[T](body, r.name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.name, err)
	}
	for i, rec := range recs {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("list %s: record %d: %w", r.name, i, err)
		}
	}
	return recs, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	return r.one(ctx, http.MethodGet, id, nil)
}

func (r *Resource[T]) Create(ctx context.Context, draft T) (T, error) {
	return r.one(ctx, http.MethodPost, 0, &draft)
}

func (r *Resource[T]) Update(ctx context.Context, id int64, rec T) (T, error) {
	return r.one(ctx, http.MethodPut, id, &rec)
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.path(id), nil, nil, r.name, id)
	return err
}

func (r *Resource[T]) one(ctx context.Context, method string, id int64, rec *T) (T, error) {
	var zero T
	var payload []byte
	if rec != nil {
		// Identity and timestamps belong to the server.
		b, err := json.Marshal((*rec).WithID(0).WithTimestamps(time.Time{}, time.Time{}))
		if err != nil {
			return zero, fmt.Errorf("encode %s: %w", r.name, err)
		}
		payload = b
	}
	body, err := r.c.do(ctx, method, r.path(id), nil, payload, r.name, id)
	if err != nil {
		return zero, err
	}
	out, err := core.DecodeRecord[T](body)
	if err != nil {
		return zero, fmt.Errorf("%s %s response: %w", strings.ToLower(method), r.name, err)
	}
	if out.RecordID() == 0 {
		return zero, &core.ValidationError{Field: "id", Reason: "missing from response"}
	}
	return out, nil
}

func (r *Resource[T]) path(id int64) string {
	if id == 0 {
		return "/" + r.name
	}
	return "/" + r.name + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, payload []byte, resource string, id int64) ([]byte, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %v", method, path, core.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w: %v", method, path, core.ErrUnavailable, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, statusError(resp.StatusCode, body, resource, id)
}

// statusError maps an HTTP failure onto the core taxonomy. A kind in the
// error envelope wins over the status code.
func statusError(status int, body []byte, resource string, id int64) error {
	env := serverMessage(body)
	msg := env.message
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch env.Kind {
	case core.KindValidation:
		reason := strings.TrimPrefix(msg, core.ErrValidation.Error()+": ")
		if env.Field != "" {
			reason = strings.TrimPrefix(reason, env.Field+" ")
		}
		return &core.ValidationError{Field: env.Field, Reason: reason}
	case core.KindNotFound:
		if id != 0 {
			return core.NotFound(resource, id)
		}
		return core.KindError(env.Kind, msg)
	case core.KindAuth, core.KindUnavailable:
		return core.KindError(env.Kind, msg)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, core.ErrAuth)
	case status == http.StatusNotFound:
		if id != 0 {
			return core.NotFound(resource, id)
		}
		return fmt.Errorf("%s: %w", msg, core.ErrNotFound)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return &core.ValidationError{Reason: msg}
	case status >= 500:
		return fmt.Errorf("server returned %d: %s: %w", status, msg, core.ErrUnavailable)
	default:
		return fmt.Errorf("unexpected status %d: %s", status, msg)
	}
}

// errorEnvelope is {"error","kind","field"} or FastAPI-style {"detail"}.
type errorEnvelope struct {
	Error   string          `json:"error"`
	Kind    string          `json:"kind"`
	Field   string          `json:"field"`
	Detail  json.RawMessage `json:"detail"`
	message string
}

func serverMessage(body []byte) errorEnvelope {
	var env errorEnvelope
	if json.Unmarshal(body, &env) != nil {
		return errorEnvelope{}
	}
	var s string
	switch {
	case env.Error != "":
		env.message = env.Error
	case json.Unmarshal(env.Detail, &s) == nil:
		env.message = s
	case len(env.Detail) > 0:
		env.message = string(env.Detail)
	}
	return env
}

// decodeList accepts a bare array or a {"<resource>": [...], "total": n} envelope.
func decodeList[T any](body []byte, resource string) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &core.ValidationError{Reason: "empty list response"}
	}
	if trimmed[0] == '[' {
		return core.DecodeRecords[T](trimmed)
	}

	var env map[string]json.RawMessage
	if err := core.DecodeShape(trimmed, &env); err != nil {
		return nil, err
	}
	items, ok := env[resource]
	if !ok {
		return nil, &core.ValidationError{Field: resource, Reason: "missing from list envelope"}
	}
	for k := range env {
		if k != resource && k != "total" {
			return nil, &core.ValidationError{Field: k, Reason: "is not a known field"}
		}
	}
	recs, err := core.DecodeRecords[T](items)
	if err != nil {
		return nil, err
	}
	if raw, ok := env["total"]; ok {
		var total int
		if err := json.Unmarshal(raw, &total); err != nil {
			return nil, &core.ValidationError{Field: "total", Reason: "must be an integer"}
		}
	}
	return recs, nil
}
