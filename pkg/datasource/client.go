// Package datasource is a headless client of the salesdesk REST API. Client
// wraps the endpoints one call per request; View keeps the loaded list of
// one module together with its bulk selection and the last notice.
package datasource

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

	"github.com/salesdesk/backend/internal/domain/listview"
)

const (
	defaultTimeout = 30 * time.Second
	apiPrefix      = "/api/v1"
)

// APIError is a failed response of the REST service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("datasource: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("datasource: %s: %s", e.Code, e.Message)
}

// Client calls the REST service. It never retries and never caches.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a client for the service at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for an access token and keeps it for later
// requests.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return errors.New("datasource: login response carries no token")
	}
	c.token = out.AccessToken
	return nil
}

// List fetches the filtered records of kind in one request. The body may
// be a bare JSON array or an object whose "data" is the array.
func (c *Client) List(ctx context.Context, kind string, params Params) ([]Record, error) {
	resp, err := c.send(ctx, http.MethodGet, recordsPath(kind), params.values(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("datasource: read list body: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp.StatusCode, raw)
	}
	return decodeList(raw)
}

// Schema fetches the schema of kind.
func (c *Client) Schema(ctx context.Context, kind string) (*Schema, error) {
	var out Schema
	if err := c.do(ctx, http.MethodGet, recordsPath(kind)+"/schema", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a record.
func (c *Client) Create(ctx context.Context, kind string, fields map[string]any) (*WriteResult, error) {
	var out WriteResult
	if err := c.do(ctx, http.MethodPost, recordsPath(kind), nil, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the fields of record id.
func (c *Client) Update(ctx context.Context, kind, id string, fields map[string]any) (*WriteResult, error) {
	var out WriteResult
	if err := c.do(ctx, http.MethodPut, recordsPath(kind)+"/"+url.PathEscape(id), nil, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeStatus sets one quick-change field of record id.
func (c *Client) ChangeStatus(ctx context.Context, kind, id, field, value string) (*WriteResult, error) {
	var out WriteResult
	body := map[string]string{"field": field, "value": value}
	if err := c.do(ctx, http.MethodPut, recordsPath(kind)+"/"+url.PathEscape(id)+"/status", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes record id.
func (c *Client) Delete(ctx context.Context, kind, id string) error {
	return c.do(ctx, http.MethodDelete, recordsPath(kind)+"/"+url.PathEscape(id), nil, nil, nil)
}

// BulkDelete deletes ids. The request always carries the confirmation;
// callers decide whether to send it.
func (c *Client) BulkDelete(ctx context.Context, kind string, ids []string) (*BulkResult, error) {
	var out BulkResult
	body := map[string]any{"ids": ids, "confirmed": true}
	if err := c.do(ctx, http.MethodPost, recordsPath(kind)+"/bulk/delete", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Bulk applies an edit, status change or transfer to ids.
func (c *Client) Bulk(ctx context.Context, kind string, mode listview.BulkMode, ids []string, field, value string) (*BulkResult, error) {
	switch mode {
	case listview.BulkNone, listview.BulkDelete:
		return nil, fmt.Errorf("datasource: %s is not an update mode", mode)
	}
	var out BulkResult
	body := map[string]any{"ids": ids, "field": field, "value": value}
	if err := c.do(ctx, http.MethodPut, recordsPath(kind)+"/bulk/"+mode.String(), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InsertBatch inserts rows as one batch and returns the inserted count.
func (c *Client) InsertBatch(ctx context.Context, kind string, rows []map[string]any) (int, error) {
	var out struct {
		Inserted int `json:"inserted"`
	}
	if err := c.do(ctx, http.MethodPost, recordsPath(kind)+"/batch", nil, rows, &out); err != nil {
		return 0, err
	}
	return out.Inserted, nil
}

func recordsPath(kind string) string {
	return "/records/" + url.PathEscape(kind)
}

// do sends one request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("datasource: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("datasource: decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("datasource: decode data: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("datasource: encode body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("datasource: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("datasource: %s %s: %w", method, path, err)
	}
	return resp, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(status int, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		return &APIError{Status: status, Code: env.Error.Code, Message: env.Error.Message}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

func decodeList(raw []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("datasource: decode list: %w", err)
		}
		return records, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("datasource: decode list: %w", err)
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []Record{}, nil
	}
	if data[0] != '[' {
		return nil, errors.New("datasource: list data is not an array")
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("datasource: decode list: %w", err)
	}
	return records, nil
}
