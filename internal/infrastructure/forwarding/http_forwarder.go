// Package forwarding delivers records to the secondary backend.
package forwarding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	recordapp "github.com/salesdesk/backend/internal/application/record"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/infrastructure/config"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// maxErrorBody bounds how much of a failed response is kept for the error.
const maxErrorBody = 1 << 10

// ErrForwardRejected is returned when the secondary backend answers with a
// non-2xx status.
var ErrForwardRejected = errors.New("forward rejected by secondary backend")

// HTTPForwarder POSTs records as JSON to <URL>/<kind>.
type HTTPForwarder struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPForwarder creates a forwarder from configuration
func NewHTTPForwarder(cfg config.ForwardConfig) (*HTTPForwarder, error) {
	if cfg.URL == "" {
		return nil, errors.New("forward url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPForwarder{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Forward sends rec to the secondary backend. It does not retry.
func (f *HTTPForwarder) Forward(ctx context.Context, rec *record.Record) error {
	payload := rec.Fields.Clone()
	payload["id"] = rec.ID.String()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("forward: failed to marshal record: %w", err)
	}

	url := f.baseURL + "/" + string(rec.Kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("forward: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	if id := logger.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("forward: %w", err)
	}
	defer resp.Body.Close()

	logger.L(ctx).Debug("Record forwarded",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: HTTP %d: %s", ErrForwardRejected, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Ensure HTTPForwarder implements Forwarder
var _ recordapp.Forwarder = (*HTTPForwarder)(nil)
