package httpclient

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

	"go.uber.org/zap"

	apperrors "ordersconsole/internal/errors"
)

const maxErrorBody = 64 << 10

// Transport is the single HTTP client shared by every resource-access module.
type Transport struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Transport {
	return &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (t *Transport) BaseURL() string {
	return t.baseURL
}

func (t *Transport) Get(ctx context.Context, path string, query url.Values, out any) error {
	return t.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (t *Transport) Post(ctx context.Context, path string, body, out any) error {
	return t.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (t *Transport) Put(ctx context.Context, path string, body, out any) error {
	return t.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (t *Transport) Patch(ctx context.Context, path string, query url.Values, out any) error {
	return t.Do(ctx, http.MethodPatch, path, query, nil, out)
}

func (t *Transport) Delete(ctx context.Context, path string) error {
	return t.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do issues exactly one request. Non-2xx answers become *errors.BackendError,
// everything else that goes wrong becomes *errors.TransportError.
func (t *Transport) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := t.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewTransportError(method, target, fmt.Errorf("encoding request body: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return apperrors.NewTransportError(method, target, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.Error(err),
		)
		return apperrors.NewTransportError(method, target, err)
	}
	defer resp.Body.Close()

	t.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		t.logger.Warn("backend returned error status",
			zap.String("method", method),
			zap.String("url", target),
			zap.Int("status", resp.StatusCode),
		)
		return apperrors.NewBackendError(resp.StatusCode, backendMessage(raw), string(raw))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewTransportError(method, target, fmt.Errorf("reading response body: %w", err))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	// Some endpoints answer text/plain; keep it when a string was asked for.
	if s, ok := out.(*string); ok && !json.Valid(raw) {
		*s = string(raw)
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewTransportError(method, target, fmt.Errorf("decoding response body: %w", err))
	}
	return nil
}

// backendMessage pulls the optional "message" field out of an error body.
func backendMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Message
}
