package qwenserve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

const contentType = "application/msgpack"

// httpClient handles HTTP communication with the model server.
type httpClient struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

func newHTTPClient(cfg *clientConfig) *httpClient {
	return &httpClient{
		client:     cfg.httpClient,
		baseURL:    strings.TrimRight(cfg.baseURL, "/"),
		apiKey:     cfg.apiKey,
		maxRetries: cfg.maxRetries,
		backoff:    cfg.backoff,
		logger:     cfg.logger,
	}
}

// request makes an HTTP request to the server with retry support.
func (h *httpClient) request(ctx context.Context, method, path string, body any, result any) error {
	var bodyData []byte
	if body != nil {
		var err error
		bodyData, err = msgpack.Marshal(body)
		if err != nil {
			return fmt.Errorf("qwenserve: marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1x, 2x, 4x, ...
			backoff := h.backoff * time.Duration(1<<uint(attempt-1))
			h.logger.Debug("retrying model server request", "path", path, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := h.doRequest(ctx, method, path, bodyData, result)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return err
		}
		if apiErr, ok := AsError(err); ok && !apiErr.Retryable() {
			return err
		}
		// Network errors and retryable API errors go around again.
	}
	return lastErr
}

// doRequest performs a single HTTP request.
func (h *httpClient) doRequest(ctx context.Context, method, path string, bodyData []byte, result any) error {
	var bodyReader io.Reader
	if bodyData != nil {
		bodyReader = bytes.NewReader(bodyData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("qwenserve: create request: %w", err)
	}

	requestID := uuid.NewString()
	h.setHeaders(req, requestID)
	if bodyData != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("qwenserve: do request: %w", err)
	}
	defer resp.Body.Close()

	return h.handleResponse(resp, requestID, result)
}

// setHeaders sets common headers for API requests.
func (h *httpClient) setHeaders(req *http.Request, requestID string) {
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}
	req.Header.Set("Accept", contentType)
	req.Header.Set("User-Agent", "qwentts-go/1.0")
	req.Header.Set("X-Request-Id", requestID)
}

// handleResponse handles the server response.
func (h *httpClient) handleResponse(resp *http.Response, requestID string, result any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("qwenserve: read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(body, resp.Header.Get("Content-Type"), resp.StatusCode, requestID)
	}

	if result != nil && len(body) > 0 {
		if err := msgpack.Unmarshal(body, result); err != nil {
			return fmt.Errorf("qwenserve: unmarshal response: %w", err)
		}
	}
	return nil
}

// parseError parses an error response body. Servers may answer errors in
// JSON even when the request was msgpack.
func parseError(body []byte, ctype string, httpStatus int, requestID string) error {
	e := &Error{HTTPStatus: httpStatus, RequestID: requestID}

	var eb errorBody
	var err error
	if strings.Contains(ctype, "json") {
		err = json.Unmarshal(body, &eb)
	} else {
		err = msgpack.Unmarshal(body, &eb)
	}
	if err == nil && eb.Error != "" {
		e.Code = eb.Code
		e.Message = eb.Error
		return e
	}

	e.Message = strings.TrimSpace(string(body))
	if e.Message == "" {
		e.Message = http.StatusText(httpStatus)
	}
	return e
}
