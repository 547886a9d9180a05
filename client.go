package pozeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// statusMessages are the fixed fallback strings used when an error response
// carries no usable body.
var statusMessages = map[int]string{
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	500: "Internal Server Error",
}

// Client is the transport layer of the Poze API client. It merges headers,
// injects the current bearer token, serializes bodies and classifies every
// response into a Result. It never returns a Go error for reachable failure
// classes and is safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	defaultHeaders map[string]string
	tokens         TokenSource
	onUnauthorized func()
	metrics        *MetricsCollector
	logger         Logger
	debug          *DebugConfig
}

// New constructs a Client using the provided functional options.
func New(options ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		defaultHeaders: map[string]string{},
		debug:          DefaultDebugConfig(),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() string { return c.baseURL }

// Request executes a single exchange described by d. The returned Result is
// the whole contract: Data xor Error is set, Status 0 means no HTTP
// response was received.
func (c *Client) Request(ctx context.Context, d Descriptor) Result {
	start := time.Now()
	method := d.Method
	if method == "" {
		method = http.MethodGet
	}

	var requestID string
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}

	body, err := c.encodeBody(d)
	if err != nil {
		return Result{Error: "failed to encode request body: " + err.Error(), Status: 0}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+d.Path, body)
	if err != nil {
		return Result{Error: err.Error(), Status: 0}
	}
	req.Header = c.buildHeaders(d)

	endpoint := method + " " + d.Path
	if c.debug != nil && c.debug.Enabled && c.logger != nil {
		c.logger.Debug("starting request", "requestID", requestID, "method", method, "path", d.Path)
	}
	if c.metrics != nil {
		c.metrics.RecordRequestStart(method, d.Path)
	}

	resp, err := c.httpClient.Do(req)

	if c.metrics != nil {
		c.metrics.RecordRequestEnd(method, d.Path)
	}

	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordError(ErrorTypeNetwork, method, d.Path)
			c.metrics.RecordRequest(method, d.Path, 0, time.Since(start))
		}
		if c.logger != nil {
			c.logger.Warn("network failure", "requestID", requestID, "endpoint", endpoint, "error", err.Error())
		}
		return Result{Error: networkErrorMessage(err), Status: 0}
	}
	defer func() { _ = resp.Body.Close() }()

	result := c.classify(resp)

	if c.metrics != nil {
		c.metrics.RecordRequest(method, d.Path, result.Status, time.Since(start))
		if !result.OK() {
			errType := ErrorTypeHTTP
			if result.Status == 401 {
				errType = ErrorTypeAuth
			}
			c.metrics.RecordError(errType, method, d.Path)
		}
	}

	if result.Status == http.StatusUnauthorized {
		// Stale or invalid tokens are purged immediately rather than
		// retried; the hook is the session store's Teardown.
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		if c.logger != nil {
			c.logger.Warn("unauthorized response, session cleared", "requestID", requestID, "endpoint", endpoint)
		}
	}

	if c.debug != nil && c.debug.Enabled && c.logger != nil {
		c.logger.Debug("request complete", "requestID", requestID, "endpoint", endpoint, "status", result.Status)
	}

	return result
}

// Get issues a GET request against path.
func (c *Client) Get(ctx context.Context, path string) Result {
	return c.Request(ctx, Descriptor{Path: path, Method: http.MethodGet})
}

// Post issues a POST request with a JSON-encoded body.
func (c *Client) Post(ctx context.Context, path string, body any) Result {
	return c.Request(ctx, Descriptor{Path: path, Method: http.MethodPost, Body: body})
}

// Put issues a PUT request with a JSON-encoded body.
func (c *Client) Put(ctx context.Context, path string, body any) Result {
	return c.Request(ctx, Descriptor{Path: path, Method: http.MethodPut, Body: body})
}

// Patch issues a PATCH request with a JSON-encoded body.
func (c *Client) Patch(ctx context.Context, path string, body any) Result {
	return c.Request(ctx, Descriptor{Path: path, Method: http.MethodPatch, Body: body})
}

// Delete issues a DELETE request against path.
func (c *Client) Delete(ctx context.Context, path string) Result {
	return c.Request(ctx, Descriptor{Path: path, Method: http.MethodDelete})
}

// Upload issues a POST with a prepared multipart payload. The Content-Type
// header is removed so the caller-provided contentType (with its boundary)
// wins; passing an empty contentType leaves the header absent entirely.
func (c *Client) Upload(ctx context.Context, path string, payload []byte, contentType string) Result {
	return c.Request(ctx, Descriptor{
		Path:            path,
		Method:          http.MethodPost,
		RawBody:         payload,
		ContentType:     contentType,
		OmitContentType: contentType == "",
	})
}

func (c *Client) encodeBody(d Descriptor) (io.Reader, error) {
	if d.RawBody != nil {
		return bytes.NewReader(d.RawBody), nil
	}
	if d.Body == nil {
		return nil, nil
	}
	raw, err := json.Marshal(d.Body)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(raw), nil
}

// buildHeaders rebuilds the outgoing header set from scratch on every call:
// fixed base, instance defaults, bearer token, per-call overrides, in that
// precedence order. The rebuild keeps the default-header map untouched.
func (c *Client) buildHeaders(d Descriptor) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")

	for k, v := range c.defaultHeaders {
		h.Set(k, v)
	}

	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			h.Set("Authorization", "Bearer "+token)
		}
	}

	for k, v := range d.Headers {
		h.Set(k, v)
	}

	if d.OmitContentType {
		h.Del("Content-Type")
	} else if d.ContentType != "" {
		h.Set("Content-Type", d.ContentType)
	}

	return h
}

// classify reads the response body and maps it onto the Result contract.
func (c *Client) classify(resp *http.Response) Result {
	status := resp.StatusCode

	var jsonBody json.RawMessage
	var textBody string

	contentType := resp.Header.Get("Content-Type")
	if status != http.StatusNoContent {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return Result{Error: "failed to read response body: " + err.Error(), Status: status}
		}
		if strings.Contains(contentType, "application/json") && json.Valid(raw) {
			jsonBody = raw
		} else if len(raw) > 0 {
			textBody = string(raw)
		}
	}

	if status >= 200 && status < 300 {
		if jsonBody != nil {
			return Result{Data: jsonBody, Status: status}
		}
		if textBody != "" {
			quoted, _ := json.Marshal(textBody)
			return Result{Data: quoted, Status: status}
		}
		return Result{Status: status}
	}

	return Result{Error: errorMessage(status, jsonBody, textBody), Status: status}
}

// errorMessage applies the classification precedence: JSON "message" field,
// then raw text body, then the fixed per-status string, then the generic
// fallback.
func errorMessage(status int, jsonBody json.RawMessage, textBody string) string {
	if jsonBody != nil {
		var envelope struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(jsonBody, &envelope); err == nil && envelope.Message != "" {
			return envelope.Message
		}
	}
	if textBody != "" {
		return textBody
	}
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return "HTTP Error: " + strconv.Itoa(status)
}

func networkErrorMessage(err error) string {
	if err == nil {
		return "Network error"
	}
	return err.Error()
}
