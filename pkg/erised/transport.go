// Package erised provides the official Go client for the Erised visual memory service.
package erised

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Version is the client library version reported in the User-Agent header.
const Version = "0.1.0"

// userAgent identifies this client on every request.
const userAgent = "erised-go/" + Version

// request describes one HTTP exchange with the Erised API.
type request struct {
	// op is the operation name used in error and log context.
	op string

	// method is the HTTP method.
	method string

	// path is the server-relative request path, e.g. "/v1/memories/search".
	path string

	// query is the optional query string.
	query url.Values

	// body is the optional request body.
	body io.Reader

	// contentType is the Content-Type header when body is set.
	contentType string

	// memoryID marks memory-addressed requests so a 404 maps to NotFoundError.
	memoryID string
}

// do sends one request and returns the raw response body on any 2xx status.
//
// Every request carries bearer authentication, the client User-Agent and a
// generated X-Request-ID. Exactly one attempt is made; there is no retry.
// Network failures map to TransportError, non-2xx statuses to APIError
// (NotFoundError for 404 on memory-addressed requests).
//
// The returned string is the request's correlation ID.
func (c *Client) do(ctx context.Context, r *request) ([]byte, string, error) {
	if c.closed.Load() {
		return nil, "", fmt.Errorf("erised: %s: %w", r.op, ErrClientClosed)
	}

	requestID := c.snowflakeNode.Generate().String()

	// An absolute path is a complete URL already, e.g. an image location
	// the server reported on another host.
	u := r.path
	if !strings.Contains(u, "://") {
		u = c.baseURL + u
	}
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, requestID, &TransportError{Op: r.op, RequestID: requestID, Err: err}
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	c.log.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Str("request_id", requestID).
		Msg("sending request")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, requestID, &TransportError{Op: r.op, RequestID: requestID, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, requestID, &TransportError{Op: r.op, RequestID: requestID, Err: fmt.Errorf("read response: %w", err)}
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, requestID, apiError(r, resp.StatusCode, body, requestID)
	}

	return body, requestID, nil
}

// doJSON sends one request and decodes the JSON response body into out.
//
// A body that fails to decode counts as transport-layer corruption and maps
// to TransportError. Pass a nil out to discard the body.
func (c *Client) doJSON(ctx context.Context, r *request, out interface{}) error {
	body, requestID, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: r.op, RequestID: requestID, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// apiError maps a non-2xx response to the error taxonomy.
func apiError(r *request, status int, body []byte, requestID string) error {
	apiErr := APIError{
		Op:         r.op,
		StatusCode: status,
		Message:    serverMessage(body),
		RequestID:  requestID,
	}
	if status == http.StatusNotFound && r.memoryID != "" {
		return &NotFoundError{APIError: apiErr, MemoryID: r.memoryID}
	}
	return &apiErr
}

// serverMessage extracts the error text from a response body.
//
// The service reports errors as {"detail": ...}; "error" and "message"
// fields are recognized as fallbacks, and an undecodable body passes
// through verbatim.
func serverMessage(body []byte) string {
	var payload struct {
		Detail  interface{} `json:"detail"`
		Error   string      `json:"error"`
		Message string      `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Detail != nil:
			if s, ok := payload.Detail.(string); ok {
				return s
			}
			raw, _ := json.Marshal(payload.Detail)
			return string(raw)
		case payload.Error != "":
			return payload.Error
		case payload.Message != "":
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody assembles the multipart form for an image upload.
//
// The image bytes go into the "file" part under their sniffed content type;
// the remaining fields are written as plain form values.
func multipartBody(filename string, data []byte, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", detectImageType(data))

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write form field: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

// detectImageType sniffs the content type of image data.
//
// Defaults to image/png when the sniffer reports a non-image type, matching
// the service's canonical upload format.
func detectImageType(data []byte) string {
	mt := mimetype.Detect(data).String()
	if !strings.HasPrefix(mt, "image/") {
		return "image/png"
	}
	return mt
}
