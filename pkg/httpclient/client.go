// Package httpclient builds the instrumented HTTP clients used to reach the
// storefront's backends and decodes their error bodies.
package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// New returns a client with a per-request timeout and an OpenTelemetry transport.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// JoinURL appends path to base without doubling slashes.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// ErrorMessage picks the most useful text from a failed response: a JSON
// "message", then a JSON "error", then the raw body, then "HTTP <status>".
func ErrorMessage(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 {
		var payload struct {
			Message any `json:"message"`
			Error   any `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			if msg := textOf(payload.Message); msg != "" {
				return msg
			}
			if msg := textOf(payload.Error); msg != "" {
				return msg
			}
		}
		return string(trimmed)
	}
	return fmt.Sprintf("HTTP %d", status)
}

func textOf(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		// {"error":{"message":"..."}} envelopes
		if msg, ok := val["message"].(string); ok {
			return strings.TrimSpace(msg)
		}
	}
	return ""
}
