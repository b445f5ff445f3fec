// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	// Detail is the server's explanation, taken from a FastAPI style
	// {"detail": ...} body when present, else the raw body text.
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
}

// StatusCodeOf returns the HTTP status carried by err, or 0 when err holds no response.
func StatusCodeOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func newStatusError(code int, body []byte) *StatusError {
	return &StatusError{StatusCode: code, Detail: extractDetail(body)}
}

// extractDetail reads {"detail": "..."} or the validation list form
// {"detail": [{"msg": "..."}]}; anything else is returned trimmed.
func extractDetail(body []byte) string {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return strings.TrimSpace(string(body))
	}
	switch d := raw["detail"].(type) {
	case string:
		return d
	case []any:
		var msgs []string
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if s, ok := m["msg"].(string); ok && s != "" {
					msgs = append(msgs, s)
				}
			}
		}
		return strings.Join(msgs, "; ")
	}
	if s, ok := raw["message"].(string); ok {
		return s
	}
	return ""
}
