// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"strings"
)

// parseBearerToken extracts token from a value like "Bearer <token>" case-insensitively.
// Returns the token string without the "Bearer " prefix, or empty string if invalid format.
func parseBearerToken(value string) string {
	v := strings.TrimSpace(value)
	if len(v) < 7 {
		return ""
	}
	if strings.EqualFold(v[0:6], "bearer") && (v[6] == ' ' || v[6] == '\t') {
		if rest := strings.TrimSpace(v[7:]); rest != "" {
			return rest
		}
	}
	return ""
}

// findBearerTokenInHeaders returns the bearer token of the Authorization header, if any.
func findBearerTokenInHeaders(h map[string][]string) string {
	return parseBearerToken(http.Header(h).Get("Authorization"))
}

// extractAccessToken extracts the access token from the response payload.
// It tries multiple common field names to be resilient to different response formats.
func extractAccessToken(result map[string]any) string {
	for _, k := range []string{"access_token", "accessToken", "token"} {
		if v, ok := result[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// extractTokenType returns the token_type field, defaulting to "bearer".
func extractTokenType(result map[string]any) string {
	for _, k := range []string{"token_type", "tokenType"} {
		if v, ok := result[k].(string); ok && v != "" {
			return strings.ToLower(v)
		}
	}
	return "bearer"
}
