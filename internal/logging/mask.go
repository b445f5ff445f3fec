// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the CLI's structured logger and utilities for secure
// logging and error presentation.
//
// Anything that may carry credentials (request bodies, URLs, error strings from
// the transport) goes through Mask before it is logged or shown, so passwords,
// bearer tokens and JWTs never reach the terminal or log output.
package logging

import (
	"regexp"
	"strings"
)

var (
	rePassword = regexp.MustCompile(`(?i)((?:new_)?password=)([^\s;&]+)`)
	reToken    = regexp.MustCompile(`(?i)((?:access_|refresh_)?token=|bearer\s+)([A-Za-z0-9._~+/-]+=*)`)
	reJSONPass = regexp.MustCompile(`(?i)("(?:new_)?password"\s*:\s*")([^"]*)(")`)
	reJSONTok  = regexp.MustCompile(`(?i)("(?:access_|refresh_)?token"\s*:\s*")([^"]*)(")`)
	reJWT      = regexp.MustCompile(`eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`)
	reAPIKey   = regexp.MustCompile(`(?i)(apikey=|api_key=)([^\s;&]+)`)
)

// Mask replaces sensitive values in the input string with "***".
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reJSONPass.ReplaceAllString(out, "$1***$3")
	out = reJSONTok.ReplaceAllString(out, "$1***$3")
	out = reJWT.ReplaceAllString(out, "***")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	for _, k := range []string{"EDUAUTISMO_KEYRING_PASSWORD", "ACCESS_TOKEN"} {
		out = strings.ReplaceAll(out, k+"=", k+"=***")
	}
	return out
}
