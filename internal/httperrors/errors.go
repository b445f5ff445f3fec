// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors classifies transport failures (requests that received no
// HTTP response at all) and renders troubleshooting hints for them.
package httperrors

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Cause is the detected reason a request got no response.
type Cause string

const (
	CauseNone     Cause = ""
	CauseTimeout  Cause = "timeout"
	CauseDNS      Cause = "dns"
	CauseRefused  Cause = "connection_refused"
	CauseTLS      Cause = "tls"
	CauseCanceled Cause = "canceled"
	CauseOther    Cause = "network"
)

// Classify returns the cause of a transport error. A nil error yields CauseNone.
func Classify(err error) Cause {
	switch {
	case err == nil:
		return CauseNone
	case errors.Is(err, context.Canceled):
		return CauseCanceled
	case isTimeoutError(err):
		return CauseTimeout
	case isDNSError(err):
		return CauseDNS
	case isConnectionRefusedError(err):
		return CauseRefused
	case isSSLError(err):
		return CauseTLS
	default:
		return CauseOther
	}
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate")
}

// Hints returns troubleshooting lines for cause.
func Hints(cause Cause) []string {
	switch cause {
	case CauseTimeout:
		return []string{
			"The server took too long to respond.",
			"Check your connection, or raise request_timeout in the config.",
		}
	case CauseDNS:
		return []string{
			"The server address could not be resolved.",
			"Check api_url and your DNS settings.",
		}
	case CauseRefused:
		return []string{
			"The server is not accepting connections.",
			"Is the API running, and is api_url pointing at the right port?",
		}
	case CauseTLS:
		return []string{
			"A secure connection could not be established.",
			"Check the system clock and any HTTPS proxy in between.",
		}
	case CauseCanceled, CauseNone:
		return nil
	default:
		return []string{"Check your internet connection and api_url."}
	}
}

// Present prints a short hint block for err under the already shown message.
func Present(err error, apiURL string) {
	cause := Classify(err)
	lines := Hints(cause)
	if len(lines) == 0 {
		return
	}
	pterm.Printf("   while contacting %s\n", ExtractHostFromURL(apiURL))
	for _, l := range lines {
		pterm.Println("   • " + l)
	}
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
