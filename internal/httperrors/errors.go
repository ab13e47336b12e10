// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns low-level network failures into messages a user
// can act on. It recognizes the transport-level failure classes a CLI run
// into the Rowdeck service can hit (timeout, DNS, connection refused,
// TLS, upstream 5xx) and leaves everything else to the caller, so typed
// service errors keep their own wording.
package httperrors

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// cause is one recognized network-failure class.
type cause struct {
	match    func(err error, lower string) bool
	headline string
	advice   []string
}

// causes are checked in order; the first match wins.
var causes = []cause{
	{
		match:    isTimeout,
		headline: "⏱️  Connection timeout while %s",
		advice: []string{
			"The server took too long to respond. This could mean:",
			"  • Slow internet connection",
			"  • Server is under heavy load",
			"  • Network firewall is blocking the connection",
			"",
			"Please try again in a few moments.",
		},
	},
	{
		match:    isDNS,
		headline: "🌐 Cannot resolve server address while %s",
		advice: []string{
			"Unable to look up the Rowdeck service. Please check:",
			"  • Your internet connection is working",
			"  • DNS settings are correct",
			"  • No DNS-level blocking (corporate firewall, parental controls)",
		},
	},
	{
		match:    isRefused,
		headline: "🚫 Connection refused while %s",
		advice: []string{
			"The server is not accepting connections. This could mean:",
			"  • The service is temporarily down",
			"  • Firewall is blocking the connection",
			"  • Wrong base_url or port in the configuration",
			"",
			"Please try again later or contact support.",
		},
	},
	{
		match:    isTLS,
		headline: "🔒 Secure connection failed while %s",
		advice: []string{
			"Cannot establish a secure HTTPS connection. This could mean:",
			"  • SSL/TLS certificate issue",
			"  • Network proxy interfering with HTTPS",
			"  • System clock is incorrect",
		},
	},
	{
		match:    isUpstream,
		headline: "⚠️  Server error while %s",
		advice: []string{
			"The Rowdeck service encountered an internal error.",
			"This is not a problem with your setup.",
			"  • Please try again in a few minutes",
		},
	},
}

// Explain builds a user-facing explanation for err when it belongs to a
// recognized network-failure class. The second return is false for
// everything else, including the service's typed errors.
func Explain(err error, context string) (string, bool) {
	if err == nil {
		return "", false
	}
	lower := strings.ToLower(err.Error())
	for _, c := range causes {
		if !c.match(err, lower) {
			continue
		}
		var b strings.Builder
		b.WriteString(strings.Replace(c.headline, "%s", context, 1))
		b.WriteString("\n\n")
		for _, line := range c.advice {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		return b.String(), true
	}
	return "", false
}

// Present prints the explanation for a recognized network failure and
// reports whether it handled the error. Callers print unrecognized errors
// themselves.
func Present(err error, context string) bool {
	msg, ok := Explain(err, context)
	if !ok {
		return false
	}
	pterm.Println(msg)
	return true
}

func isTimeout(err error, lower string) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "deadline exceeded")
}

func isDNS(err error, lower string) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isRefused(err error, lower string) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(lower, "connection refused")
}

func isTLS(err error, lower string) bool {
	return strings.Contains(lower, "tls") ||
		strings.Contains(lower, "certificate") ||
		strings.Contains(lower, "handshake")
}

func isUpstream(err error, lower string) bool {
	return strings.Contains(lower, "internal server error") ||
		strings.Contains(lower, "bad gateway") ||
		strings.Contains(lower, "service unavailable") ||
		strings.Contains(lower, "gateway timeout")
}

// HostOf extracts the hostname from a URL for use in error context strings.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
