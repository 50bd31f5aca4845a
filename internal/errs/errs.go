// Package errs defines the error kinds shared by the fetchers and the tool
// layer. Callers classify failures with errors.Is.
package errs

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrNetwork covers timeouts, DNS and TLS failures, refused connections
	// and non-2xx responses from documentation sites.
	ErrNetwork = errors.New("network error")

	// ErrParsing covers HTML that cannot be parsed or has no matching content.
	ErrParsing = errors.New("parsing error")

	// ErrAPI covers invalid input to an external API, rate limiting,
	// server-side failures and unexpected payloads.
	ErrAPI = errors.New("api error")
)

// Timeout reports whether err was caused by a deadline or network timeout.
func Timeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Message strips the kind prefix so tool output reads "Request timed out..."
// rather than "network error: request timed out...".
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, kind := range []error{ErrNetwork, ErrParsing, ErrAPI} {
		prefix := kind.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
