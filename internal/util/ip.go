package util

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the originating client address for audit records,
// honoring the proxy headers a reverse proxy in front of the console sets.
func ClientIP(r *http.Request) string {
	// X-Forwarded-For carries "client, proxy1, proxy2".
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
