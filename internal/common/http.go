package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller address used for rate limiting and access logs. Inside
// the router chi's RealIP middleware has already folded X-Forwarded-For and X-Real-IP
// into RemoteAddr; the headers are consulted directly only when RemoteAddr is empty.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		addr = strings.TrimSpace(first)
		if addr == "" {
			addr = strings.TrimSpace(r.Header.Get("X-Real-IP"))
		}
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
