package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address used to identify the caller. Exactly one
// proxy hop is trusted: when X-Forwarded-For is present, its rightmost
// entry (appended by the load balancer in front of us) is used. Entries
// further left are client supplied and ignored.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		last := xff[len(xff)-1]
		if i := strings.LastIndexByte(last, ','); i >= 0 {
			last = last[i+1:]
		}
		if ip := strings.TrimSpace(last); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
