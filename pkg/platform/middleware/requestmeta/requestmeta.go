// Package requestmeta stamps request-scoped metadata: correlation ID, the
// request clock, caller IP, and a scanner device description parsed from the
// User-Agent. All writes within one scan share the request clock, so a ban's
// start date and its incident timestamps agree.
package requestmeta

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"github.com/Escana/app-escana01-production-sub000/pkg/requestcontext"
)

// Middleware populates the request context. Apply early in the chain.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := r.Context()
		ctx = requestcontext.WithRequestID(ctx, requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		ctx = requestcontext.WithClientIP(ctx, clientIPFromRequest(r))
		ctx = requestcontext.WithDevice(ctx, deviceFromUserAgent(r.Header.Get("User-Agent")))

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// deviceFromUserAgent condenses the scanner's User-Agent into "platform /
// browser" for audit events.
func deviceFromUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, _ := ua.Browser()
	platform := ua.Platform()
	switch {
	case platform != "" && name != "":
		return platform + " / " + name
	case name != "":
		return name
	default:
		return platform
	}
}

// clientIPFromRequest extracts the real caller IP, handling proxies.
func clientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry is the original client.
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		// ip:port for IPv4, [::1]:port for IPv6.
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}
