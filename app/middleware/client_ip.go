package appMiddleware

import (
	"context"
	"net"
	"net/http"
)

type contextKey string

const ClientIPKey contextKey = "clientIP"

// ClientIP stores the caller's address in the request context. Run it after
// chi's RealIP so proxy headers are already applied to RemoteAddr.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}
		next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), ip)))
	})
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ClientIPKey, ip)
}

func GetClientIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(ClientIPKey).(string)
	return ip, ok && ip != ""
}
