package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/bnema/vidpipe/internal/adapter/http/ratelimit"
	"github.com/bnema/vidpipe/internal/infrastructure/logger"
)

type AuthService interface {
	ValidateToken(token string) error
}

const bearerPrefix = "Bearer "

// bearerToken extracts the token from an Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// AuthMiddleware requires a valid bearer token. Clients that fail too often
// are refused with 429 until their block expires.
func AuthMiddleware(authSvc AuthService, limiter *ratelimit.FailureLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if blocked, remaining := limiter.Blocked(ip); blocked {
			w.Header().Set("Retry-After", strconv.Itoa(int(remaining.Seconds())+1))
			writeError(w, http.StatusTooManyRequests, "too many failed attempts")
			return
		}

		if err := authSvc.ValidateToken(bearerToken(r)); err != nil {
			limiter.Fail(ip)
			logger.Warn.Printf("rejected request from %s: %v", logger.SanitizeForLog(ip), err)
			w.Header().Set("WWW-Authenticate", `Bearer realm="vidpipe"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		limiter.Reset(ip)
		next(w, r)
	}
}
