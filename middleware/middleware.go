// File: /middleware/middleware.go
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
	"vastconnect-api/utils"
)

// ErrorHandler renders the last error attached with c.Error when the handler
// did not write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		utils.SendAppError(c, c.Errors.Last().Err)
	}
}

// RateLimiter keeps one token bucket per client. The least recently seen
// clients are evicted once the cache is full.
type RateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerMinute, burst, maxClients int) (*RateLimiter, error) {
	if requestsPerMinute <= 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", requestsPerMinute)
	}
	cache, err := lru.New[string, *rate.Limiter](maxClients)
	if err != nil {
		return nil, fmt.Errorf("create limiter cache: %w", err)
	}
	return &RateLimiter{
		limiters: cache,
		rate:     rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    burst,
	}, nil
}

// GetLimiter returns the limiter for key, creating it on first use.
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Get(key); ok {
		return limiter
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	if previous, ok, _ := rl.limiters.PeekOrAdd(key, limiter); ok {
		return previous
	}
	return limiter
}

// Middleware rejects clients that exhausted their bucket with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	perMinute := int(float64(rl.rate) * 60)

	return func(c *gin.Context) {
		limiter := rl.GetLimiter(c.ClientIP())
		reset := strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10)

		if !limiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", reset)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.ErrorResponse{
				Error:   "Rate limit exceeded",
				Message: fmt.Sprintf("Too many requests. Limit: %d requests per minute", perMinute),
				Code:    http.StatusTooManyRequests,
			})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Header("X-RateLimit-Reset", reset)
		c.Next()
	}
}

// ValidateJSON requires a JSON content type on requests that carry a body.
func ValidateJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		if !strings.Contains(c.GetHeader("Content-Type"), "application/json") {
			c.AbortWithStatusJSON(http.StatusBadRequest, utils.ErrorResponse{
				Error:   string(utils.KindValidation),
				Message: "Content-Type must be application/json; charset=utf-8",
				Code:    http.StatusBadRequest,
			})
			return
		}
		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" && !strings.Contains(raw, "token=") {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("client_ip", c.ClientIP()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.String("user_id", c.GetString(UserIDKey)),
		)
	}
}

// SecurityHeaders middleware adds security headers
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

// CORS answers preflight requests and allows any origin to call the API with
// a bearer token.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
