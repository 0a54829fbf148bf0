// internal/api/middleware.go
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"eam-assistant/internal/common/auth"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/metrics"
	"eam-assistant/internal/common/observability"
)

const requestIDHeader = "X-Request-ID"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(observability.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// accessLog traces, logs and counts each request.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := s.opts.Observability.StartSpan(c.Request.Context(), c.Request.Method+" "+route,
			attribute.String("http.route", route))
		c.Request = c.Request.WithContext(ctx)
		defer span.End()

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		span.SetAttributes(attribute.Int("http.status_code", status))
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.opts.Observability.RecordOperation(ctx, "http "+route, strconv.Itoa(status), latency)

		fields := map[string]interface{}{
			"requestId":  observability.RequestID(ctx),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": latency.Milliseconds(),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("request failed", fields)
			return
		}
		s.logger.Info("request handled", fields)
	}
}

// cors allows the configured comma separated origins, or any origin for "*".
func cors(allowed string) gin.HandlerFunc {
	origins := map[string]bool{}
	for _, o := range strings.Split(allowed, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = true
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case origin == "":
		case origins["*"]:
			c.Header("Access-Control-Allow-Origin", "*")
		case origins[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Next()
	}
}

func preflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization, ngrok-skip-browser-warning")
	c.Status(http.StatusNoContent)
}

func requireToken(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		var token string
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimSpace(header[len("Bearer "):])
		}
		if _, err := validator.ValidateToken(c.Request.Context(), token); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// abortWithError writes {"error": message} and details when present, with
// the status mapped from the error code.
func abortWithError(c *gin.Context, err error) {
	stdErr := apperrors.AsStandardError(err)
	body := gin.H{"error": stdErr.Message}
	if stdErr.Details != "" {
		body["details"] = stdErr.Details
	}
	c.AbortWithStatusJSON(apperrors.HTTPStatus(stdErr.Code), body)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}
