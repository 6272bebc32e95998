package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"taskboard/internal/core/port"
	"taskboard/internal/core/telemetry"
	ct "taskboard/pkg/context"
)

func newTestRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middlewares...)

	return router
}

func TestCurrentMiddleware_GeneratesRequestID(t *testing.T) {
	var seen string

	router := newTestRouter(CurrentMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		seen = ct.RequestID(c.Request.Context())
		fromCurrent, ok := GetCurrent(c).GetString(ct.KeyRequestID)
		assert.True(t, ok)
		assert.Equal(t, seen, fromCurrent)
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
}

func TestCurrentMiddleware_KeepsClientRequestID(t *testing.T) {
	router := newTestRouter(CurrentMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "abc", rr.Header().Get(RequestIDHeader))
}

func TestCORSMiddleware(t *testing.T) {
	router := newTestRouter(CORSMiddleware([]string{"http://app.local"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://app.local")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://app.local", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.local")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddleware_Wildcard(t *testing.T) {
	router := newTestRouter(CORSMiddleware([]string{"*"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://any.local")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://any.local", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggingMiddleware_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := otelzap.New(zap.New(core))

	router := newTestRouter(CurrentMiddleware(), LoggingMiddleware(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
		assert.Equal(t, zap.ErrorLevel, entries[2].Level)
		assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
	}
}

func TestMetricsMiddleware(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := telemetry.NewAppMetrics(registry)

	recorder := &httpRecorder{Telemetry: telemetry.NewNoOpProbe()}

	router := newTestRouter(MetricsMiddleware(metrics, recorder))
	router.GET("/projects/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/projects/1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/projects/2", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 2, testutil.CollectAndCount(registry, "http_requests_total"))
	assert.Equal(t, []string{"GET /projects/:id 200", "GET /projects/:id 200", "GET unmatched 404"}, recorder.calls)
}

// httpRecorder remembers every request reported to it.
type httpRecorder struct {
	port.Telemetry
	calls []string
}

func (p *httpRecorder) RecordHTTPOperation(ctx context.Context, method string, path string, statusCode int, duration time.Duration) {
	p.calls = append(p.calls, fmt.Sprintf("%s %s %d", method, path, statusCode))
}

func TestLoggingMiddleware_RequestContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := otelzap.New(zap.New(core))
	provider := sdktrace.NewTracerProvider()

	var traceID string
	withSpan := func(c *gin.Context) {
		ctx, span := provider.Tracer("test").Start(c.Request.Context(), "request")
		defer span.End()

		traceID = span.SpanContext().TraceID().String()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}

	router := newTestRouter(withSpan, CurrentMiddleware(), LoggingMiddleware(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	req.Header.Set("User-Agent", "taskboard-test")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "taskboard-test", fields["user_agent"])
		assert.Equal(t, traceID, fields["trace_id"])
	}
}
