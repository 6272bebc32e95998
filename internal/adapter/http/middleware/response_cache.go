package middleware

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"taskboard/internal/core/domain"
	"taskboard/internal/core/telemetry"
	. "taskboard/pkg/tracing"
)

type cachedResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Timestamp   time.Time
}

// ResponseCache serves repeated GETs from memory for a short TTL. Any change
// to the project graph flushes it, so a cached body is never staler than the
// last mutation.
type ResponseCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	skip    map[string]bool
	logger  *zap.Logger
	metrics *telemetry.AppMetrics

	// generation changes on every invalidation; a response rendered across
	// an invalidation is not stored.
	mutex      sync.Mutex
	generation uint64
}

func NewResponseCache(ttl time.Duration, logger *zap.Logger, metrics *telemetry.AppMetrics) *ResponseCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ResponseCache{
		cache:   cache.New(ttl, 2*ttl),
		ttl:     ttl,
		skip:    make(map[string]bool),
		logger:  logger,
		metrics: metrics,
	}
}

// Skip excludes route templates whose answer does not come from the graph.
func (rc *ResponseCache) Skip(paths ...string) {
	for _, p := range paths {
		rc.skip[p] = true
	}
}

// Invalidate is an event observer; subscribe it to the ProjectManager.
func (rc *ResponseCache) Invalidate(event domain.Event) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	rc.generation++
	if rc.cache.ItemCount() == 0 {
		return
	}

	rc.cache.Flush()
	rc.logger.Debug("Response cache invalidated", zap.String("event", string(event.Kind)))
}

func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" || rc.skip[path] {
			c.Next()
			return
		}

		key := fmt.Sprintf("cache:%s:%x", path, md5.Sum([]byte(c.Request.URL.RequestURI())))

		if v, found := rc.cache.Get(key); found {
			cached := v.(cachedResponse)

			_, span := CreateChildSpan(c.Request.Context(), "cache.response.hit", []attribute.KeyValue{
				attribute.String("cache.path", path),
				attribute.String("cache.age", time.Since(cached.Timestamp).String()),
			})
			defer span.End()

			if rc.metrics != nil {
				rc.metrics.RecordCacheHit(c.Request.Context(), path)
			}

			c.Header("X-Cache", "HIT")
			c.Header("X-Cache-Age", strconv.Itoa(int(time.Since(cached.Timestamp).Seconds())))
			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(c.Request.Context(), path)
		}

		rc.mutex.Lock()
		generation := rc.generation
		rc.mutex.Unlock()

		writer := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		if status := writer.Status(); status >= 200 && status < 300 {
			rc.store(key, generation, cachedResponse{
				StatusCode:  status,
				ContentType: writer.Header().Get("Content-Type"),
				Body:        bytes.Clone(writer.body.Bytes()),
				Timestamp:   time.Now(),
			})
		}
	}
}

func (rc *ResponseCache) store(key string, generation uint64, resp cachedResponse) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if generation != rc.generation {
		return
	}

	rc.cache.Set(key, resp, rc.ttl)
}

func (rc *ResponseCache) ActiveEntries() int {
	return rc.cache.ItemCount()
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
