package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"mustip/backend/internal/domain"
	"mustip/backend/internal/i18n"
	"mustip/backend/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type panicCounter struct {
	count int
}

func (p *panicCounter) RecordPanic() { p.count++ }

type httpRecorder struct {
	mu        sync.Mutex
	endpoints []string
	statuses  []string
}

func (r *httpRecorder) RecordHTTPRequest(method, endpoint, statusCode string, _ time.Duration, _ int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints = append(r.endpoints, method+" "+endpoint)
	r.statuses = append(r.statuses, statusCode)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("生成新ID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("沿用合法ID", func(t *testing.T) {
		existing := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, existing)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, existing, rec.Header().Get(RequestIDHeader))
	})

	t.Run("忽略非法ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.NotEqual(t, "<script>", rec.Header().Get(RequestIDHeader))
	})
}

func TestRequestLogger_UsesFingerprint(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := gin.New()
	router.Use(RequestID(), RequestLogger(zap.New(core), security.NewFingerprinter("salt")))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, security.NewFingerprinter("salt").Fingerprint("203.0.113.7"), fields["ip_fp"])
	for _, v := range fields {
		if s, ok := v.(string); ok {
			assert.NotContains(t, s, "203.0.113.7")
		}
	}
}

func TestRecoveryHandler(t *testing.T) {
	counter := &panicCounter{}
	router := gin.New()
	router.Use(RecoveryHandler(nil, counter))
	router.GET("/", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":false`)
	assert.NotContains(t, rec.Body.String(), "boom")
	assert.Equal(t, 1, counter.count)
}

func TestBodySizeLimit(t *testing.T) {
	router := gin.New()
	router.POST("/", BodySizeLimit(16), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 32))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, i18n.Resolve(domain.DefaultLocale).ProcessingError, body["error"])
	assert.NotContains(t, rec.Body.String(), "request body too large")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "16", rec.Header().Get("X-Max-Body-Size"))
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestHTTPMetrics(t *testing.T) {
	recorder := &httpRecorder{}
	router := gin.New()
	router.Use(HTTPMetrics(recorder))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, []string{"GET /health", "GET unmatched"}, recorder.endpoints)
	assert.Equal(t, []string{"200", "404"}, recorder.statuses)
}
