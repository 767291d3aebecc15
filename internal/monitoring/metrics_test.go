package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	// 每次新建独立注册表，重复创建不会 panic
	first := NewMetrics(nil)
	second := NewMetrics(nil)
	assert.NotSame(t, first.Registry(), second.Registry())

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	assert.Same(t, reg, m.Registry())
}

func TestMetrics_Recorders(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordHTTPRequest("POST", "/api/contact", "200", 15*time.Millisecond, 512)
	m.RecordHTTPRequest("POST", "/api/contact", "429", time.Millisecond, 512)
	m.RecordInquiry("delivered")
	m.RecordInquiry("delivered")
	m.RecordInquiry("honeypot")
	m.RecordMailSend("office", "success", 120*time.Millisecond)
	m.RecordMailSend("auto_reply", "failure", 80*time.Millisecond)
	m.RecordRateLimitBlock("contact")
	m.RecordRateLimitBackendError("upstash")
	m.RecordPanic()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/contact", "429")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.InquiriesTotal.WithLabelValues("delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InquiriesTotal.WithLabelValues("honeypot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailSendsTotal.WithLabelValues("auto_reply", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitBlocks.WithLabelValues("contact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitBackendErrors.WithLabelValues("upstash")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PanicsTotal))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequestsTotal))
}

func TestMetrics_HTTPHandler(t *testing.T) {
	m := NewMetrics(nil)
	m.RecordInquiry("rate_limited")

	rec := httptest.NewRecorder()
	m.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mustip_inquiries_total{outcome="rate_limited"} 1`)
	assert.Contains(t, string(body), "mustip_system_uptime_seconds")
	assert.Contains(t, string(body), "go_goroutines")
}
