package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	err error
}

func (f fakeStore) Ping(context.Context) error { return f.err }

func TestHealthChecker_Ready(t *testing.T) {
	tests := []struct {
		name      string
		store     Pinger
		mailReady bool
		want      int
	}{
		{"全部正常", fakeStore{}, true, http.StatusOK},
		{"未启用限流", nil, true, http.StatusOK},
		{"存储不可用", fakeStore{err: errors.New("dial tcp: refused")}, true, http.StatusServiceUnavailable},
		{"发信未配置", fakeStore{}, false, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker(Options{
				Store:     tt.store,
				MailReady: func() bool { return tt.mailReady },
			})

			rec := httptest.NewRecorder()
			hc.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHealthChecker_Live(t *testing.T) {
	hc := NewHealthChecker(Options{Store: fakeStore{err: errors.New("down")}})

	rec := httptest.NewRecorder()
	hc.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthChecker_CheckHealth(t *testing.T) {
	hc := NewHealthChecker(Options{
		Store:     fakeStore{err: errors.New("down")},
		MailReady: func() bool { return true },
	})

	results := hc.CheckHealth()

	assert.Equal(t, "ERROR: down", results["ratelimit_store"])
	assert.Equal(t, "OK", results["mail"])
	assert.Equal(t, "OK", results["system"])
	assert.NotEmpty(t, results["timestamp"])

	disabled := NewHealthChecker(Options{}).CheckHealth()
	assert.Equal(t, "DISABLED", disabled["ratelimit_store"])
	assert.Equal(t, "NOT_CONFIGURED", disabled["mail"])
}
