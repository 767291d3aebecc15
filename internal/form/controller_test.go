package form

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mustip/backend/internal/domain"
	"mustip/backend/internal/i18n"
)

func fillValid(f *Fields) {
	f.Name = "Kim"
	f.Email = "kim@example.com"
	f.Message = "상표 출원 문의드립니다."
	f.Consent = true
}

func TestController_InitialState(t *testing.T) {
	c := NewController("http://unused", domain.LocaleEN)
	msgs := i18n.Resolve(domain.LocaleEN)

	assert.Equal(t, Idle, c.Status().State)
	assert.Equal(t, msgs.Categories[0], c.Fields().Category)
	assert.Equal(t, domain.ReplyByEmail, c.Fields().ReplyMethod)
	assert.Equal(t, msgs.Categories, c.Categories())
	assert.False(t, c.CanSubmit())
}

func TestController_CanSubmit(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Fields)
		want   bool
	}{
		{"全部有效", func(f *Fields) {}, true},
		{"缺少姓名", func(f *Fields) { f.Name = "  " }, false},
		{"邮箱格式错误", func(f *Fields) { f.Email = "kim@example" }, false},
		{"未选择分类", func(f *Fields) { f.Category = "" }, false},
		{"缺少内容", func(f *Fields) { f.Message = "" }, false},
		{"未同意", func(f *Fields) { f.Consent = false }, false},
		{"电话可选", func(f *Fields) { f.Phone = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController("http://unused", domain.LocaleKO)
			c.Update(fillValid)
			c.Update(tt.modify)
			assert.Equal(t, tt.want, c.CanSubmit())
		})
	}
}

func TestController_SubmitBlockedWithoutRequest(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	c := NewController(server.URL, domain.LocaleKO)
	st, err := c.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Error, st.State)
	assert.Equal(t, i18n.Resolve(domain.LocaleKO).ValidationError, st.Message)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestController_SubmitSuccessAndReset(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"auto_reply_failed":true}`))
	}))
	defer server.Close()

	c := NewController(server.URL, domain.LocaleEN)
	c.Update(fillValid)
	c.Update(func(f *Fields) { f.ReplyMethod = domain.ReplyByPhone })

	st, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Success, st.State)
	assert.True(t, st.AutoReplyFailed)
	assert.Equal(t, "en", received["locale"])
	assert.Equal(t, "phone", received["replyMethod"])
	assert.Equal(t, true, received["consent"])
	hp, ok := received["hp"]
	assert.True(t, ok, "hp must always be posted")
	assert.Equal(t, "", hp)

	c.Reset()
	assert.Equal(t, Idle, c.Status().State)
	assert.Empty(t, c.Fields().Name)
	assert.False(t, c.Fields().Consent)
	assert.Equal(t, domain.ReplyByEmail, c.Fields().ReplyMethod)
	assert.Equal(t, i18n.Resolve(domain.LocaleEN).Categories[0], c.Fields().Category)
}

func TestController_SubmitServerError(t *testing.T) {
	t.Run("使用服务端消息", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"ok":false,"error":"too many"}`))
		}))
		defer server.Close()

		c := NewController(server.URL, domain.LocaleKO)
		c.Update(fillValid)
		st, err := c.Submit(context.Background())

		require.NoError(t, err)
		assert.Equal(t, Error, st.State)
		assert.Equal(t, "too many", st.Message)
		// 出错后保留已填写的内容
		assert.Equal(t, "Kim", c.Fields().Name)
		assert.True(t, c.CanSubmit())
	})

	t.Run("无法解析时使用默认消息", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer server.Close()

		c := NewController(server.URL, domain.LocaleKO)
		c.Update(fillValid)
		st, err := c.Submit(context.Background())

		require.NoError(t, err)
		assert.Equal(t, i18n.Resolve(domain.LocaleKO).SendError, st.Message)
	})
}

func TestController_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewController(url, domain.LocaleEN)
	c.Update(fillValid)
	st, err := c.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Error, st.State)
	assert.Equal(t, i18n.Resolve(domain.LocaleEN).NetworkError, st.Message)
}

func TestController_SubmitInProgress(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := NewController(server.URL, domain.LocaleKO)
	c.Update(fillValid)

	done := make(chan Status, 1)
	go func() {
		st, _ := c.Submit(context.Background())
		done <- st
	}()

	<-started
	assert.Equal(t, Submitting, c.Status().State)
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(release)
	assert.Equal(t, Success, (<-done).State)
}
