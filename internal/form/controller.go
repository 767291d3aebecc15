// Package form 实现联系表单的客户端状态机。
//
// Controller 持有表单字段和提交状态，提交前执行与服务端一致的校验，
// 提交失败时保留已填写的内容供用户修改后重试。
package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mustip/backend/internal/domain"
	"mustip/backend/internal/i18n"
)

// ErrSubmitInProgress 上一次提交尚未完成
var ErrSubmitInProgress = errors.New("form: submission already in progress")

// State 表单状态
type State int

const (
	Idle State = iota
	Submitting
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// Status 当前状态及要展示的消息
type Status struct {
	State   State
	Message string
	// AutoReplyFailed 提交成功但确认邮件未发出
	AutoReplyFailed bool
}

// Fields 表单字段，与接口请求体一致
type Fields struct {
	Name        string             `json:"name" yaml:"name"`
	Email       string             `json:"email" yaml:"email"`
	Phone       string             `json:"phone,omitempty" yaml:"phone"`
	Category    string             `json:"category" yaml:"category"`
	ReplyMethod domain.ReplyMethod `json:"replyMethod" yaml:"replyMethod"`
	Message     string             `json:"message" yaml:"message"`
	Link        string             `json:"link,omitempty" yaml:"link"`
	Consent     bool               `json:"consent" yaml:"consent"`
	// Honeypot 隐藏字段，真实用户始终提交空值
	Honeypot string `json:"hp" yaml:"-"`
}

type submitRequest struct {
	Fields
	Locale domain.Locale `json:"locale"`
}

type submitResponse struct {
	OK              bool   `json:"ok"`
	Error           string `json:"error"`
	AutoReplyFailed bool   `json:"auto_reply_failed"`
}

// Controller 联系表单控制器，可被多个 goroutine 安全使用
type Controller struct {
	mu       sync.Mutex
	endpoint string
	http     *http.Client
	msgs     *i18n.Messages
	log      *zap.Logger
	fields   Fields
	status   Status
}

// Option 控制器选项
type Option func(*Controller)

// WithHTTPClient 替换默认 HTTP 客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Controller) { c.http = hc }
}

// WithLogger 设置日志记录器
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// NewController 创建表单控制器
//
// 参数:
//   - endpoint: 联系表单接口完整地址，例如 https://example.com/api/contact
//   - locale: 界面语言，决定提示文案和分类列表
func NewController(endpoint string, locale domain.Locale, opts ...Option) *Controller {
	c := &Controller{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		msgs:     i18n.Resolve(locale),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.fields = c.blankFields()
	return c
}

func (c *Controller) blankFields() Fields {
	f := Fields{ReplyMethod: domain.ReplyByEmail}
	if len(c.msgs.Categories) > 0 {
		f.Category = c.msgs.Categories[0]
	}
	return f
}

// Categories 当前语言的咨询分类
func (c *Controller) Categories() []string {
	return append([]string(nil), c.msgs.Categories...)
}

// Fields 返回字段副本
func (c *Controller) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}

// Status 返回当前状态
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Update 修改字段，不改变当前状态（错误提示在修改期间保持可见）
func (c *Controller) Update(fn func(*Fields)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.fields)
}

// CanSubmit 字段是否满足提交条件
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return canSubmit(c.fields)
}

func canSubmit(f Fields) bool {
	email := strings.TrimSpace(f.Email)
	return strings.TrimSpace(f.Name) != "" &&
		email != "" && domain.IsValidEmail(email) &&
		strings.TrimSpace(f.Category) != "" &&
		strings.TrimSpace(f.Message) != "" &&
		f.Consent
}

// Submit 提交表单
//
// 字段不满足条件时直接进入 Error 状态，不发出请求；
// 已在提交中时返回 ErrSubmitInProgress。其余情况返回提交后的状态。
func (c *Controller) Submit(ctx context.Context) (Status, error) {
	c.mu.Lock()
	if c.status.State == Submitting {
		c.mu.Unlock()
		return Status{}, ErrSubmitInProgress
	}
	if !canSubmit(c.fields) {
		c.status = Status{State: Error, Message: c.msgs.ValidationError}
		st := c.status
		c.mu.Unlock()
		return st, nil
	}
	c.status = Status{State: Submitting}
	payload := submitRequest{Fields: c.fields, Locale: c.msgs.Locale}
	c.mu.Unlock()

	st := c.post(ctx, payload)

	c.mu.Lock()
	c.status = st
	c.mu.Unlock()
	return st, nil
}

func (c *Controller) post(ctx context.Context, payload submitRequest) Status {
	body, err := json.Marshal(payload)
	if err != nil {
		return Status{State: Error, Message: c.msgs.GenericError}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		c.log.Warn("failed to build contact request", zap.Error(err))
		return Status{State: Error, Message: c.msgs.NetworkError}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("contact request failed", zap.Error(err))
		return Status{State: Error, Message: c.msgs.NetworkError}
	}
	defer resp.Body.Close()

	var out submitResponse
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil {
		err = json.Unmarshal(raw, &out)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := c.msgs.SendError
		if err == nil && out.Error != "" {
			msg = out.Error
		}
		c.log.Info("contact submission rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("error", out.Error),
		)
		return Status{State: Error, Message: msg}
	}

	if err != nil {
		c.log.Debug("ignoring unreadable success body", zap.Error(err))
	}
	return Status{
		State:           Success,
		Message:         c.msgs.SuccessMessage,
		AutoReplyFailed: out.AutoReplyFailed,
	}
}

// Reset 开始新的咨询：清空字段并回到 Idle
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = c.blankFields()
	c.status = Status{State: Idle}
}

// String 便于日志输出
func (s Status) String() string {
	if s.Message == "" {
		return s.State.String()
	}
	return fmt.Sprintf("%s: %s", s.State, s.Message)
}
