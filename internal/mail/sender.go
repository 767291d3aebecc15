package mail

import (
	"context"
	"fmt"

	"mustip/backend/internal/domain"
)

// Sender 邮件投递接口，每封邮件只尝试一次，不做重试
type Sender interface {
	Send(ctx context.Context, msg domain.EmailMessage) (*SendResult, error)
}

// SendResult 投递成功后服务商返回的信息
type SendResult struct {
	ID string
}

// DispatchError 投递失败
//
// Detail 为服务商返回的错误内容，无法解析时为空 map，
// 会原样放入 500 响应的 detail 字段。
type DispatchError struct {
	StatusCode int
	Detail     map[string]any
	Err        error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mail dispatch failed (status %d): %v", e.StatusCode, e.Err)
	}
	if msg, ok := e.Detail["message"].(string); ok && msg != "" {
		return fmt.Sprintf("mail dispatch failed (status %d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("mail dispatch failed (status %d)", e.StatusCode)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// newDispatchError 构造 DispatchError，保证 Detail 非 nil
func newDispatchError(status int, detail map[string]any, err error) *DispatchError {
	if detail == nil {
		detail = map[string]any{}
	}
	return &DispatchError{StatusCode: status, Detail: detail, Err: err}
}
