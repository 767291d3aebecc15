package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mustip/backend/internal/domain"
)

// DefaultResendEndpoint Resend 发信接口
const DefaultResendEndpoint = "https://api.resend.com/emails"

// ResendConfig Resend 客户端参数
type ResendConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// ResendSender 通过 Resend HTTP API 投递邮件
type ResendSender struct {
	apiKey   string
	endpoint string
	http     *http.Client
	log      *zap.Logger
	newKey   func() string
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// NewResendSender 创建 Resend 投递器
func NewResendSender(cfg ResendConfig, log *zap.Logger) (*ResendSender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("resend: api key is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultResendEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &ResendSender{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      log,
		newKey:   uuid.NewString,
	}, nil
}

// Send 投递一封邮件
//
// 非 2xx 响应返回 *DispatchError，Detail 为响应体解析出的 JSON 对象。
func (s *ResendSender) Send(ctx context.Context, msg domain.EmailMessage) (*SendResult, error) {
	payload, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.TextBody,
		HTML:    msg.HTMLBody,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return nil, newDispatchError(0, nil, fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, newDispatchError(0, nil, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", s.newKey())

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, newDispatchError(0, nil, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := map[string]any{}
		if err := json.Unmarshal(body, &detail); err != nil {
			detail = map[string]any{}
		}
		s.log.Warn("resend rejected message",
			zap.Int("status", resp.StatusCode),
			zap.Any("detail", detail),
		)
		return nil, newDispatchError(resp.StatusCode, detail, nil)
	}

	var out resendResponse
	_ = json.Unmarshal(body, &out)
	return &SendResult{ID: out.ID}, nil
}
