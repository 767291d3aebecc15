// Package upstash 封装通过 HTTPS 访问的 Redis 兼容 REST 计数服务。
//
// 每条命令是一次 POST 请求，请求体为 {"command": [...]}，
// 使用 Bearer Token 认证，响应为 {"result": ...} 或 {"error": "..."}。
package upstash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured URL 或 Token 缺失
var ErrNotConfigured = errors.New("upstash: url and token are required")

// Config REST 存储连接参数
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Client REST 命令客户端
type Client struct {
	url   string
	token string
	http  *http.Client
	log   *zap.Logger
}

// CommandError 服务端返回的命令错误
type CommandError struct {
	Command    string
	StatusCode int
	Message    string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("upstash %s failed (status %d): %s", e.Command, e.StatusCode, e.Message)
}

type commandRequest struct {
	Command []string `json:"command"`
}

type commandResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// New 创建 REST 客户端
func New(cfg Config, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		url:   strings.TrimRight(cfg.URL, "/"),
		token: cfg.Token,
		http:  &http.Client{Timeout: cfg.Timeout},
		log:   log,
	}, nil
}

// Do 执行一条命令并返回原始 result
func (c *Client) Do(ctx context.Context, args ...string) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, errors.New("upstash: empty command")
	}
	name := strings.ToUpper(args[0])

	body, err := json.Marshal(commandRequest{Command: args})
	if err != nil {
		return nil, fmt.Errorf("upstash: encode %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("upstash: build %s request: %w", name, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstash: %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("upstash: read %s response: %w", name, err)
	}

	var out commandResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &CommandError{Command: name, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return nil, fmt.Errorf("upstash: decode %s response: %w", name, err)
	}
	if out.Error != "" || resp.StatusCode >= 300 {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &CommandError{Command: name, StatusCode: resp.StatusCode, Message: msg}
	}

	c.log.Debug("upstash command executed", zap.String("command", name))
	return out.Result, nil
}

// Incr 自增计数器
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	result, err := c.Do(ctx, "INCR", key)
	if err != nil {
		return 0, err
	}
	return parseInt(result)
}

// Expire 设置键的过期时间（秒级精度，向上取整）
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	seconds := int64((ttl + time.Second - 1) / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	_, err := c.Do(ctx, "EXPIRE", key, strconv.FormatInt(seconds, 10))
	return err
}

// Ping 测试连接
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, "PING")
	return err
}

// parseInt 解析整数结果，兼容数字和字符串两种编码
func parseInt(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("upstash: unexpected integer result %s", string(raw))
	}
	return strconv.ParseInt(s, 10, 64)
}
