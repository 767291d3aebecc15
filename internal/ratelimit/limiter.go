// Package ratelimit 实现按客户端 IP 计数的固定窗口限流。
//
// 计数保存在外部存储（REST 计数服务、Redis 或进程内存）中，
// 存储不可用时限流器放行请求（fail-open），保证咨询入口可用。
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// RemainingUnknown 剩余次数未知（未启用限流或存储故障）
const RemainingUnknown = -1

// 默认窗口参数：10 分钟内最多 5 次，键的过期时间比窗口多 30 秒
const (
	DefaultWindow    = 600 * time.Second
	DefaultMax       = 5
	DefaultTTLBuffer = 30 * time.Second
)

// Verdict 一次限流检查的结果
type Verdict struct {
	Limited   bool
	Remaining int
}

// Limiter 限流器接口
type Limiter interface {
	// Check 对 clientIP 计数并返回是否超限，从不返回错误
	Check(ctx context.Context, clientIP string) Verdict
	// Window 窗口长度，用于 Retry-After 响应头
	Window() time.Duration
	// Limit 每个窗口允许的最大请求数，0 表示不限
	Limit() int
}

// Counter 支持原子自增与过期的计数存储
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// Recorder 接收限流事件，通常由监控模块实现
type Recorder interface {
	RecordRateLimitBlock(scope string)
	RecordRateLimitBackendError(backend string)
}

// NullLimiter 未配置存储时使用，始终放行
type NullLimiter struct {
	window time.Duration
}

// NewNullLimiter 创建始终放行的限流器
func NewNullLimiter(window time.Duration) *NullLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &NullLimiter{window: window}
}

// Check 始终放行
func (l *NullLimiter) Check(context.Context, string) Verdict {
	return Verdict{Limited: false, Remaining: RemainingUnknown}
}

func (l *NullLimiter) Window() time.Duration { return l.window }

func (l *NullLimiter) Limit() int { return 0 }

// Options 固定窗口限流参数
type Options struct {
	Window    time.Duration
	Max       int
	TTLBuffer time.Duration
	// Backend 存储名称，仅用于日志和指标
	Backend string
}

// WindowedLimiter 基于外部计数存储的固定窗口限流器
type WindowedLimiter struct {
	counter  Counter
	opts     Options
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
}

// NewWindowedLimiter 创建固定窗口限流器
//
// 参数:
//   - counter: 计数存储
//   - opts: 窗口参数，零值使用默认值
//   - logger: 日志记录器，可为 nil
func NewWindowedLimiter(counter Counter, opts Options, logger *zap.Logger) *WindowedLimiter {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Max <= 0 {
		opts.Max = DefaultMax
	}
	if opts.TTLBuffer <= 0 {
		opts.TTLBuffer = DefaultTTLBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WindowedLimiter{
		counter: counter,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// SetRecorder 设置事件记录器
func (l *WindowedLimiter) SetRecorder(r Recorder) {
	l.recorder = r
}

// SetClock 替换时间来源（测试用）
func (l *WindowedLimiter) SetClock(now func() time.Time) {
	l.now = now
}

func (l *WindowedLimiter) Window() time.Duration { return l.opts.Window }

func (l *WindowedLimiter) Limit() int { return l.opts.Max }

// Check 对当前窗口计数并判断是否超限
//
// 同一个 10 分钟纪元内的所有请求共享一个计数；第一次自增时设置过期时间。
// 存储出错时放行并记录告警。
func (l *WindowedLimiter) Check(ctx context.Context, clientIP string) Verdict {
	index := WindowIndex(l.now(), l.opts.Window)
	key := StoreKey(clientIP, index)

	count, err := l.counter.Incr(ctx, key)
	if err != nil {
		l.logger.Warn("rate limit store unavailable, allowing request",
			zap.String("backend", l.opts.Backend),
			zap.Error(err),
		)
		if l.recorder != nil {
			l.recorder.RecordRateLimitBackendError(l.opts.Backend)
		}
		return Verdict{Limited: false, Remaining: RemainingUnknown}
	}

	if count == 1 {
		ttl := l.opts.Window + l.opts.TTLBuffer
		if err := l.counter.Expire(ctx, key, ttl); err != nil {
			l.logger.Warn("failed to set rate limit expiry",
				zap.String("backend", l.opts.Backend),
				zap.Duration("ttl", ttl),
				zap.Error(err),
			)
		}
	}

	remaining := l.opts.Max - int(count)
	if remaining < 0 {
		remaining = 0
	}

	limited := count > int64(l.opts.Max)
	if limited && l.recorder != nil {
		l.recorder.RecordRateLimitBlock("contact")
	}

	return Verdict{Limited: limited, Remaining: remaining}
}

// WindowIndex 当前时间所在的窗口序号：unix 秒整除窗口秒数
func WindowIndex(now time.Time, window time.Duration) int64 {
	seconds := int64(window / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	return now.Unix() / seconds
}

// RawKey 未编码的计数键
func RawKey(clientIP string, windowIndex int64) string {
	return fmt.Sprintf("rl:contact:%s:%d", clientIP, windowIndex)
}

// StoreKey 编码后的存储键，IPv6 中的冒号等字符都会被转义
func StoreKey(clientIP string, windowIndex int64) string {
	return url.QueryEscape(RawKey(clientIP, windowIndex))
}
