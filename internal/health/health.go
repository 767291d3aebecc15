package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"
)

// Pinger 可探测连通性的依赖，例如限流计数存储
type Pinger interface {
	Ping(ctx context.Context) error
}

// ErrMailNotReady 发信配置不完整
var ErrMailNotReady = errors.New("mail dispatch is not configured")

// HealthChecker 健康检查器
type HealthChecker struct {
	health    healthcheck.Handler
	store     Pinger
	mailReady func() bool
	timeout   time.Duration
	logger    *zap.Logger
}

// Options 健康检查依赖
type Options struct {
	// Store 限流计数存储，为 nil 时表示未启用限流
	Store Pinger
	// MailReady 发信配置是否完整
	MailReady func() bool
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(opts Options) *HealthChecker {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MailReady == nil {
		opts.MailReady = func() bool { return false }
	}

	hc := &HealthChecker{
		health:    healthcheck.NewHandler(),
		store:     opts.Store,
		mailReady: opts.MailReady,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}

	// 添加健康检查
	hc.addChecks()

	return hc
}

// addChecks 添加健康检查
func (hc *HealthChecker) addChecks() {
	hc.health.AddLivenessCheck("system", func() error {
		return nil
	})

	if hc.store != nil {
		hc.health.AddReadinessCheck("ratelimit-store", healthcheck.Timeout(hc.pingStore, hc.timeout))
	}

	hc.health.AddReadinessCheck("mail-config", hc.checkMail)
}

func (hc *HealthChecker) pingStore() error {
	ctx, cancel := context.WithTimeout(context.Background(), hc.timeout)
	defer cancel()

	if err := hc.store.Ping(ctx); err != nil {
		hc.logger.Warn("rate limit store ping failed", zap.Error(err))
		return err
	}
	return nil
}

func (hc *HealthChecker) checkMail() error {
	if !hc.mailReady() {
		return ErrMailNotReady
	}
	return nil
}

// LiveEndpoint 存活检查
func (hc *HealthChecker) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	hc.health.LiveEndpoint(w, r)
}

// ReadyEndpoint 就绪检查
func (hc *HealthChecker) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	hc.health.ReadyEndpoint(w, r)
}

// CheckHealth 执行健康检查并返回各项状态
func (hc *HealthChecker) CheckHealth() map[string]string {
	results := make(map[string]string)

	if hc.store != nil {
		if err := hc.pingStore(); err != nil {
			results["ratelimit_store"] = fmt.Sprintf("ERROR: %v", err)
		} else {
			results["ratelimit_store"] = "OK"
		}
	} else {
		results["ratelimit_store"] = "DISABLED"
	}

	if hc.mailReady() {
		results["mail"] = "OK"
	} else {
		results["mail"] = "NOT_CONFIGURED"
	}

	results["system"] = "OK"
	results["timestamp"] = time.Now().Format(time.RFC3339)

	return results
}
