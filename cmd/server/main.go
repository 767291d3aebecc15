package main

// @title MUST IP Contact API
// @version 1.0.0
// @description 머스트 특허법률사무소 홈페이지 문의 접수 API
// @contact.name MUST IP
// @contact.email mustip@mustip.co.kr
// @BasePath /
// @schemes http https

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mustip/backend/internal/config"
	"mustip/backend/internal/health"
	"mustip/backend/internal/logger"
	"mustip/backend/internal/mail"
	"mustip/backend/internal/monitoring"
	"mustip/backend/internal/ratelimit"
	"mustip/backend/internal/security"
	"mustip/backend/internal/service"
	"mustip/backend/internal/storage/memory"
	redisstore "mustip/backend/internal/storage/redis"
	"mustip/backend/internal/storage/upstash"
	httptransport "mustip/backend/internal/transport/http"

	_ "mustip/backend/docs" // Swagger docs
)

const version = "1.0.0"

// main 启动联系表单 HTTP 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Service:     "mustip-contact",
		LogFile:     cfg.Log.File,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting contact server",
		zap.String("version", version),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化监控系统
	metrics := monitoring.NewMetrics(nil)

	// 初始化限流
	limiter, store, closeStore := initializeRateLimiter(cfg, log, metrics)
	defer closeStore()

	// 初始化发信
	mailReady := cfg.Mail.Ready()
	sender, err := initializeSender(cfg, log)
	if err != nil {
		log.Warn("mail dispatch disabled", zap.Error(err))
		mailReady = false
	}

	composer := &mail.Composer{
		Firm: mail.Firm{
			NameKO:  cfg.Firm.NameKO,
			NameEN:  cfg.Firm.NameEN,
			Phone:   cfg.Firm.Phone,
			Email:   cfg.Firm.Email,
			Website: cfg.Firm.Website,
		},
		MailFrom:      cfg.Mail.From,
		MailTo:        cfg.Mail.To,
		AutoReplyFrom: cfg.Mail.AutoReplyFrom,
	}

	inquiryService := service.NewInquiryService(service.InquiryServiceOptions{
		Limiter:   limiter,
		Sender:    sender,
		Composer:  composer,
		MailReady: mailReady,
		Logger:    log,
		Recorder:  metrics,
	})

	// 初始化健康检查
	healthChecker := health.NewHealthChecker(health.Options{
		Store:     store,
		MailReady: func() bool { return mailReady },
		Timeout:   cfg.RateLimit.Timeout,
		Logger:    log,
	})

	router, err := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:         cfg,
		InquiryService: inquiryService,
		Health:         healthChecker,
		Metrics:        metrics,
		Fingerprinter:  security.NewFingerprinter(cfg.Security.FingerprintSecret),
		Logger:         log,
	})
	if err != nil {
		log.Fatal("failed to build router", zap.Error(err))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}
		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}

// initializeRateLimiter 按配置选择限流计数存储
//
// auto 模式下依次尝试 REST 计数服务和 Redis，都未配置时不限流。
// 返回的 Pinger 用于就绪检查，未启用存储时为 nil。
func initializeRateLimiter(cfg *config.Config, log *zap.Logger, metrics *monitoring.Metrics) (ratelimit.Limiter, health.Pinger, func()) {
	rl := cfg.RateLimit
	noop := func() {}

	backend := rl.Backend
	if backend == config.BackendAuto {
		switch {
		case rl.UpstashURL != "" && rl.UpstashToken != "":
			backend = config.BackendUpstash
		case cfg.Redis.Address != "":
			backend = config.BackendRedis
		default:
			backend = config.BackendNone
		}
	}

	var (
		counter ratelimit.Counter
		closer  = noop
	)

	switch backend {
	case config.BackendUpstash:
		client, err := upstash.New(upstash.Config{
			URL:     rl.UpstashURL,
			Token:   rl.UpstashToken,
			Timeout: rl.Timeout,
		}, log)
		if err != nil {
			log.Warn("rate limit store unavailable, requests will not be limited",
				zap.String("backend", backend), zap.Error(err))
			return ratelimit.NewNullLimiter(rl.Window), nil, noop
		}
		counter = client
	case config.BackendRedis:
		client, err := redisstore.New(redisstore.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
		if err != nil {
			log.Warn("rate limit store unavailable, requests will not be limited",
				zap.String("backend", backend), zap.Error(err))
			return ratelimit.NewNullLimiter(rl.Window), nil, noop
		}
		counter = client
		closer = func() { _ = client.Close() }
	case config.BackendMemory:
		counter = memory.NewCounter(rl.MemoryMaxKeys)
	default:
		log.Warn("rate limiting disabled: no counter store configured")
		return ratelimit.NewNullLimiter(rl.Window), nil, noop
	}

	limiter := ratelimit.NewWindowedLimiter(counter, ratelimit.Options{
		Window:    rl.Window,
		Max:       rl.Max,
		TTLBuffer: rl.TTLBuffer,
		Backend:   backend,
	}, log)
	limiter.SetRecorder(metrics)

	log.Info("rate limiting enabled",
		zap.String("backend", backend),
		zap.Duration("window", limiter.Window()),
		zap.Int("max", limiter.Limit()),
	)
	return limiter, counter, closer
}

// initializeSender 按配置创建发信通道，配置不完整时返回 nil
func initializeSender(cfg *config.Config, log *zap.Logger) (mail.Sender, error) {
	mc := cfg.Mail
	if !mc.Ready() {
		return nil, errors.New("mail configuration is incomplete")
	}

	var (
		sender mail.Sender
		err    error
	)
	switch mc.Transport {
	case config.TransportSMTP:
		sender, err = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     mc.SMTPHost,
			Port:     mc.SMTPPort,
			Username: mc.SMTPUser,
			Password: mc.SMTPPass,
			Security: mc.SMTPSecurity,
			Timeout:  mc.Timeout,
		}, log)
	default:
		sender, err = mail.NewResendSender(mail.ResendConfig{
			APIKey:   mc.ResendAPIKey,
			Endpoint: mc.ResendEndpoint,
			Timeout:  mc.Timeout,
		}, log)
	}
	if err != nil {
		return nil, err
	}

	log.Info("mail dispatch configured",
		zap.String("transport", mc.Transport),
		zap.Float64("send_rate", mc.SendRate),
	)
	return mail.NewThrottledSender(sender, mc.SendRate, mc.SendBurst), nil
}
