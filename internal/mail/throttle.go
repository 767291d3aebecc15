package mail

import (
	"context"

	"golang.org/x/time/rate"

	"mustip/backend/internal/domain"
)

// ThrottledSender 按服务商限额控制发信速率
type ThrottledSender struct {
	next    Sender
	limiter *rate.Limiter
}

// NewThrottledSender 包装 Sender，每秒最多 perSecond 封，突发 burst 封
//
// perSecond <= 0 时不限速。
func NewThrottledSender(next Sender, perSecond float64, burst int) *ThrottledSender {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &ThrottledSender{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Send 等待令牌后投递，等待期间请求取消则返回上下文错误
func (t *ThrottledSender) Send(ctx context.Context, msg domain.EmailMessage) (*SendResult, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, newDispatchError(0, map[string]any{"message": "send throttled"}, err)
	}
	return t.next.Send(ctx, msg)
}
