package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// 默认配置: 每 5 秒发放 1 个令牌。早期版本注释声称 1 次/秒, 与实际的
// 5 秒周期不符; 这里统一按 5 秒周期执行, 可通过配置调整。
const (
	DefaultTokens   = 1
	DefaultInterval = 5 * time.Second
)

// Limiter 是一个令牌桶限流器, 所有对外的 API 调用 (分页拉取、下单)
// 都必须先取得令牌。整个会话共享同一个实例。
type Limiter struct {
	rl *rate.Limiter
}

// New 创建一个限流器: 每个 interval 周期发放 tokens 个令牌,
// 桶容量等于 tokens。参数非法时退回默认值。
func New(tokens int, interval time.Duration) *Limiter {
	if tokens <= 0 {
		tokens = DefaultTokens
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter{
		rl: rate.NewLimiter(rate.Every(interval/time.Duration(tokens)), tokens),
	}
}

// NewDefault 按默认速率 (1 个令牌/5 秒) 创建限流器。
func NewDefault() *Limiter {
	return New(DefaultTokens, DefaultInterval)
}

// Acquire 阻塞直到取得一个令牌。ctx 取消时立即返回其错误。
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.rl.Wait(ctx)
}
