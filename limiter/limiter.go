package limiter

import (
	"context"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// 限速器接口，*rate.Limiter天然满足该接口
type RateLimiter interface {
	Wait(context.Context) error // 阻塞直到拿到令牌或上下文结束
	Limit() rate.Limit
}

// 组合多个限速器，按速率从小到大排列，最严格的排在最前面
func Multi(limiters ...RateLimiter) *multiLimiter {
	sort.Slice(limiters, func(i, j int) bool {
		return limiters[i].Limit() < limiters[j].Limit()
	})
	return &multiLimiter{limiters: limiters}
}

type multiLimiter struct {
	limiters []RateLimiter
}

// 依次等待每个限速器，全部放行才返回
func (l *multiLimiter) Wait(ctx context.Context) error {
	for _, l := range l.limiters {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (l *multiLimiter) Limit() rate.Limit {
	if len(l.limiters) == 0 {
		return rate.Inf
	}
	return l.limiters[0].Limit()
}

// 在duration内允许eventCount次事件，换算为两个令牌之间的间隔
func Per(eventCount int, duration time.Duration) rate.Limit {
	if eventCount <= 0 {
		return rate.Inf
	}
	return rate.Every(duration / time.Duration(eventCount))
}

// 不限速，用于未配置限速规则的场景
func Unlimited() RateLimiter {
	return rate.NewLimiter(rate.Inf, 1)
}
