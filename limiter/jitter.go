package limiter

import (
	"context"
	"math/rand"
	"time"
)

// 阻塞等待一段时间，上下文结束时提前返回
type Waiter interface {
	Wait(ctx context.Context) error
}

/*
随机延时策略：每次等待[Min, Max]区间内均匀分布的一段时间，模拟人工浏览的节奏

零值表示不等待，测试中直接使用零值即可跳过所有延时
*/
type Jitter struct {
	Min time.Duration
	Max time.Duration
}

var NoDelay = Jitter{}

func NewJitter(minDelay, maxDelay time.Duration) Jitter {
	if maxDelay < minDelay {
		minDelay, maxDelay = maxDelay, minDelay
	}
	return Jitter{Min: minDelay, Max: maxDelay}
}

// 计算本次等待的时长
func (j Jitter) Duration() time.Duration {
	if j.Max <= j.Min {
		return j.Min
	}
	return j.Min + time.Duration(rand.Int63n(int64(j.Max-j.Min)+1))
}

/*
输入一个上下文，输出一个错误

按随机时长阻塞当前协程，上下文提前结束时返回上下文的错误
*/
func (j Jitter) Wait(ctx context.Context) error {
	d := j.Duration()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
