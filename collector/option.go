package collector

import (
	"github.com/dszqbsm/xiagu-crawler/article"
	"github.com/dszqbsm/xiagu-crawler/fetcher"
	"github.com/dszqbsm/xiagu-crawler/limiter"
	"go.uber.org/zap"
)

// 提取结果的额外存储，例如写入MySQL
type Storage interface {
	Save(records ...*article.Record) error
	Flush() error
}

// 三个抓取程序共用的依赖项，各程序在构造时填入自己的默认延时
type options struct {
	logger      *zap.Logger
	fetcher     fetcher.Fetcher
	browser     fetcher.Browser
	rateLimiter limiter.RateLimiter
	storage     Storage
	loadDelay   limiter.Waiter // 打开页面后等待加载
	itemDelay   limiter.Waiter // 每条结果或每篇文章之后
	pageDelay   limiter.Waiter // 每页之后
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithFetcher(f fetcher.Fetcher) Option {
	return func(opts *options) {
		opts.fetcher = f
	}
}

func WithBrowser(b fetcher.Browser) Option {
	return func(opts *options) {
		opts.browser = b
	}
}

func WithRateLimiter(l limiter.RateLimiter) Option {
	return func(opts *options) {
		opts.rateLimiter = l
	}
}

func WithStorage(s Storage) Option {
	return func(opts *options) {
		opts.storage = s
	}
}

func WithLoadDelay(w limiter.Waiter) Option {
	return func(opts *options) {
		opts.loadDelay = w
	}
}

func WithItemDelay(w limiter.Waiter) Option {
	return func(opts *options) {
		opts.itemDelay = w
	}
}

func WithPageDelay(w limiter.Waiter) Option {
	return func(opts *options) {
		opts.pageDelay = w
	}
}

// 测试中使用，去掉所有随机延时
func WithoutDelay() Option {
	return func(opts *options) {
		opts.loadDelay = limiter.NoDelay
		opts.itemDelay = limiter.NoDelay
		opts.pageDelay = limiter.NoDelay
	}
}

func newOptions(defaults options, opts ...Option) options {
	o := defaults
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.rateLimiter == nil {
		o.rateLimiter = limiter.Unlimited()
	}
	for _, opt := range opts {
		opt(&o)
	}
	for _, w := range []*limiter.Waiter{&o.loadDelay, &o.itemDelay, &o.pageDelay} {
		if *w == nil {
			*w = limiter.NoDelay
		}
	}
	return o
}
