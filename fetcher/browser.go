package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// 等待页面元素超时
var ErrWaitTimeout = errors.New("wait for element timeout")

// 浏览器能力抽象，列表程序与提取程序只依赖这三个操作，便于替换实现和在测试中模拟
type Browser interface {
	// 打开页面
	Navigate(ctx context.Context, url string) error
	// 在timeout内等待selector对应的元素出现，超时返回ErrWaitTimeout
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// 返回selector对应元素的innerHTML
	Markup(ctx context.Context, selector string) (string, error)
	Close() error
}

type browserOptions struct {
	headless  bool
	proxy     string
	userAgent string
	timeout   time.Duration
	execPath  string
	logger    *zap.Logger
}

var defaultBrowserOptions = browserOptions{
	headless: true,
	timeout:  30 * time.Second,
	logger:   zap.NewNop(),
}

type BrowserOption func(opts *browserOptions)

func WithHeadless(headless bool) BrowserOption {
	return func(opts *browserOptions) {
		opts.headless = headless
	}
}

// 代理服务器地址，如http://127.0.0.1:8888
func WithBrowserProxy(proxy string) BrowserOption {
	return func(opts *browserOptions) {
		opts.proxy = proxy
	}
}

func WithUserAgent(ua string) BrowserOption {
	return func(opts *browserOptions) {
		opts.userAgent = ua
	}
}

// 单次导航和读取页面内容的超时时间
func WithPageTimeout(timeout time.Duration) BrowserOption {
	return func(opts *browserOptions) {
		opts.timeout = timeout
	}
}

// Chrome可执行文件路径，为空时由chromedp自动查找
func WithExecPath(path string) BrowserOption {
	return func(opts *browserOptions) {
		opts.execPath = path
	}
}

func WithBrowserLogger(logger *zap.Logger) BrowserOption {
	return func(opts *browserOptions) {
		opts.logger = logger
	}
}

// 基于chromedp驱动本机Chrome，整个运行过程只使用一个标签页
type ChromeBrowser struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	browserOptions
}

/*
输入若干浏览器选项，输出一个ChromeBrowser实例和错误

按选项组装Chrome启动参数（禁用GPU、关闭沙箱、忽略证书错误等），启动浏览器并打开一个空白标签页；启动失败时释放已分配的资源并返回错误
*/
func NewChromeBrowser(opts ...BrowserOption) (*ChromeBrowser, error) {
	options := defaultBrowserOptions
	for _, opt := range opts {
		opt(&options)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", options.headless),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("ignore-ssl-errors", true),
		chromedp.Flag("allow-insecure-localhost", true),
	)
	if options.proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(options.proxy))
	}
	if options.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(options.userAgent))
	}
	if options.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(options.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(options.logger.Sugar().Debugf),
		chromedp.WithErrorf(options.logger.Sugar().Errorf),
	)

	// 第一次Run时才真正启动浏览器
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome failed:%w", err)
	}

	b := &ChromeBrowser{
		ctx:            tabCtx,
		cancelTab:      cancelTab,
		cancelAlloc:    cancelAlloc,
		browserOptions: options,
	}
	return b, nil
}

// 在标签页上下文中执行动作，调用方的ctx取消或超时都会中断动作
func (b *ChromeBrowser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (b *ChromeBrowser) Navigate(ctx context.Context, url string) error {
	b.logger.Debug("navigate", zap.String("url", url))
	if err := b.run(ctx, b.timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s failed:%w", url, err)
	}
	return nil
}

func (b *ChromeBrowser) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	err := b.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrWaitTimeout, selector, timeout)
	}
	return err
}

func (b *ChromeBrowser) Markup(ctx context.Context, selector string) (string, error) {
	var html string
	if err := b.run(ctx, b.timeout, chromedp.InnerHTML(selector, &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read %s failed:%w", selector, err)
	}
	return html, nil
}

// 关闭标签页并退出浏览器进程，可以重复调用
func (b *ChromeBrowser) Close() error {
	var err error
	if b.ctx != nil && b.ctx.Err() == nil {
		err = chromedp.Cancel(b.ctx)
	}
	b.cancelTab()
	b.cancelAlloc()
	return err
}
