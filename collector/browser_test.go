package collector

import (
	"context"
	"errors"
	"time"
)

// 按URL返回预置页面的浏览器
type fakeBrowser struct {
	pages   map[string]string
	navErr  map[string]error
	waitErr map[string]error

	current string
	visited []string
	waits   []string
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		pages:   make(map[string]string),
		navErr:  make(map[string]error),
		waitErr: make(map[string]error),
	}
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.visited = append(b.visited, url)
	if err := b.navErr[url]; err != nil {
		return err
	}
	b.current = url
	return nil
}

func (b *fakeBrowser) WaitFor(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.waits = append(b.waits, selector)
	return b.waitErr[b.current]
}

func (b *fakeBrowser) Markup(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	page, ok := b.pages[b.current]
	if !ok {
		return "", errors.New("page not found")
	}
	return page, nil
}

func (b *fakeBrowser) Close() error { return nil }

// 只记录调用次数的延时
type countWaiter struct {
	n int
}

func (w *countWaiter) Wait(ctx context.Context) error {
	w.n++
	return ctx.Err()
}
