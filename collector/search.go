package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/dszqbsm/xiagu-crawler/article"
	"github.com/dszqbsm/xiagu-crawler/config"
	"github.com/dszqbsm/xiagu-crawler/limiter"
	"github.com/dszqbsm/xiagu-crawler/parse/wechat"
	"go.uber.org/zap"
)

// 通过搜狗微信搜索翻页抓取文章链接，页面由浏览器渲染

var ErrNoBrowser = errors.New("browser is required")

type SearchLister struct {
	cfg config.Search
	options
}

func NewSearchLister(cfg config.Search, opts ...Option) (*SearchLister, error) {
	defaults := options{}
	for _, d := range []struct {
		r   config.Range
		dst *limiter.Waiter
	}{
		{cfg.LoadDelay, &defaults.loadDelay},
		{cfg.ItemDelay, &defaults.itemDelay},
		{cfg.PageDelay, &defaults.pageDelay},
	} {
		minDelay, maxDelay, err := d.r.Durations()
		if err != nil {
			return nil, fmt.Errorf("search delay: %w", err)
		}
		*d.dst = limiter.NewJitter(minDelay, maxDelay)
	}

	o := newOptions(defaults, opts...)
	if o.browser == nil {
		return nil, ErrNoBrowser
	}
	return &SearchLister{cfg: cfg, options: o}, nil
}

func (s *SearchLister) pageURL(page int) string {
	return fmt.Sprintf(s.cfg.URLTemplate, url.QueryEscape(s.cfg.Keyword), page)
}

// 输出文件按关键词命名
func (s *SearchLister) OutputPath() string {
	return filepath.Join(s.cfg.OutputDir, s.cfg.Keyword+"_article_links.csv")
}

/*
输入上下文，输出抓取到的文章引用

依次打开第1到MaxPages页，某一页没有任何结果容器时停止（最后一页和验证码页无法区分）；
单条结果提取失败只记录日志并跳过；每条结果之后和每页之后分别随机等待一段时间
*/
func (s *SearchLister) Fetch(ctx context.Context) []article.Ref {
	var refs []article.Ref

	for page := 1; page <= s.cfg.MaxPages; page++ {
		pageURL := s.pageURL(page)
		s.logger.Info("crawl search page", zap.Int("page", page), zap.String("url", pageURL))

		if err := s.browser.Navigate(ctx, pageURL); err != nil {
			s.logger.Error("open search page failed", zap.Int("page", page), zap.Error(err))
			break
		}
		if err := s.loadDelay.Wait(ctx); err != nil {
			break
		}

		markup, err := s.browser.Markup(ctx, "body")
		if err != nil {
			s.logger.Error("read search page failed", zap.Int("page", page), zap.Error(err))
			break
		}

		pageRefs, itemErrs, err := wechat.ParseSearchResults(markup, pageURL, page)
		if err != nil {
			s.logger.Error("parse search page failed", zap.Int("page", page), zap.Error(err))
			break
		}
		if len(pageRefs) == 0 && len(itemErrs) == 0 {
			s.logger.Warn("no results on page, last page reached or captcha required", zap.Int("page", page))
			break
		}

		for _, itemErr := range itemErrs {
			s.logger.Warn("extract search result failed", zap.Error(itemErr))
		}

		for _, ref := range pageRefs {
			refs = append(refs, ref)
			s.logger.Info("got article",
				zap.String("title", ref.Title),
				zap.String("account", ref.Account),
			)
			if err := s.itemDelay.Wait(ctx); err != nil {
				return refs
			}
		}

		if err := s.pageDelay.Wait(ctx); err != nil {
			break
		}
	}
	return refs
}

// 抓取并写出title,link,account,page四列的CSV
func (s *SearchLister) Run(ctx context.Context) ([]article.Ref, error) {
	refs := s.Fetch(ctx)
	output := s.OutputPath()
	if err := article.WriteSearchLinks(output, refs); err != nil {
		return refs, err
	}
	s.logger.Info("search links saved", zap.Int("count", len(refs)), zap.String("output", output))
	return refs, ctx.Err()
}
