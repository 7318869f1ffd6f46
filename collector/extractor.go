package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dszqbsm/xiagu-crawler/article"
	"github.com/dszqbsm/xiagu-crawler/config"
	"github.com/dszqbsm/xiagu-crawler/fetcher"
	"github.com/dszqbsm/xiagu-crawler/limiter"
	"github.com/dszqbsm/xiagu-crawler/parse/wechat"
	"go.uber.org/zap"
)

// 逐篇打开文章，解析正文中的价格表

// 文章被跳过的原因
type SkipReason int

const (
	SkipNoDateInTitle SkipReason = iota + 1
	SkipFetchFailed
	SkipContentTimeout
	SkipNoTableFound
	SkipTableTooShort
	SkipMissingHeaders
)

func (r SkipReason) String() string {
	switch r {
	case SkipNoDateInTitle:
		return "no_date_in_title"
	case SkipFetchFailed:
		return "fetch_failed"
	case SkipContentTimeout:
		return "content_timeout"
	case SkipNoTableFound:
		return "no_table_found"
	case SkipTableTooShort:
		return "table_too_short"
	case SkipMissingHeaders:
		return "missing_headers"
	default:
		return "unknown"
	}
}

type SkipError struct {
	Reason SkipReason
	Title  string
	Link   string
	Err    error
}

func (e *SkipError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("skip %q: %s", e.Title, e.Reason)
	}
	return fmt.Sprintf("skip %q: %s: %v", e.Title, e.Reason, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

// 一次提取的汇总
type Report struct {
	Total   int
	Records []article.Record
	Skipped map[SkipReason]int
}

type Extractor struct {
	cfg         config.Extract
	waitTimeout time.Duration
	options
}

func NewExtractor(cfg config.Extract, waitTimeout time.Duration, opts ...Option) (*Extractor, error) {
	loadMin, loadMax, err := cfg.LoadDelay.Durations()
	if err != nil {
		return nil, fmt.Errorf("extract load delay: %w", err)
	}
	articleMin, articleMax, err := cfg.ArticleDelay.Durations()
	if err != nil {
		return nil, fmt.Errorf("extract article delay: %w", err)
	}

	o := newOptions(options{
		loadDelay: limiter.NewJitter(loadMin, loadMax),
		itemDelay: limiter.NewJitter(articleMin, articleMax),
	}, opts...)
	if o.browser == nil {
		return nil, ErrNoBrowser
	}
	return &Extractor{cfg: cfg, waitTimeout: waitTimeout, options: o}, nil
}

func (e *Extractor) skip(ref article.Ref, reason SkipReason, err error) error {
	return &SkipError{Reason: reason, Title: ref.Title, Link: ref.Link, Err: err}
}

/*
输入上下文和一篇文章引用，输出价格记录和错误

标题中没有日期时不打开页面直接跳过；打开页面后在超时时间内等待正文容器出现，读取正文HTML并解析第一个表格。
可以跳过的情况返回*SkipError，上下文取消时返回上下文的错误
*/
func (e *Extractor) Process(ctx context.Context, ref article.Ref) (*article.Record, error) {
	date, ok := wechat.ExtractDate(ref.Title)
	if !ok {
		return nil, e.skip(ref, SkipNoDateInTitle, nil)
	}

	if err := e.browser.Navigate(ctx, ref.Link); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, e.skip(ref, SkipFetchFailed, err)
	}
	if err := e.loadDelay.Wait(ctx); err != nil {
		return nil, err
	}

	if err := e.browser.WaitFor(ctx, e.cfg.ContentSelector, e.waitTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, fetcher.ErrWaitTimeout) {
			return nil, e.skip(ref, SkipContentTimeout, err)
		}
		return nil, e.skip(ref, SkipFetchFailed, err)
	}

	markup, err := e.browser.Markup(ctx, e.cfg.ContentSelector)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, e.skip(ref, SkipFetchFailed, err)
	}

	rows, err := wechat.ParsePriceTable(markup)
	switch {
	case err == nil:
	case errors.Is(err, wechat.ErrNoTableFound):
		return nil, e.skip(ref, SkipNoTableFound, err)
	case errors.Is(err, wechat.ErrTableTooShort):
		return nil, e.skip(ref, SkipTableTooShort, err)
	case errors.Is(err, wechat.ErrMissingHeaders):
		return nil, e.skip(ref, SkipMissingHeaders, err)
	default:
		return nil, e.skip(ref, SkipFetchFailed, err)
	}

	return &article.Record{
		Date:      date,
		Title:     ref.Title,
		Link:      ref.Link,
		PriceRows: rows,
	}, nil
}

/*
输入上下文和文章引用列表，输出汇总和错误

按输入顺序逐篇处理，成功的记录追加到汇总并交给存储；打开过页面的文章无论成功与否都会随机等待一段时间。
只有上下文取消才会提前返回错误，此时汇总中保留已经处理的结果
*/
func (e *Extractor) Extract(ctx context.Context, refs []article.Ref) (Report, error) {
	report := Report{
		Total:   len(refs),
		Records: []article.Record{},
		Skipped: make(map[SkipReason]int),
	}

	for i, ref := range refs {
		e.logger.Info("process article",
			zap.Int("index", i+1),
			zap.Int("total", len(refs)),
			zap.String("title", ref.Title),
		)

		record, err := e.Process(ctx, ref)
		var skipErr *SkipError
		switch {
		case err == nil:
			report.Records = append(report.Records, *record)
			e.logger.Info("price data extracted",
				zap.String("title", ref.Title),
				zap.String("date", record.Date),
				zap.Int("rows", len(record.PriceRows)),
			)
			if e.storage != nil {
				if err := e.storage.Save(record); err != nil {
					e.logger.Error("save record failed", zap.String("title", ref.Title), zap.Error(err))
				}
			}
		case errors.As(err, &skipErr):
			report.Skipped[skipErr.Reason]++
			e.logger.Warn("skip article",
				zap.Stringer("reason", skipErr.Reason),
				zap.String("title", ref.Title),
				zap.String("link", ref.Link),
				zap.Error(skipErr.Err),
			)
			if skipErr.Reason == SkipNoDateInTitle {
				continue
			}
		default:
			return report, err
		}

		if err := e.itemDelay.Wait(ctx); err != nil {
			return report, err
		}
	}
	return report, nil
}

/*
输入上下文，输出汇总和错误

读取输入CSV，逐篇提取后把结果写成JSON数组；即使中途被取消也会写出已经提取到的记录，并刷新存储
*/
func (e *Extractor) Run(ctx context.Context) (Report, error) {
	refs, err := article.ReadRefs(e.cfg.Input)
	if err != nil {
		return Report{}, err
	}

	report, runErr := e.Extract(ctx, refs)

	var flushErr error
	if e.storage != nil {
		flushErr = e.storage.Flush()
	}
	writeErr := article.WriteRecords(e.cfg.Output, report.Records)

	fields := []zap.Field{
		zap.Int("total", report.Total),
		zap.Int("extracted", len(report.Records)),
		zap.String("output", e.cfg.Output),
	}
	for reason, n := range report.Skipped {
		fields = append(fields, zap.Int("skip_"+reason.String(), n))
	}
	e.logger.Info("extract finished", fields...)

	return report, errors.Join(runErr, flushErr, writeErr)
}
