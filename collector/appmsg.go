package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/dszqbsm/xiagu-crawler/article"
	"github.com/dszqbsm/xiagu-crawler/config"
	"github.com/dszqbsm/xiagu-crawler/fetcher"
	"github.com/dszqbsm/xiagu-crawler/limiter"
	"github.com/dszqbsm/xiagu-crawler/parse/wechat"
	"go.uber.org/zap"
)

// 直接调用公众号后台的文章列表接口，按偏移量翻页，筛选出报价文章

// 翻页结束的原因
type StopReason int

const (
	StopMaxOffset  StopReason = iota // 达到偏移量上限
	StopEmpty                        // 接口返回空列表，没有更多文章
	StopStatus                       // HTTP状态码不是200
	StopAPIError                     // base_resp.ret不为0
	StopFetchError                   // 网络错误或响应无法解析
	StopCanceled                     // 上下文被取消
)

func (r StopReason) String() string {
	switch r {
	case StopMaxOffset:
		return "max_offset"
	case StopEmpty:
		return "empty"
	case StopStatus:
		return "http_status"
	case StopAPIError:
		return "api_error"
	case StopFetchError:
		return "fetch_error"
	case StopCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

type AppMsgResult struct {
	Refs   []article.Ref
	Stop   StopReason
	Offset int // 停止时的偏移量
	Total  int // 接口返回的公众号文章总数
}

type AppMsgLister struct {
	cfg config.AppMsg
	options
}

/*
输入接口配置和可选依赖，输出文章列表抓取器

未指定采集器时使用默认的BaseFetch，翻页之间的默认随机延时取自配置
*/
func NewAppMsgLister(cfg config.AppMsg, opts ...Option) (*AppMsgLister, error) {
	minDelay, maxDelay, err := cfg.PageDelay.Durations()
	if err != nil {
		return nil, fmt.Errorf("appmsg page delay: %w", err)
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("appmsg page size must be positive, got %d", cfg.PageSize)
	}

	o := newOptions(options{pageDelay: limiter.NewJitter(minDelay, maxDelay)}, opts...)
	if o.fetcher == nil {
		o.fetcher = &fetcher.BaseFetch{Timeout: 30 * time.Second, Logger: o.logger}
	}
	return &AppMsgLister{cfg: cfg, options: o}, nil
}

func (l *AppMsgLister) request(offset int) *fetcher.Request {
	query := url.Values{}
	query.Set("action", "list_ex")
	query.Set("fakeid", l.cfg.FakeID)
	query.Set("query", "")
	query.Set("begin", strconv.Itoa(offset))
	query.Set("count", strconv.Itoa(l.cfg.PageSize))
	query.Set("type", "9")
	query.Set("need_author_name", "1")
	query.Set("fingerprint", l.cfg.Fingerprint)
	query.Set("token", l.cfg.Token)
	query.Set("lang", "zh_CN")
	query.Set("f", "json")
	query.Set("ajax", "1")

	return &fetcher.Request{
		URL:     l.cfg.Endpoint,
		Query:   query,
		Cookie:  l.cfg.Cookie,
		Referer: "https://mp.weixin.qq.com/cgi-bin/appmsg?t=media/appmsg_edit_v2&action=edit&isNew=1&type=10&lang=zh_CN&token=" + url.QueryEscape(l.cfg.Token),
	}
}

/*
输入上下文，输出抓取结果

从偏移量0开始，每次请求PageSize篇文章，依次检查：状态码不为200时终止；ret不为0时终止；列表为空时停止且不再增加偏移量；
偏移量达到MaxOffset时停止。循环中的任何错误只会提前结束翻页，已经收集到的文章照常返回，最后按发布时间从新到旧排序
*/
func (l *AppMsgLister) Fetch(ctx context.Context) AppMsgResult {
	var result AppMsgResult
	offset := 0

	for page := 1; ; page++ {
		if err := l.rateLimiter.Wait(ctx); err != nil {
			result.Stop = stopReasonOf(ctx, StopFetchError)
			l.logger.Error("rate limiter wait failed", zap.Error(err))
			break
		}

		l.logger.Info("fetch appmsg page", zap.Int("page", page), zap.Int("begin", offset))
		body, err := l.fetcher.Get(ctx, l.request(offset))
		if err != nil {
			var statusErr *fetcher.StatusError
			if errors.As(err, &statusErr) {
				result.Stop = StopStatus
				l.logger.Error("appmsg request failed", zap.Int("status", statusErr.Code))
			} else {
				result.Stop = stopReasonOf(ctx, StopFetchError)
				l.logger.Error("appmsg request failed", zap.Error(err))
			}
			break
		}

		var resp wechat.AppMsgResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			result.Stop = StopFetchError
			l.logger.Error("decode appmsg response failed", zap.Error(err))
			break
		}
		if resp.BaseResp.Ret != 0 {
			result.Stop = StopAPIError
			l.logger.Error("appmsg api error",
				zap.Int("ret", resp.BaseResp.Ret),
				zap.String("err_msg", resp.BaseResp.ErrMsg),
			)
			break
		}

		if page == 1 {
			result.Total = resp.AppMsgCnt
			l.logger.Info("appmsg total", zap.Int("app_msg_cnt", resp.AppMsgCnt))
		}

		if len(resp.AppMsgList) == 0 {
			result.Stop = StopEmpty
			l.logger.Info("no more articles", zap.Int("begin", offset))
			break
		}

		for _, msg := range resp.AppMsgList {
			if !wechat.MatchPriceTitle(msg.Title) {
				continue
			}
			result.Refs = append(result.Refs, article.Ref{
				Title:      msg.Title,
				Link:       msg.Link,
				CreateTime: msg.CreateTime,
			})
			l.logger.Info("got article", zap.String("title", msg.Title))
		}

		offset += l.cfg.PageSize

		if err := l.pageDelay.Wait(ctx); err != nil {
			result.Stop = stopReasonOf(ctx, StopFetchError)
			break
		}

		if offset >= l.cfg.MaxOffset {
			result.Stop = StopMaxOffset
			l.logger.Info("reached max offset", zap.Int("begin", offset))
			break
		}
	}

	result.Offset = offset
	sort.SliceStable(result.Refs, func(i, j int) bool {
		return result.Refs[i].CreateTime > result.Refs[j].CreateTime
	})
	return result
}

// 抓取并写出title,link两列的CSV，接口出错只会提前结束翻页；写文件失败或被取消时返回错误
func (l *AppMsgLister) Run(ctx context.Context) (AppMsgResult, error) {
	result := l.Fetch(ctx)
	if err := article.WriteLinks(l.cfg.Output, result.Refs); err != nil {
		return result, err
	}
	l.logger.Info("appmsg links saved",
		zap.Int("count", len(result.Refs)),
		zap.String("output", l.cfg.Output),
		zap.Stringer("stop", result.Stop),
	)
	return result, ctx.Err()
}

func stopReasonOf(ctx context.Context, fallback StopReason) StopReason {
	if ctx.Err() != nil {
		return StopCanceled
	}
	return fallback
}
