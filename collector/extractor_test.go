package collector

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dszqbsm/xiagu-crawler/article"
	"github.com/dszqbsm/xiagu-crawler/config"
	"github.com/dszqbsm/xiagu-crawler/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodContent = `<section><table>
<tr><td colspan="4">虾谷龙虾报价</td></tr>
<tr><td>品种</td><td>规格</td><td>价格</td><td>对比昨天</td></tr>
<tr><td>小青虾</td><td>3-4cm</td><td>25元/斤</td><td>+2</td></tr>
<tr><td>备注</td><td>仅供参考</td></tr>
</table></section>`

type memStorage struct {
	saved   []*article.Record
	flushed int
}

func (s *memStorage) Save(records ...*article.Record) error {
	s.saved = append(s.saved, records...)
	return nil
}

func (s *memStorage) Flush() error {
	s.flushed++
	return nil
}

func fixtureRefs() []article.Ref {
	return []article.Ref{
		{Title: "2024年6月5日虾谷龙虾报价", Link: "https://mp.weixin.qq.com/s/good"},
		{Title: "虾谷龙虾报价公告", Link: "https://mp.weixin.qq.com/s/notice"},
		{Title: "2024年6月6日虾谷龙虾报价", Link: "https://mp.weixin.qq.com/s/timeout"},
		{Title: "2024年6月7日虾谷龙虾报价", Link: "https://mp.weixin.qq.com/s/notable"},
		{Title: "2024年6月8日虾谷龙虾报价", Link: "https://mp.weixin.qq.com/s/headers"},
		{Title: "2024年6月9日虾谷龙虾报价", Link: "https://mp.weixin.qq.com/s/short"},
		{Title: "2024年6月10日虾谷龙虾报价", Link: "https://mp.weixin.qq.com/s/down"},
	}
}

func fixtureBrowser() *fakeBrowser {
	b := newFakeBrowser()
	b.pages["https://mp.weixin.qq.com/s/good"] = goodContent
	b.waitErr["https://mp.weixin.qq.com/s/timeout"] = fetcher.ErrWaitTimeout
	b.pages["https://mp.weixin.qq.com/s/notable"] = `<p>今日休市</p>`
	b.pages["https://mp.weixin.qq.com/s/headers"] = `<table><tr><td>报价</td></tr><tr><td>品种</td><td>规格</td><td>价格</td><td>涨跌</td></tr></table>`
	b.pages["https://mp.weixin.qq.com/s/short"] = `<table><tr><td>品种</td><td>规格</td><td>价格</td><td>对比昨天</td></tr></table>`
	b.navErr["https://mp.weixin.qq.com/s/down"] = errors.New("net::ERR_NAME_NOT_RESOLVED")
	return b
}

func newExtractor(t *testing.T, b *fakeBrowser, opts ...Option) (*Extractor, config.Extract) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Extract{
		Input:           filepath.Join(dir, "articles.csv"),
		Output:          filepath.Join(dir, "prices.json"),
		ContentSelector: "#js_content",
	}
	e, err := NewExtractor(cfg, time.Second, append([]Option{WithBrowser(b), WithoutDelay()}, opts...)...)
	require.NoError(t, err)
	return e, cfg
}

func TestExtractorProcess(t *testing.T) {
	e, _ := newExtractor(t, fixtureBrowser())

	record, err := e.Process(context.Background(), fixtureRefs()[0])
	require.NoError(t, err)
	assert.Equal(t, &article.Record{
		Date:  "2024-06-05",
		Title: "2024年6月5日虾谷龙虾报价",
		Link:  "https://mp.weixin.qq.com/s/good",
		PriceRows: []article.PriceRow{
			{Variety: "小青虾", Spec: "3-4cm", Price: "25元/斤", CompareToYesterday: "+2"},
		},
	}, record)

	tests := []struct {
		ref  article.Ref
		want SkipReason
	}{
		{fixtureRefs()[1], SkipNoDateInTitle},
		{fixtureRefs()[2], SkipContentTimeout},
		{fixtureRefs()[3], SkipNoTableFound},
		{fixtureRefs()[4], SkipMissingHeaders},
		{fixtureRefs()[5], SkipTableTooShort},
		{fixtureRefs()[6], SkipFetchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			record, err := e.Process(context.Background(), tt.ref)
			assert.Nil(t, record)

			var skipErr *SkipError
			require.ErrorAs(t, err, &skipErr)
			assert.Equal(t, tt.want, skipErr.Reason)
			assert.Equal(t, tt.ref.Link, skipErr.Link)
		})
	}
}

func TestExtractorExtract(t *testing.T) {
	b := fixtureBrowser()
	storage := &memStorage{}
	e, _ := newExtractor(t, b, WithStorage(storage))

	report, err := e.Extract(context.Background(), fixtureRefs())
	require.NoError(t, err)

	assert.Equal(t, 7, report.Total)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "2024-06-05", report.Records[0].Date)
	assert.Equal(t, map[SkipReason]int{
		SkipNoDateInTitle:  1,
		SkipContentTimeout: 1,
		SkipNoTableFound:   1,
		SkipMissingHeaders: 1,
		SkipTableTooShort:  1,
		SkipFetchFailed:    1,
	}, report.Skipped)

	// 标题没有日期的文章不会打开页面
	assert.NotContains(t, b.visited, "https://mp.weixin.qq.com/s/notice")
	assert.Len(t, b.visited, 6)
	assert.Len(t, storage.saved, 1)
}

func TestExtractorRun(t *testing.T) {
	storage := &memStorage{}
	e, cfg := newExtractor(t, fixtureBrowser(), WithStorage(storage))
	require.NoError(t, article.WriteLinks(cfg.Input, fixtureRefs()))

	report, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Records, 1)
	assert.Equal(t, 1, storage.flushed)

	first, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)

	var records []article.Record
	require.NoError(t, json.Unmarshal(first, &records))
	assert.Equal(t, report.Records, records)

	// 输入和页面不变时重复运行结果一致
	e2, _ := newExtractor(t, fixtureBrowser())
	e2.cfg = cfg
	_, err = e2.Run(context.Background())
	require.NoError(t, err)

	second, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestExtractorRunMissingInput(t *testing.T) {
	e, _ := newExtractor(t, fixtureBrowser())
	_, err := e.Run(context.Background())
	assert.Error(t, err)
}

func TestExtractorCanceled(t *testing.T) {
	e, cfg := newExtractor(t, fixtureBrowser())
	require.NoError(t, article.WriteLinks(cfg.Input, fixtureRefs()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Records)

	// 取消时仍然写出空数组
	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestExtractorDelays(t *testing.T) {
	load, after := &countWaiter{}, &countWaiter{}
	e, _ := newExtractor(t, fixtureBrowser(), WithLoadDelay(load), WithItemDelay(after))

	_, err := e.Extract(context.Background(), fixtureRefs())
	require.NoError(t, err)

	// 除标题没有日期的一篇外，每篇文章之后都等待，不论是否提取成功
	assert.Equal(t, 6, after.n)
	// 页面打开成功的文章才等待加载
	assert.Equal(t, 5, load.n)
}
