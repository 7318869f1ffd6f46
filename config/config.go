package config

import (
	"fmt"
	"time"

	"github.com/go-micro/plugins/v4/config/encoder/toml"
	"go-micro.dev/v4/config"
	"go-micro.dev/v4/config/reader"
	"go-micro.dev/v4/config/reader/json"
	"go-micro.dev/v4/config/source"
	"go-micro.dev/v4/config/source/file"
)

// 三个抓取程序共用的配置，由config.toml加载，命令行参数可以覆盖其中的部分字段

// 随机延时区间，toml中写作"2s"、"500ms"这样的字符串
type Range struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// 解析为时长，格式错误时返回错误
func (r Range) Durations() (time.Duration, time.Duration, error) {
	minDelay, err := parseDuration(r.Min)
	if err != nil {
		return 0, 0, err
	}
	maxDelay, err := parseDuration(r.Max)
	if err != nil {
		return 0, 0, err
	}
	return minDelay, maxDelay, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

type Fetcher struct {
	Timeout    string   `json:"timeout"`
	UserAgent  string   `json:"userAgent"`
	Proxy      []string `json:"proxy"`
	Headless   bool     `json:"headless"`
	ChromePath string   `json:"chromePath"`
}

// 公众号后台文章列表接口，cookie、token、fingerprint会过期，需要从浏览器中重新复制
type AppMsg struct {
	Endpoint    string `json:"endpoint"`
	FakeID      string `json:"fakeid"`
	Token       string `json:"token"`
	Cookie      string `json:"cookie"`
	Fingerprint string `json:"fingerprint"`
	PageSize    int    `json:"pageSize"`
	MaxOffset   int    `json:"maxOffset"`
	Output      string `json:"output"`
	PageDelay   Range  `json:"pageDelay"`
	// 每EventDur秒最多请求EventCount次，EventCount为0时不限速
	EventCount int `json:"eventCount"`
	EventDur   int `json:"eventDur"`
}

type Search struct {
	Keyword     string `json:"keyword"`
	MaxPages    int    `json:"maxPages"`
	URLTemplate string `json:"urlTemplate"`
	OutputDir   string `json:"outputDir"`
	LoadDelay   Range  `json:"loadDelay"`
	ItemDelay   Range  `json:"itemDelay"`
	PageDelay   Range  `json:"pageDelay"`
}

type Extract struct {
	Input           string `json:"input"`
	Output          string `json:"output"`
	ContentSelector string `json:"contentSelector"`
	WaitTimeout     string `json:"waitTimeout"`
	LoadDelay       Range  `json:"loadDelay"`
	ArticleDelay    Range  `json:"articleDelay"`
}

type Storage struct {
	SQLURL     string `json:"sqlURL"`
	BatchCount int    `json:"batchCount"`
	Reset      bool   `json:"reset"`
}

type Config struct {
	LogLevel string  `json:"logLevel"`
	LogFile  string  `json:"logFile"`
	Fetcher  Fetcher `json:"fetcher"`
	AppMsg   AppMsg  `json:"appmsg"`
	Search   Search  `json:"search"`
	Extract  Extract `json:"extract"`
	Storage  Storage `json:"storage"`
}

// 所有字段的默认值，与抓取目标网站当前的页面结构对应
func Default() Config {
	return Config{
		LogLevel: "INFO",
		Fetcher: Fetcher{
			Timeout:  "30s",
			Headless: true,
		},
		AppMsg: AppMsg{
			Endpoint:  "https://mp.weixin.qq.com/cgi-bin/appmsg",
			FakeID:    "MzkyMTY0Nzg4Mg==",
			PageSize:  4,
			MaxOffset: 12,
			Output:    "虾谷龙虾报价_articles.csv",
			PageDelay: Range{Min: "2s", Max: "5s"},
		},
		Search: Search{
			Keyword:     "虾谷订阅号2024",
			MaxPages:    5,
			URLTemplate: "https://weixin.sogou.com/weixin?query=%s&type=2&page=%d&ie=utf8",
			OutputDir:   ".",
			LoadDelay:   Range{Min: "2s", Max: "5s"},
			ItemDelay:   Range{Min: "500ms", Max: "2s"},
			PageDelay:   Range{Min: "3s", Max: "7s"},
		},
		Extract: Extract{
			Input:           "虾谷龙虾报价_articles.csv",
			Output:          "虾谷订阅号_价格数据.json",
			ContentSelector: "#js_content",
			WaitTimeout:     "10s",
			LoadDelay:       Range{Min: "2s", Max: "4s"},
			ArticleDelay:    Range{Min: "3s", Max: "6s"},
		},
		Storage: Storage{
			BatchCount: 20,
		},
	}
}

/*
输入toml配置文件路径，输出配置和错误

先填充默认值，再用go-micro config按toml格式读取文件覆盖，文件中没有出现的字段保持默认值
*/
func Load(path string) (Config, error) {
	c := Default()

	enc := toml.NewEncoder()
	cfg, err := config.NewConfig(config.WithReader(json.NewReader(reader.WithEncoder(enc))))
	if err != nil {
		return c, err
	}
	defer cfg.Close()

	if err := cfg.Load(file.NewSource(
		file.WithPath(path),
		source.WithEncoder(enc),
	)); err != nil {
		return c, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := cfg.Scan(&c); err != nil {
		return c, fmt.Errorf("scan config %s: %w", path, err)
	}
	return c, c.Validate()
}

// 检查时长格式和取值范围
func (c Config) Validate() error {
	timeouts := []struct {
		name  string
		value string
	}{
		{"fetcher.timeout", c.Fetcher.Timeout},
		{"extract.waitTimeout", c.Extract.WaitTimeout},
	}
	// 超时为0时浏览器的每个动作都会立即失败
	for _, t := range timeouts {
		d, err := parseDuration(t.value)
		if err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %q", t.name, t.value)
		}
	}
	ranges := map[string]Range{
		"appmsg.pageDelay":     c.AppMsg.PageDelay,
		"search.loadDelay":     c.Search.LoadDelay,
		"search.itemDelay":     c.Search.ItemDelay,
		"search.pageDelay":     c.Search.PageDelay,
		"extract.loadDelay":    c.Extract.LoadDelay,
		"extract.articleDelay": c.Extract.ArticleDelay,
	}
	for name, r := range ranges {
		if _, _, err := r.Durations(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.AppMsg.PageSize <= 0 {
		return fmt.Errorf("appmsg.pageSize must be positive, got %d", c.AppMsg.PageSize)
	}
	if c.Search.MaxPages < 0 {
		return fmt.Errorf("search.maxPages must not be negative, got %d", c.Search.MaxPages)
	}
	return nil
}

func (c Config) FetchTimeout() time.Duration {
	d, _ := parseDuration(c.Fetcher.Timeout)
	return d
}

func (c Config) WaitTimeout() time.Duration {
	d, _ := parseDuration(c.Extract.WaitTimeout)
	return d
}
