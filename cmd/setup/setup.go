package setup

// 三个子命令共用的启动流程：读取配置、初始化日志、创建采集器、浏览器和存储

import (
	"errors"
	"io"
	"time"

	"github.com/dszqbsm/xiagu-crawler/config"
	"github.com/dszqbsm/xiagu-crawler/fetcher"
	"github.com/dszqbsm/xiagu-crawler/limiter"
	"github.com/dszqbsm/xiagu-crawler/log"
	"github.com/dszqbsm/xiagu-crawler/proxy"
	"github.com/dszqbsm/xiagu-crawler/sqlstorage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Env struct {
	Config config.Config
	Logger *zap.Logger

	logCloser io.Closer
}

/*
输入当前子命令，输出运行环境和错误

配置文件路径取自根命令的--config参数，日志级别和日志文件取自配置
*/
func Load(cmd *cobra.Command) (*Env, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, closer, err := log.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	logger.Info("log init end", zap.String("config", path))

	return &Env{Config: cfg, Logger: logger, logCloser: closer}, nil
}

func (e *Env) Close() {
	_ = e.Logger.Sync()
	_ = e.logCloser.Close()
}

// 按配置创建HTTP采集器，代理列表有误时记录错误并直连
func (e *Env) Fetcher() *fetcher.BaseFetch {
	var p proxy.ProxyFunc
	if len(e.Config.Fetcher.Proxy) > 0 {
		var err error
		if p, err = proxy.RoundRobinProxySwitcher(e.Config.Fetcher.Proxy...); err != nil {
			e.Logger.Error("RoundRobinProxySwitcher failed", zap.Error(err))
		}
	}
	e.Logger.Sugar().Info("proxy list: ", e.Config.Fetcher.Proxy, " timeout: ", e.Config.FetchTimeout())

	return &fetcher.BaseFetch{
		Timeout:   e.Config.FetchTimeout(),
		UserAgent: e.Config.Fetcher.UserAgent,
		Proxy:     p,
		Logger:    e.Logger.Named("fetcher"),
	}
}

// 每EventDur秒最多EventCount次请求
func (e *Env) RateLimiter() limiter.RateLimiter {
	c := e.Config.AppMsg
	if c.EventCount <= 0 || c.EventDur <= 0 {
		return limiter.Unlimited()
	}
	return limiter.Multi(
		rate.NewLimiter(limiter.Per(c.EventCount, time.Duration(c.EventDur)*time.Second), 1),
	)
}

// 启动Chrome，浏览器只使用代理列表中的第一个地址
func (e *Env) Browser() (*fetcher.ChromeBrowser, error) {
	opts := []fetcher.BrowserOption{
		fetcher.WithHeadless(e.Config.Fetcher.Headless),
		fetcher.WithUserAgent(e.Config.Fetcher.UserAgent),
		fetcher.WithPageTimeout(e.Config.FetchTimeout()),
		fetcher.WithExecPath(e.Config.Fetcher.ChromePath),
		fetcher.WithBrowserLogger(e.Logger.Named("chrome")),
	}
	if len(e.Config.Fetcher.Proxy) > 0 {
		opts = append(opts, fetcher.WithBrowserProxy(e.Config.Fetcher.Proxy[0]))
	}
	return fetcher.NewChromeBrowser(opts...)
}

var ErrNoStorage = errors.New("storage.sqlURL is empty")

// 配置了数据库地址时创建MySQL存储，否则返回ErrNoStorage
func (e *Env) Storage() (*sqlstorage.SqlStore, error) {
	if e.Config.Storage.SQLURL == "" {
		return nil, ErrNoStorage
	}
	return sqlstorage.New(
		sqlstorage.WithSqlURL(e.Config.Storage.SQLURL),
		sqlstorage.WithLogger(e.Logger.Named("sqlDB")),
		sqlstorage.WithBatchCount(e.Config.Storage.BatchCount),
		sqlstorage.WithReset(e.Config.Storage.Reset),
	)
}
