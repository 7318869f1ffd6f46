package extract

import (
	"errors"

	"github.com/dszqbsm/xiagu-crawler/cmd/setup"
	"github.com/dszqbsm/xiagu-crawler/collector"
	"github.com/dszqbsm/xiagu-crawler/fetcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "extract price tables from listed articles.",
	Long:  "open every listed article in a headless chrome, parse its price table and write json.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd)
	},
}

var (
	input  string
	output string
)

func init() {
	ExtractCmd.Flags().StringVarP(&input, "input", "i", "", "set input csv path")
	ExtractCmd.Flags().StringVarP(&output, "output", "o", "", "set output json path")
}

var newBrowser = func(env *setup.Env) (fetcher.Browser, error) {
	return env.Browser()
}

/*
输入当前子命令，输出一个error

浏览器和数据库连接在任何返回路径上都会被关闭，提取结果即使出错也会先写出JSON
*/
func Run(cmd *cobra.Command) error {
	env, err := setup.Load(cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	logger := env.Logger

	cfg := env.Config.Extract
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = input
	}
	if flags.Changed("output") {
		cfg.Output = output
	}

	opts := []collector.Option{collector.WithLogger(logger.Named("extract"))}

	storage, err := env.Storage()
	switch {
	case err == nil:
		defer storage.Close()
		opts = append(opts, collector.WithStorage(storage))
	case errors.Is(err, setup.ErrNoStorage):
	default:
		logger.Error("create sqlstorage failed", zap.Error(err))
		return err
	}

	browser, err := newBrowser(env)
	if err != nil {
		logger.Error("start browser failed", zap.Error(err))
		return err
	}
	defer browser.Close()
	opts = append(opts, collector.WithBrowser(browser))

	extractor, err := collector.NewExtractor(cfg, env.Config.WaitTimeout(), opts...)
	if err != nil {
		logger.Error("create extractor failed", zap.Error(err))
		return err
	}

	if _, err := extractor.Run(cmd.Context()); err != nil {
		logger.Error("extract run failed", zap.Error(err))
		return err
	}
	return nil
}
