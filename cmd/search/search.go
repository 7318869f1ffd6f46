package search

import (
	"github.com/dszqbsm/xiagu-crawler/cmd/setup"
	"github.com/dszqbsm/xiagu-crawler/collector"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var SearchCmd = &cobra.Command{
	Use:   "search",
	Short: "scrape article links from sogou weixin search.",
	Long:  "scrape article links from sogou weixin search result pages in a headless chrome.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd)
	},
}

var (
	keyword   string
	maxPages  int
	outputDir string
)

func init() {
	SearchCmd.Flags().StringVarP(&keyword, "keyword", "k", "", "set search keyword")
	SearchCmd.Flags().IntVar(&maxPages, "max-pages", 0, "set max result pages")
	SearchCmd.Flags().StringVar(&outputDir, "output-dir", "", "set output directory")
}

func Run(cmd *cobra.Command) error {
	env, err := setup.Load(cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	logger := env.Logger

	cfg := env.Config.Search
	flags := cmd.Flags()
	if flags.Changed("keyword") {
		cfg.Keyword = keyword
	}
	if flags.Changed("max-pages") {
		cfg.MaxPages = maxPages
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}

	browser, err := env.Browser()
	if err != nil {
		logger.Error("start browser failed", zap.Error(err))
		return err
	}
	defer browser.Close()

	lister, err := collector.NewSearchLister(cfg,
		collector.WithLogger(logger.Named("search")),
		collector.WithBrowser(browser),
	)
	if err != nil {
		logger.Error("create search lister failed", zap.Error(err))
		return err
	}

	refs, err := lister.Run(cmd.Context())
	if err != nil {
		logger.Error("search run failed", zap.Error(err))
		return err
	}
	logger.Info("search done", zap.Int("articles", len(refs)), zap.String("output", lister.OutputPath()))
	return nil
}
