package appmsg

import (
	"github.com/dszqbsm/xiagu-crawler/cmd/setup"
	"github.com/dszqbsm/xiagu-crawler/collector"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var AppMsgCmd = &cobra.Command{
	Use:   "appmsg",
	Short: "list price articles through the official account api.",
	Long:  "list price articles through the official account api and write title,link csv.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd)
	},
}

var (
	fakeID      string
	token       string
	cookie      string
	fingerprint string
	output      string
)

func init() {
	AppMsgCmd.Flags().StringVar(&fakeID, "fakeid", "", "set account fakeid")
	AppMsgCmd.Flags().StringVar(&token, "token", "", "set auth token")
	AppMsgCmd.Flags().StringVar(&cookie, "cookie", "", "set cookie header")
	AppMsgCmd.Flags().StringVar(&fingerprint, "fingerprint", "", "set fingerprint")
	AppMsgCmd.Flags().StringVarP(&output, "output", "o", "", "set output csv path")
}

func Run(cmd *cobra.Command) error {
	env, err := setup.Load(cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	logger := env.Logger

	cfg := env.Config.AppMsg
	flags := cmd.Flags()
	if flags.Changed("fakeid") {
		cfg.FakeID = fakeID
	}
	if flags.Changed("token") {
		cfg.Token = token
	}
	if flags.Changed("cookie") {
		cfg.Cookie = cookie
	}
	if flags.Changed("fingerprint") {
		cfg.Fingerprint = fingerprint
	}
	if flags.Changed("output") {
		cfg.Output = output
	}
	if cfg.Token == "" || cfg.Cookie == "" {
		logger.Warn("token or cookie is empty, the api will most likely reject the request")
	}

	lister, err := collector.NewAppMsgLister(cfg,
		collector.WithLogger(logger.Named("appmsg")),
		collector.WithFetcher(env.Fetcher()),
		collector.WithRateLimiter(env.RateLimiter()),
	)
	if err != nil {
		logger.Error("create appmsg lister failed", zap.Error(err))
		return err
	}

	result, err := lister.Run(cmd.Context())
	if err != nil {
		logger.Error("appmsg run failed", zap.Error(err))
		return err
	}
	logger.Info("appmsg done",
		zap.Int("articles", len(result.Refs)),
		zap.Stringer("stop", result.Stop),
		zap.String("output", cfg.Output),
	)
	return nil
}
