package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dszqbsm/xiagu-crawler/cmd/appmsg"
	"github.com/dszqbsm/xiagu-crawler/cmd/extract"
	"github.com/dszqbsm/xiagu-crawler/cmd/search"
	"github.com/dszqbsm/xiagu-crawler/version"
	"github.com/spf13/cobra"
)

// crawler appmsg  通过公众号后台接口列出报价文章
// crawler search  通过搜狗微信搜索列出文章
// crawler extract 逐篇打开文章提取价格表
// 三个子命令之间只通过文件传递数据

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer()
	},
}

func Execute() {
	var rootCmd = &cobra.Command{
		Use:           "crawler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "config.toml", "set config file")
	rootCmd.AddCommand(appmsg.AppMsgCmd, search.SearchCmd, extract.ExtractCmd, versionCmd)

	// Ctrl+C时取消上下文，已经抓到的数据仍会写出
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
