// 命令行入口：
// - 无参数运行：下载表格导出并写入 data/decks.json（下载失败时退出码非 0）
// - render：读取快照生成静态页面（可选构建时探测卡图）
// - list：在终端输出推导后的视图
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-magic-lair/internal/cardimg"
	"go-magic-lair/internal/config"
	"go-magic-lair/internal/fetch"
	"go-magic-lair/internal/logx"
	"go-magic-lair/internal/pipeline"
	"go-magic-lair/internal/site"
	"go-magic-lair/internal/snapshot"
	"go-magic-lair/internal/view"
)

type app struct {
	configPath string
	envPath    string
	output     string
	cfg        *config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logx.Errorf("运行失败：%v", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "magic-lair",
		Short:         "Fetch the deck banlist spreadsheet and write the JSON snapshot",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.ingest(cmd.Context())
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "settings.yaml", "path to settings.yaml (optional)")
	pf.StringVar(&a.envPath, "env", ".env", "path to .env (optional)")
	pf.StringVar(&a.output, "output", "", "snapshot path (default from OUTPUT)")

	root.AddCommand(a.renderCmd(), a.listCmd())
	return root
}

// load 读取配置并初始化日志：级别/格式/语言/颜色。
func (a *app) load() error {
	cfg, err := config.Load(a.configPath, a.envPath)
	if err != nil {
		return err
	}
	logx.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogLocale, cfg.LogColor)
	if a.output == "" {
		a.output = cfg.Output
	}
	a.cfg = cfg
	return nil
}

func (a *app) client(retry int) (*fetch.Client, error) {
	return fetch.New(fetch.Options{
		ProxyHTTP:  a.cfg.Proxy.HTTP,
		ProxyHTTPS: a.cfg.Proxy.HTTPS,
		Timeout:    a.cfg.Fetch.Wait,
		Retry:      retry,
	})
}

func (a *app) ingest(ctx context.Context) error {
	cl, err := a.client(a.cfg.Fetch.Retry)
	if err != nil {
		return fmt.Errorf("http client: %w", err)
	}
	st, err := pipeline.New(a.cfg, cl, nil).Run(ctx, a.output)
	if err != nil {
		return err
	}
	logx.Infof("处理完成：卡组=%d 跳过=%d 重名=%d", st.Decks, st.Skipped, st.Duplicates)
	logx.Infof("快照已写入：%s", st.Output)
	return nil
}

func (a *app) renderCmd() *cobra.Command {
	var (
		outDir string
		probe  bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the static gallery from the snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			decks, err := snapshot.Load(a.output)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = a.cfg.Site.OutDir
			}
			opts := site.Options{
				BasePath:     a.cfg.BasePath(),
				Title:        a.cfg.Site.Title,
				Subtitle:     a.cfg.Site.Subtitle,
				ImageTimeout: a.cfg.Site.ImageWait,
			}
			if probe {
				cl, err := a.client(0)
				if err != nil {
					return fmt.Errorf("http client: %w", err)
				}
				opts.ImageStates = cardimg.Probe(cmd.Context(), cl, decks, a.cfg.Site.ImageWait)
			}
			path, err := site.Build(outDir, decks, opts)
			if err != nil {
				return err
			}
			logx.Infof("页面已生成：%s（卡组=%d）", path, len(decks))
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default from SITE.out_dir)")
	cmd.Flags().BoolVar(&probe, "probe-images", false, "request every card image and render failures as placeholders")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var sortBy, query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the derived gallery view to the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opt, err := view.ParseSort(sortBy)
			if err != nil {
				return err
			}
			decks, err := snapshot.Load(a.output)
			if err != nil {
				return err
			}
			v := view.Derive(decks, view.Options{Sort: opt, Query: query})
			return site.WriteTerminal(cmd.OutOrStdout(), a.cfg.Site.Title+" · "+a.cfg.Site.Subtitle, v)
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", string(view.SortAlphabetical), "alphabetical|last-updated")
	cmd.Flags().StringVar(&query, "search", "", "case-insensitive name filter")
	return cmd
}
