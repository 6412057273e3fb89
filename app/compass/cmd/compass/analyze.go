package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/logger"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/render"
)

type analyzeOptions struct {
	outPath    string
	jsonOutput bool
	termWidth  int
}

// newAnalyzeCmd 生成关键词的市场分析报告
func newAnalyzeCmd(configPath *string) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <keyword>",
		Short: "Analyze global market demand for a product keyword",
		Long: `Analyze global market demand for a product keyword.

The report covers the top countries by search interest, market trends,
competitors and go-to-market advice for Chinese exporters, and is written
to an HTML file alongside the terminal output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, *configPath, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "output/report.html", "HTML report path (empty to skip)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the result as JSON instead of rendered text")
	cmd.Flags().IntVar(&opts.termWidth, "width", 100, "Terminal word wrap width")
	return cmd
}

func runAnalyze(cmd *cobra.Command, configPath, keyword string, opts *analyzeOptions) error {
	cfg, store, err := setup(configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	eng, err := newEngine(cfg, store)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	result, err := eng.Analyze(ctx, keyword, func(status string, progress int) {
		logger.Log.Debugf("进度 %3d%% %s", progress, status)
	})
	if err != nil {
		return fmt.Errorf("分析失败，请检查网络或稍后重试。: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	} else {
		text, err := render.Terminal(result, opts.termWidth)
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
	}

	if opts.outPath == "" {
		return nil
	}
	if err := writeReport(opts.outPath, result); err != nil {
		return err
	}
	logger.Log.Infof("HTML 报告已生成: %s", opts.outPath)
	return nil
}

func writeReport(path string, result *model.AnalysisResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("无法创建输出目录: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := render.Report(f, result); err != nil {
		return fmt.Errorf("生成 HTML 报告失败: %w", err)
	}
	return nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}
