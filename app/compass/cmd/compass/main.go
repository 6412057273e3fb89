package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/config"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/engine"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/logger"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/storage"
)

var version = "0.1.0"

const defaultConfigPath = "app/compass/configs/config.yaml"

// newEngine 创建引擎，测试中替换为假模型
var newEngine = func(cfg *config.Config, store *storage.Storage) (*engine.Engine, error) {
	// 避免 typed nil 写入接口
	if store == nil {
		return engine.NewEngine(cfg, nil)
	}
	return engine.NewEngine(cfg, store)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "compass",
		Short:        "出海罗盘: 基于搜索 grounding 的全球市场分析",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "config path")

	rootCmd.AddCommand(
		newAnalyzeCmd(&configPath),
		newBuyersCmd(&configPath),
		newHistoryCmd(&configPath),
	)
	return rootCmd
}

// setup 加载配置、初始化日志与存储。日志写到标准错误，标准输出只留给结果。未配置数据库时 store 为 nil
func setup(configPath string, stderr io.Writer) (*config.Config, *storage.Storage, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("无法加载配置文件: %w", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File, logger.WithConsole(stderr)); err != nil {
		return nil, nil, fmt.Errorf("无法初始化日志: %w", err)
	}

	if cfg.DB.Driver == "" {
		logger.Log.Info("未配置数据库信息，跳过数据库连接")
		return cfg, nil, nil
	}
	store, err := storage.NewStorage(cfg.DB)
	if err != nil {
		logger.Log.Errorf("无法连接数据库: %v. 结果将不会被保存。", err)
		return cfg, nil, nil
	}
	logger.Log.Info("已成功连接到数据库")
	return cfg, store, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
