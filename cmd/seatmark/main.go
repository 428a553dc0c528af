package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"seatmark/internal/config"
)

var (
	configPath string
	verbose    bool

	logger *zap.Logger
)

// rootCmd 不带子命令时启动 Web 界面
var rootCmd = &cobra.Command{
	Use:   "seatmark",
	Short: "座席表青塗りツール",
	Long: `座席指定テキストを解析し、座席表ワークブックの該当セルを青く塗って
その試合日の 1 シートだけを新しいワークブックとして出力します。

引数なしで起動するとローカルの Web 画面を開きます。

Examples:
  seatmark
  seatmark serve --port 8080 --no-browser
  seatmark mark --file map.xlsx --text-file seats.txt --date 2025-01-02`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径 (默认: 可执行文件同目录下的 config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// loadConfig 加载配置；失败时退回默认配置
func loadConfig() (*config.AppConfig, config.LoadConfigInfo) {
	cfg, info, err := config.LoadConfigWithInfo(configPath)
	if err != nil {
		logger.Warn("load config failed, using defaults", zap.String("path", info.Path), zap.Error(err))
		return config.DefaultConfig(), config.LoadConfigInfo{Path: info.Path}
	}
	return cfg, info
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
