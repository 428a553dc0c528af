package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"seatmark/internal/server"
	"seatmark/internal/util"
)

var (
	servePort      int
	serveDev       bool
	serveDataDir   string
	serveNoBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动本地 Web 界面",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "开发模式")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "数据目录 (覆盖配置文件)")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "不自动打开浏览器")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, info := loadConfig()

	// 命令行参数覆盖配置
	if servePort > 0 && !info.PortSpecified {
		cfg.Server.Port = servePort
	}
	if serveDev {
		cfg.Server.DevMode = true
	}
	if serveDataDir != "" {
		cfg.Data.DataDir = serveDataDir
	}

	// 端口被占用时向后顺延
	port, err := util.FindAvailablePort(cfg.Server.Port, 20)
	if err != nil {
		return err
	}
	if port != cfg.Server.Port {
		logger.Warn("port in use, falling back", zap.Int("configured", cfg.Server.Port), zap.Int("port", port))
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", port)
	url := fmt.Sprintf("http://localhost:%d", port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(addr)
	}()

	if !cfg.Server.DevMode && !serveNoBrowser {
		if err := util.OpenBrowser(url); err != nil {
			logger.Info("could not open browser, visit manually", zap.String("url", url), zap.Error(err))
		}
	} else {
		logger.Info("server ready", zap.String("url", url))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		_ = srv.Shutdown(context.Background())
		return err
	case <-quit:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
