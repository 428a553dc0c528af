package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"seatmark/internal/marker"
	"seatmark/internal/store"
)

// Options API 处理选项
type Options struct {
	Marking marker.Options
	// DownloadTTL 下载链接有效期
	DownloadTTL time.Duration
	// MaxUploadBytes 上传工作簿大小上限，0 表示不限制
	MaxUploadBytes int64
}

// Handler API 处理器
type Handler struct {
	store     *store.Store
	opts      Options
	logger    *zap.Logger
	downloads *downloadStore
}

// NewHandler 创建 API 处理器；store 为 nil 时不记录运行历史
func NewHandler(st *store.Store, opts Options, logger *zap.Logger) *Handler {
	if opts.DownloadTTL <= 0 {
		opts.DownloadTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:     st,
		opts:      opts,
		logger:    logger,
		downloads: newDownloadStore(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 设置
	router.GET("/settings", h.GetSettings)
	router.PATCH("/settings", h.UpdateSettings)

	// 青塗り
	router.POST("/mark", h.Mark)
	router.POST("/mark/stream", h.MarkStream)
	router.GET("/download/:token", h.Download)

	// 运行历史
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)
}

// 每次请求按当前设置创建 Runner（涂色颜色可在界面修改）
func (h *Handler) runner() *marker.Runner {
	opts := h.opts.Marking
	if h.store != nil {
		opts.HighlightColor = h.store.GetConfigOr(store.ConfigHighlightColor, opts.HighlightColor)
	}
	return marker.NewRunner(opts, h.logger)
}
