package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"seatmark/internal/service/excel"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	HistoryEnabled bool             `json:"historyEnabled"` // 是否记录运行历史
	TotalRuns      int              `json:"totalRuns"`      // 运行次数
	LastRunTime    string           `json:"lastRunTime"`    // 最近一次运行时间
	PendingFiles   int              `json:"pendingFiles"`   // 待下载的结果数
	Sheets         excel.LayerNames `json:"sheets"`         // 使用的层 sheet 名称
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		HistoryEnabled: h.store != nil,
		PendingFiles:   h.downloads.size(),
		Sheets:         h.currentSettings().Sheets,
	}
	if h.store == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	if n, err := h.store.CountRuns(); err == nil {
		resp.TotalRuns = n
	}
	if runs, err := h.store.ListRuns(1); err == nil && len(runs) > 0 {
		resp.LastRunTime = runs[0].CreatedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}
