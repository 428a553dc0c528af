package api

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"seatmark/internal/service/excel"
	"seatmark/internal/store"
)

var hexColorRe = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// SettingsResponse 当前设置
type SettingsResponse struct {
	HighlightColor string           `json:"highlightColor"`
	Sheets         excel.LayerNames `json:"sheets"`
}

// UpdateSettingsRequest 更新设置请求
type UpdateSettingsRequest struct {
	HighlightColor *string `json:"highlightColor"`
}

// GetSettings 获取设置
// GET /api/settings
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.currentSettings())
}

// UpdateSettings 修改涂色颜色（持久化到 SQLite）
// PATCH /api/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "未启用设置存储"})
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据"})
		return
	}

	if req.HighlightColor != nil {
		color := strings.TrimSpace(*req.HighlightColor)
		if !hexColorRe.MatchString(color) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "颜色格式错误，应为 6 位十六进制 RGB"})
			return
		}
		color = strings.ToUpper(strings.TrimPrefix(color, "#"))
		if err := h.store.SetConfig(store.ConfigHighlightColor, color); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "保存设置失败"})
			return
		}
	}

	c.JSON(http.StatusOK, h.currentSettings())
}

func (h *Handler) currentSettings() SettingsResponse {
	color := h.opts.Marking.HighlightColor
	if h.store != nil {
		color = h.store.GetConfigOr(store.ConfigHighlightColor, color)
	}
	if color == "" {
		color = excel.DefaultHighlightColor
	}
	sheets := h.opts.Marking.Layers
	if sheets == (excel.LayerNames{}) {
		sheets = excel.DefaultLayerNames()
	}
	return SettingsResponse{
		HighlightColor: color,
		Sheets:         sheets,
	}
}
