package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"seatmark/internal/marker"
)

type markProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// MarkStream 青塗り（SSE 进度 + 完成后提供结果与下载地址）
// POST /api/mark/stream
func (h *Handler) MarkStream(c *gin.Context) {
	in, err := h.readMarkInput(c)
	if err != nil {
		h.writeInputError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event markProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	send(markProgressEvent{
		Type:    "start",
		Message: "开始处理",
		Data: map[string]any{
			"filename": in.Filename,
			"dateCode": marker.DateCode(in.Date),
		},
		Timestamp: time.Now(),
	})

	lastPercent := -1
	in.Progress = func(p marker.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		send(markProgressEvent{
			Type:      "progress",
			Message:   p.Stage,
			Data:      map[string]any{"percent": p.Percent},
			Timestamp: time.Now(),
		})
	}

	res, err := h.runner().Run(c.Request.Context(), in)
	h.recordRun(in, res, err)
	if err != nil {
		_, body := markErrorResponse(err)
		send(markProgressEvent{
			Type:      "error",
			Message:   fmt.Sprint(body["error"]),
			Data:      body,
			Timestamp: time.Now(),
		})
		return
	}

	send(markProgressEvent{
		Type:      "done",
		Message:   "处理完成",
		Data:      h.buildMarkResponse(c, res),
		Timestamp: time.Now(),
	})
}
