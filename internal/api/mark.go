package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"seatmark/internal/marker"
	"seatmark/internal/model"
	"seatmark/internal/service/excel"
	"seatmark/internal/store"
)

// MarkResponse 青塗り结果
type MarkResponse struct {
	RunID          string              `json:"runId"`
	Filename       string              `json:"filename"`
	DateCode       string              `json:"dateCode"`
	OutputName     string              `json:"outputName"`
	RequestCount   int                 `json:"requestCount"`
	MatchedCount   int                 `json:"matchedCount"`
	UnmatchedCount int                 `json:"unmatchedCount"`
	Matched        []model.Match       `json:"matched"`
	Unmatched      []model.SeatRequest `json:"unmatched"`
	Collisions     int                 `json:"collisions"`
	Skipped        int                 `json:"skipped"`
	DurationMS     int64               `json:"durationMs"`
	DownloadURL    string              `json:"downloadUrl"`
}

// 请求参数错误（对应 4xx）
type inputError struct {
	status int
	msg    string
}

func (e *inputError) Error() string { return e.msg }

// Mark 上传座席表 + 座席指定文本，返回对照结果与下载地址
// POST /api/mark  (multipart: file, text, date)
func (h *Handler) Mark(c *gin.Context) {
	in, err := h.readMarkInput(c)
	if err != nil {
		h.writeInputError(c, err)
		return
	}

	res, err := h.runner().Run(c.Request.Context(), in)
	h.recordRun(in, res, err)
	if err != nil {
		status, body := markErrorResponse(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, h.buildMarkResponse(c, res))
}

func (h *Handler) readMarkInput(c *gin.Context) (marker.Input, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return marker.Input{}, &inputError{status: http.StatusBadRequest, msg: "未找到上传文件"}
	}

	f, err := fh.Open()
	if err != nil {
		return marker.Input{}, &inputError{status: http.StatusBadRequest, msg: "读取上传文件失败"}
	}
	defer f.Close()

	var r io.Reader = f
	if h.opts.MaxUploadBytes > 0 {
		r = io.LimitReader(f, h.opts.MaxUploadBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return marker.Input{}, &inputError{status: http.StatusBadRequest, msg: "读取上传文件失败"}
	}
	if h.opts.MaxUploadBytes > 0 && int64(len(data)) > h.opts.MaxUploadBytes {
		return marker.Input{}, &inputError{
			status: http.StatusRequestEntityTooLarge,
			msg:    fmt.Sprintf("文件超过大小上限 (%d 字节)", h.opts.MaxUploadBytes),
		}
	}

	date, err := marker.ParseDate(c.PostForm("date"), time.Now())
	if err != nil {
		return marker.Input{}, &inputError{status: http.StatusBadRequest, msg: "日期格式错误，应为 YYYY-MM-DD"}
	}

	return marker.Input{
		Workbook: data,
		Filename: fh.Filename,
		Text:     c.PostForm("text"),
		Date:     date,
	}, nil
}

func (h *Handler) writeInputError(c *gin.Context, err error) {
	var ie *inputError
	if errors.As(err, &ie) {
		c.JSON(ie.status, gin.H{"error": ie.msg})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// markErrorResponse 处理失败时的状态码与响应体
func markErrorResponse(err error) (int, gin.H) {
	var se *excel.StructuralError
	switch {
	case errors.Is(err, marker.ErrInputEmpty):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	case errors.As(err, &se):
		return http.StatusBadRequest, gin.H{"error": se.Error(), "missingSheets": se.Missing}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, gin.H{"error": "座席表扫描超时"}
	default:
		return http.StatusInternalServerError, gin.H{"error": "处理失败: " + err.Error()}
	}
}

func (h *Handler) buildMarkResponse(c *gin.Context, res *marker.Result) MarkResponse {
	token := h.downloads.put(res.OutputName, res.Output, h.opts.DownloadTTL)
	return MarkResponse{
		RunID:          res.RunID,
		Filename:       res.Filename,
		DateCode:       res.DateCode,
		OutputName:     res.OutputName,
		RequestCount:   len(res.Requests),
		MatchedCount:   len(res.Matched),
		UnmatchedCount: len(res.Unmatched),
		Matched:        res.Matched,
		Unmatched:      res.Unmatched,
		Collisions:     res.Collisions,
		Skipped:        res.Skipped,
		DurationMS:     res.Duration.Milliseconds(),
		DownloadURL:    downloadURL(c, token),
	}
}

// 下载地址与当前路由同前缀（/api/mark → /api/download/:token）
func downloadURL(c *gin.Context, token string) string {
	prefix := c.Request.URL.Path
	prefix = strings.TrimSuffix(prefix, "/stream")
	prefix = strings.TrimSuffix(prefix, "/mark")
	return fmt.Sprintf("%s/download/%s", prefix, token)
}

// recordRun 写入运行历史；失败只记日志，不影响响应
func (h *Handler) recordRun(in marker.Input, res *marker.Result, runErr error) {
	if h.store == nil {
		return
	}

	run := store.Run{
		Filename: in.Filename,
		FileHash: store.HashContent(in.Workbook),
		FileSize: int64(len(in.Workbook)),
		DateCode: marker.DateCode(in.Date),
		Status:   store.RunStatusDone,
	}
	var unmatched []model.SeatRequest
	if runErr != nil {
		run.ID = uuid.New().String()
		run.OutputName = marker.OutputFilename(in.Filename, run.DateCode)
		run.Status = store.RunStatusFailed
		run.ErrorMessage = runErr.Error()
	} else {
		run.ID = res.RunID
		run.OutputName = res.OutputName
		run.RequestCount = len(res.Requests)
		run.MatchedCount = len(res.Matched)
		run.UnmatchedCount = len(res.Unmatched)
		run.Collisions = res.Collisions
		run.DurationMS = res.Duration.Milliseconds()
		unmatched = res.Unmatched
	}

	if err := h.store.InsertRun(run, unmatched); err != nil {
		h.logger.Warn("record run failed", zap.String("run_id", run.ID), zap.Error(err))
	}
}
