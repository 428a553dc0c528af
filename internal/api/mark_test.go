package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"seatmark/internal/marker"
	"seatmark/internal/model"
	"seatmark/internal/store"
)

func TestMark_ReturnsResultAndOneShotDownload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.do(markRequest(t, "/api/mark", seatWorkbook(t), "Class S South 1列33、35", "2025-01-02"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp MarkResponse
	decodeJSON(t, w, &resp)
	require.Equal(t, "0102", resp.DateCode)
	require.Equal(t, "試合_0102_blue_marked.xlsx", resp.OutputName)
	require.Equal(t, 2, resp.RequestCount)
	require.Equal(t, []model.Match{{
		Request: model.SeatRequest{ClassName: "Class S South", Row: 1, Seat: 33},
		Coord:   model.Coord{Row: 1, Col: 1},
	}}, resp.Matched)
	require.Equal(t, []model.SeatRequest{{ClassName: "Class S South", Row: 1, Seat: 35}}, resp.Unmatched)
	require.True(t, strings.HasPrefix(resp.DownloadURL, "/api/download/"), resp.DownloadURL)

	dl := env.do(httptest.NewRequest(http.MethodGet, resp.DownloadURL, nil))
	require.Equal(t, http.StatusOK, dl.Code)
	require.Equal(t, xlsxContentType, dl.Header().Get("Content-Type"))
	require.Contains(t, dl.Header().Get("Content-Disposition"), "filename*=UTF-8''%E8%A9%A6%E5%90%88_0102_blue_marked.xlsx")

	out, err := excelize.OpenReader(bytes.NewReader(dl.Body.Bytes()))
	require.NoError(t, err)
	defer out.Close()
	require.Equal(t, []string{"0102"}, out.GetSheetList())

	again := env.do(httptest.NewRequest(http.MethodGet, resp.DownloadURL, nil))
	require.Equal(t, http.StatusNotFound, again.Code)

	run, unmatched, err := env.store.GetRun(resp.RunID)
	require.NoError(t, err)
	require.Equal(t, store.RunStatusDone, run.Status)
	require.Equal(t, 1, run.MatchedCount)
	require.Equal(t, resp.Unmatched, unmatched)
}

func TestMark_EmptyText(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.do(markRequest(t, "/api/mark", seatWorkbook(t), "ただのメモ", ""))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	decodeJSON(t, w, &body)
	require.Equal(t, marker.ErrInputEmpty.Error(), body["error"])
}

func TestMark_MissingSheets(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.do(markRequest(t, "/api/mark", seatWorkbook(t, layers.Seat), "Class S South 1列33", ""))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error         string   `json:"error"`
		MissingSheets []string `json:"missingSheets"`
	}
	decodeJSON(t, w, &body)
	require.Equal(t, []string{layers.Row, layers.Class}, body.MissingSheets)

	runs, err := env.store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, store.RunStatusFailed, runs[0].Status)
	require.Equal(t, body.Error, runs[0].ErrorMessage)
}

func TestMark_BadRequests(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	w := env.do(markRequest(t, "/api/mark", nil, "Class S South 1列33", ""))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(markRequest(t, "/api/mark", seatWorkbook(t), "Class S South 1列33", "01/02"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	env.handler.opts.MaxUploadBytes = 16
	w = env.do(markRequest(t, "/api/mark", seatWorkbook(t), "Class S South 1列33", ""))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestMark_UsesStoredHighlightColor(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.NoError(t, env.store.SetConfig(store.ConfigHighlightColor, "FF0000"))

	w := env.do(markRequest(t, "/api/mark", seatWorkbook(t), "Class S South 1列34", "2025-01-02"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp MarkResponse
	decodeJSON(t, w, &resp)

	dl := env.do(httptest.NewRequest(http.MethodGet, resp.DownloadURL, nil))
	require.Equal(t, http.StatusOK, dl.Code)
	out, err := excelize.OpenReader(bytes.NewReader(dl.Body.Bytes()))
	require.NoError(t, err)
	defer out.Close()

	styleID, err := out.GetCellStyle("0102", "B1")
	require.NoError(t, err)
	style, err := out.GetStyle(styleID)
	require.NoError(t, err)
	require.Equal(t, 1, style.Fill.Pattern)
	require.Equal(t, []string{"FF0000"}, style.Fill.Color)
}

func TestMarkStream_EmitsProgressThenDone(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.do(markRequest(t, "/api/mark/stream", seatWorkbook(t), "Class S South 1列33,34", "2025-01-02"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	var events []markProgressEvent
	var last json.RawMessage
	sc := bufio.NewScanner(strings.NewReader(w.Body.String()))
	for sc.Scan() {
		line, ok := strings.CutPrefix(sc.Text(), "data: ")
		if !ok {
			continue
		}
		var ev markProgressEvent
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		events = append(events, ev)
		last = json.RawMessage(line)
	}
	require.NotEmpty(t, events)
	require.Equal(t, "start", events[0].Type)
	require.Equal(t, "progress", events[1].Type)
	require.Equal(t, "done", events[len(events)-1].Type)

	var done struct {
		Data MarkResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(last, &done))
	require.Equal(t, 2, done.Data.MatchedCount)
	require.True(t, strings.HasPrefix(done.Data.DownloadURL, "/api/download/"), done.Data.DownloadURL)
}

func TestMarkStream_ReportsErrorEvent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.do(markRequest(t, "/api/mark/stream", seatWorkbook(t, layers.Seat, layers.Row), "Class S South 1列33", ""))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	require.Contains(t, body, `"type":"error"`)
	require.Contains(t, body, layers.Class)
	require.NotContains(t, body, `"type":"done"`)
}
