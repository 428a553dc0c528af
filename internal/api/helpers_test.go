package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"seatmark/internal/marker"
	"seatmark/internal/service/excel"
	"seatmark/internal/store"
)

var layers = excel.DefaultLayerNames()

// seatWorkbook Class S South 1列 33/34
func seatWorkbook(t *testing.T, sheets ...string) []byte {
	t.Helper()

	if len(sheets) == 0 {
		sheets = layers.Required()
	}
	wb := excelize.NewFile()
	defer wb.Close()

	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, wb.SetSheetName("Sheet1", name))
			continue
		}
		_, err := wb.NewSheet(name)
		require.NoError(t, err)
	}

	data := map[string][]interface{}{
		layers.Class: {"Class S South", "Class S South"},
		layers.Row:   {1, 1},
		layers.Seat:  {33, 34},
	}
	for _, name := range sheets {
		row, ok := data[name]
		if !ok {
			continue
		}
		require.NoError(t, wb.SetSheetRow(name, "A1", &row))
	}

	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

type testEnv struct {
	router  *gin.Engine
	handler *Handler
	store   *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "seatmark.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	h := NewHandler(st, Options{Marking: marker.Options{Layers: layers}}, nil)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api"))
	return &testEnv{router: router, handler: h, store: st}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// markRequest 构造 multipart 请求；workbook 为 nil 时不附带文件
func markRequest(t *testing.T, path string, workbook []byte, text, date string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if workbook != nil {
		fw, err := mw.CreateFormFile("file", "試合.xlsx")
		require.NoError(t, err)
		_, err = io.Copy(fw, bytes.NewReader(workbook))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("text", text))
	if date != "" {
		require.NoError(t, mw.WriteField("date", date))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
