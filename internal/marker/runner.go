package marker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"seatmark/internal/model"
	"seatmark/internal/parser"
	"seatmark/internal/service/excel"
)

// ErrInputEmpty 文本中没有解析出任何座席指定
var ErrInputEmpty = errors.New("座席指定を解析できませんでした。入力形式を確認してください。")

// Options 处理选项
type Options struct {
	Layers         excel.LayerNames
	HighlightColor string
	// ScanTimeout 索引扫描的超时，0 表示不限制
	ScanTimeout time.Duration
	// ResolveSheetSuffix 精确名称缺失时按后缀查找层 sheet
	ResolveSheetSuffix bool
}

// Runner 一次青塗り处理：文本解析 → 索引构建 → 对照涂色 → 导出
type Runner struct {
	opts   Options
	logger *zap.Logger
}

// NewRunner 创建处理器
func NewRunner(opts Options, logger *zap.Logger) *Runner {
	if opts.Layers == (excel.LayerNames{}) {
		opts.Layers = excel.DefaultLayerNames()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{opts: opts, logger: logger}
}

// Input 单次处理的全部输入
type Input struct {
	Workbook []byte
	Filename string
	Text     string
	Date     time.Time
	Progress func(ProgressEvent)
}

// Result 处理结果
type Result struct {
	RunID      string              `json:"runId"`
	Filename   string              `json:"filename"`
	DateCode   string              `json:"dateCode"`
	OutputName string              `json:"outputName"`
	Requests   []model.SeatRequest `json:"requests"`
	Matched    []model.Match       `json:"matched"`
	Unmatched  []model.SeatRequest `json:"unmatched"`
	Collisions int                 `json:"collisions"`
	Skipped    int                 `json:"skipped"`
	Duration   time.Duration       `json:"duration"`

	Output []byte `json:"-"`
}

// Run 执行处理
//
// 文本为空/无法解析 (ErrInputEmpty) 与缺少层 sheet (*excel.StructuralError) 都在任何修改之前返回。
func (r *Runner) Run(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:    uuid.New().String(),
		Filename: in.Filename,
		DateCode: DateCode(in.Date),
	}
	res.OutputName = OutputFilename(in.Filename, res.DateCode)
	log := r.logger.With(zap.String("run_id", res.RunID), zap.String("file", in.Filename))

	reportProgress(in.Progress, 5, StageParse)
	res.Requests = parser.ParseSeatText(in.Text)
	if len(res.Requests) == 0 {
		return nil, ErrInputEmpty
	}
	log.Debug("seat text parsed", zap.Int("requests", len(res.Requests)))

	reportProgress(in.Progress, 20, StageLoad)
	f, err := excelize.OpenReader(bytes.NewReader(in.Workbook))
	if err != nil {
		return nil, fmt.Errorf("打开工作簿失败: %w", err)
	}
	defer f.Close()

	names := r.opts.Layers
	if r.opts.ResolveSheetSuffix {
		names = excel.ResolveLayerNames(f, names)
		if names != r.opts.Layers {
			log.Info("layer sheets resolved by suffix",
				zap.String("seat", names.Seat),
				zap.String("row", names.Row),
				zap.String("class", names.Class))
		}
	}
	layers, err := excel.ReadLayers(f, names)
	if err != nil {
		return nil, err
	}

	reportProgress(in.Progress, 40, StageIndex)
	scanCtx := ctx
	if r.opts.ScanTimeout > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithTimeout(ctx, r.opts.ScanTimeout)
		defer cancel()
	}
	idx, err := excel.BuildIndex(scanCtx, layers.Class, layers.Row, layers.Seat)
	if err != nil {
		return nil, fmt.Errorf("构建座席索引失败: %w", err)
	}
	res.Collisions = idx.Collisions
	res.Skipped = idx.Skipped
	if idx.Collisions > 0 {
		log.Warn("duplicate seat keys in layer sheets, later cells win",
			zap.Int("collisions", idx.Collisions))
	}
	log.Debug("seat index built",
		zap.Int("entries", idx.Len()),
		zap.Int("rows", idx.Rows),
		zap.Int("cols", idx.Cols),
		zap.Int("skipped", idx.Skipped))

	reportProgress(in.Progress, 60, StageReconcile)
	highlighter := excel.NewHighlighter(f, names.Seat, r.opts.HighlightColor)
	res.Matched, res.Unmatched, err = excel.Reconcile(res.Requests, idx, highlighter)
	if err != nil {
		return nil, err
	}

	reportProgress(in.Progress, 80, StageExport)
	out, err := excel.ExportSheet(f, names.Seat, res.DateCode)
	if err != nil {
		return nil, fmt.Errorf("导出座席 sheet 失败: %w", err)
	}
	defer out.Close()
	if res.Output, err = excel.WriteWorkbook(out); err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	reportProgress(in.Progress, 100, StageDone)
	log.Info("seat marking finished",
		zap.Int("requests", len(res.Requests)),
		zap.Int("matched", len(res.Matched)),
		zap.Int("unmatched", len(res.Unmatched)),
		zap.Duration("duration", res.Duration))

	return res, nil
}
