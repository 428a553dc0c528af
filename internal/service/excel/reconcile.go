package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"seatmark/internal/model"
	"seatmark/internal/parser"
)

// DefaultHighlightColor 青塗り
const DefaultHighlightColor = "0000FF"

// Marker 对命中的坐标施加标记
type Marker interface {
	Mark(coord model.Coord) error
}

// Reconcile 将请求与索引逐一对照
//
// 每个请求恰好落入 matched 或 unmatched 之一；命中时调用 marker（nil 表示只对照不标记）。
// 输出顺序与 requests 顺序一致。
func Reconcile(requests []model.SeatRequest, idx *Index, marker Marker) (matched []model.Match, unmatched []model.SeatRequest, err error) {
	matched = []model.Match{}
	unmatched = []model.SeatRequest{}

	for _, req := range requests {
		coord, ok := idx.Lookup(parser.NormalizeKey(req.ClassName, req.Row, req.Seat))
		if !ok {
			unmatched = append(unmatched, req)
			continue
		}
		if marker != nil {
			if err := marker.Mark(coord); err != nil {
				return nil, nil, fmt.Errorf("mark %s: %w", coord.CellName(), err)
			}
		}
		matched = append(matched, model.Match{Request: req, Coord: coord})
	}

	return matched, unmatched, nil
}

// Highlighter 在 sheet 上给单元格加纯色填充，保留原有字体/边框/对齐等样式
type Highlighter struct {
	file  *excelize.File
	sheet string
	fill  excelize.Fill

	// 原样式 ID → 加填充后的样式 ID
	derived map[int]int
}

// NewHighlighter 创建填充器；color 为空时使用 DefaultHighlightColor
func NewHighlighter(f *excelize.File, sheet, color string) *Highlighter {
	color = strings.TrimPrefix(strings.TrimSpace(color), "#")
	if color == "" {
		color = DefaultHighlightColor
	}
	return &Highlighter{
		file:  f,
		sheet: sheet,
		fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
		derived: make(map[int]int),
	}
}

// Mark 实现 Marker
func (h *Highlighter) Mark(coord model.Coord) error {
	axis, err := excelize.CoordinatesToCellName(coord.Col, coord.Row)
	if err != nil {
		return err
	}

	srcID, err := h.file.GetCellStyle(h.sheet, axis)
	if err != nil {
		return err
	}

	styleID, ok := h.derived[srcID]
	if !ok {
		style, err := h.file.GetStyle(srcID)
		if err != nil {
			return fmt.Errorf("read style %d: %w", srcID, err)
		}
		style.Fill = h.fill
		styleID, err = h.file.NewStyle(style)
		if err != nil {
			return fmt.Errorf("create highlight style: %w", err)
		}
		h.derived[srcID] = styleID
	}

	return h.file.SetCellStyle(h.sheet, axis, axis, styleID)
}
