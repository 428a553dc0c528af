package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"seatmark/internal/model"
)

// LayerNames 三张层 sheet 的名称（座席番号 / 列 / クラス）
type LayerNames struct {
	Seat  string `toml:"seat" json:"seat"`
	Row   string `toml:"row" json:"row"`
	Class string `toml:"class" json:"class"`
}

// DefaultLayerNames 默认的层 sheet 名称
func DefaultLayerNames() LayerNames {
	return LayerNames{
		Seat:  "25－26ブロックマップ_座席番号",
		Row:   "25－26ブロックマップ_列",
		Class: "25－26ブロックマップ_クラス",
	}
}

// Required 必需 sheet 列表（报告缺失时按此顺序）
func (n LayerNames) Required() []string {
	return []string{n.Seat, n.Row, n.Class}
}

// StructuralError 工作簿缺少必需的层 sheet
type StructuralError struct {
	Missing []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("必要なシートが見つかりません: [%s]", strings.Join(e.Missing, ", "))
}

// Grid 只读单元格网格，行列均从 1 开始
type Grid interface {
	Bounds() (rows, cols int)
	At(row, col int) model.CellValue
}

// SheetGrid 内存中的单元格网格
type SheetGrid struct {
	cells [][]model.CellValue
	rows  int
	cols  int
}

// NewGrid 由二维切片构建网格；bounds 取最大行数与最大列数
func NewGrid(cells [][]model.CellValue) *SheetGrid {
	g := &SheetGrid{cells: cells, rows: len(cells)}
	for _, row := range cells {
		if len(row) > g.cols {
			g.cols = len(row)
		}
	}
	return g
}

// Bounds 已使用区域的行列数
func (g *SheetGrid) Bounds() (rows, cols int) {
	return g.rows, g.cols
}

// At 读取单元格；越界视为空
func (g *SheetGrid) At(row, col int) model.CellValue {
	if row < 1 || col < 1 || row > len(g.cells) {
		return model.EmptyCell()
	}
	r := g.cells[row-1]
	if col > len(r) {
		return model.EmptyCell()
	}
	return r[col-1]
}

// Layers 三张层 sheet 的网格
type Layers struct {
	Names LayerNames
	Seat  *SheetGrid
	Row   *SheetGrid
	Class *SheetGrid
}

// MissingSheets 返回工作簿中缺失的 sheet（保持 required 顺序）
func MissingSheets(f *excelize.File, required []string) []string {
	present := make(map[string]struct{})
	for _, name := range f.GetSheetList() {
		present[name] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// ReadLayers 读取三张层 sheet；任一缺失返回 *StructuralError
func ReadLayers(f *excelize.File, names LayerNames) (*Layers, error) {
	if missing := MissingSheets(f, names.Required()); len(missing) > 0 {
		return nil, &StructuralError{Missing: missing}
	}

	seat, err := ReadGrid(f, names.Seat)
	if err != nil {
		return nil, err
	}
	row, err := ReadGrid(f, names.Row)
	if err != nil {
		return nil, err
	}
	class, err := ReadGrid(f, names.Class)
	if err != nil {
		return nil, err
	}

	return &Layers{Names: names, Seat: seat, Row: row, Class: class}, nil
}

// ReadGrid 读取 sheet 的已使用区域为网格
func ReadGrid(f *excelize.File, sheet string) (*SheetGrid, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	maxRow, maxCol := usedRange(f, sheet, rows)
	g := &SheetGrid{
		cells: make([][]model.CellValue, len(rows)),
		rows:  maxRow,
		cols:  maxCol,
	}
	for r, row := range rows {
		cells := make([]model.CellValue, len(row))
		for c, raw := range row {
			if raw == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(sheet, axis)
			if err != nil {
				return nil, fmt.Errorf("read cell type %s!%s: %w", sheet, axis, err)
			}
			cells[c] = classifyCell(typ, raw)
		}
		g.cells[r] = cells
	}
	return g, nil
}

func classifyCell(typ excelize.CellType, raw string) model.CellValue {
	switch typ {
	case excelize.CellTypeBool:
		return model.BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return model.TextCell(raw)
	default:
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return model.NumberCell(v)
		}
		return model.TextCell(raw)
	}
}

// usedRange 已使用区域：取 dimension 与实际行数据中的较大者
func usedRange(f *excelize.File, sheet string, rows [][]string) (maxRow, maxCol int) {
	maxRow = len(rows)
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}

	dim, err := f.GetSheetDimension(sheet)
	if err != nil || dim == "" {
		return maxRow, maxCol
	}
	ref := dim
	if i := strings.LastIndex(dim, ":"); i >= 0 {
		ref = dim[i+1:]
	}
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return maxRow, maxCol
	}
	if row > maxRow {
		maxRow = row
	}
	if col > maxCol {
		maxCol = col
	}
	return maxRow, maxCol
}
