package excel

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ExportSheet 将 src 中的一张 sheet 复制到只含该 sheet 的新工作簿，并命名为 name
//
// 复制内容：单元格值（数值/布尔/文本/公式）、样式（字体、边框、填充、对齐、数字格式、保护）、
// 列宽、行高、合并单元格。
func ExportSheet(src *excelize.File, sheet, name string) (*excelize.File, error) {
	if src == nil {
		return nil, errors.New("source workbook is nil")
	}
	if name == "" {
		return nil, errors.New("output sheet name is empty")
	}

	rows, err := src.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	maxRow, maxCol := usedRange(src, sheet, rows)

	dst := excelize.NewFile()
	if err := dst.SetSheetName(dst.GetSheetName(0), name); err != nil {
		_ = dst.Close()
		return nil, fmt.Errorf("rename output sheet: %w", err)
	}

	c := &sheetCopier{
		src:    src,
		dst:    dst,
		sheet:  sheet,
		name:   name,
		styles: make(map[int]int),
	}
	steps := []func() error{
		func() error { return c.copyCells(maxRow, maxCol) },
		c.copyColWidths,
		func() error { return c.copyRowHeights(maxRow) },
		c.copyMerges,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = dst.Close()
			return nil, err
		}
	}

	dst.SetActiveSheet(0)
	return dst, nil
}

// WriteWorkbook 序列化工作簿
func WriteWorkbook(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetCopier struct {
	src   *excelize.File
	dst   *excelize.File
	sheet string
	name  string

	// 源样式 ID → 目标工作簿样式 ID
	styles map[int]int
}

func (c *sheetCopier) copyCells(maxRow, maxCol int) error {
	for r := 1; r <= maxRow; r++ {
		for col := 1; col <= maxCol; col++ {
			axis, err := excelize.CoordinatesToCellName(col, r)
			if err != nil {
				return err
			}
			if err := c.copyValue(axis); err != nil {
				return fmt.Errorf("copy value %s: %w", axis, err)
			}
			if err := c.copyStyle(axis); err != nil {
				return fmt.Errorf("copy style %s: %w", axis, err)
			}
		}
	}
	return nil
}

func (c *sheetCopier) copyValue(axis string) error {
	formula, err := c.src.GetCellFormula(c.sheet, axis)
	if err != nil {
		return err
	}
	if formula != "" {
		return c.dst.SetCellFormula(c.name, axis, formula)
	}

	raw, err := c.src.GetCellValue(c.sheet, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}

	typ, err := c.src.GetCellType(c.sheet, axis)
	if err != nil {
		return err
	}
	switch typ {
	case excelize.CellTypeBool:
		return c.dst.SetCellBool(c.name, axis, raw == "1" || raw == "TRUE" || raw == "true")
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return c.dst.SetCellFloat(c.name, axis, v, -1, 64)
		}
	}
	return c.dst.SetCellStr(c.name, axis, raw)
}

func (c *sheetCopier) copyStyle(axis string) error {
	srcID, err := c.src.GetCellStyle(c.sheet, axis)
	if err != nil {
		return err
	}
	if srcID == 0 {
		return nil
	}

	dstID, ok := c.styles[srcID]
	if !ok {
		style, err := c.src.GetStyle(srcID)
		if err != nil {
			return err
		}
		dstID, err = c.dst.NewStyle(style)
		if err != nil {
			return err
		}
		c.styles[srcID] = dstID
	}
	return c.dst.SetCellStyle(c.name, axis, axis, dstID)
}

// excelize 对没有 <col> 定义、也没有 defaultColWidth 的列返回的宽度
const unsetColWidth = 9.140625

// copyColWidths 复制整张 sheet 的列宽定义（不限于已使用区域），默认宽度的列不写入
func (c *sheetCopier) copyColWidths() error {
	def := unsetColWidth
	props, err := c.src.GetSheetProps(c.sheet)
	if err != nil {
		return fmt.Errorf("read sheet props: %w", err)
	}
	if props.DefaultColWidth != nil && *props.DefaultColWidth > 0 {
		def = *props.DefaultColWidth
		if err := c.dst.SetSheetProps(c.name, &excelize.SheetPropsOptions{DefaultColWidth: props.DefaultColWidth}); err != nil {
			return fmt.Errorf("set default column width: %w", err)
		}
	}

	// 相同宽度的相邻列合并为一个区间写入
	start, width := 0, 0.0
	flush := func(end int) error {
		if width == 0 {
			return nil
		}
		first, err := excelize.ColumnNumberToName(start)
		if err != nil {
			return err
		}
		last, err := excelize.ColumnNumberToName(end)
		if err != nil {
			return err
		}
		if err := c.dst.SetColWidth(c.name, first, last, width); err != nil {
			return fmt.Errorf("set width of columns %s:%s: %w", first, last, err)
		}
		return nil
	}

	for col := 1; col <= excelize.MaxColumns; col++ {
		colName, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		w, err := c.src.GetColWidth(c.sheet, colName)
		if err != nil {
			return fmt.Errorf("read width of column %s: %w", colName, err)
		}
		if w == def {
			w = 0
		}
		if w == width {
			continue
		}
		if err := flush(col - 1); err != nil {
			return err
		}
		start, width = col, w
	}
	return flush(excelize.MaxColumns)
}

func (c *sheetCopier) copyRowHeights(maxRow int) error {
	for r := 1; r <= maxRow; r++ {
		height, err := c.src.GetRowHeight(c.sheet, r)
		if err != nil {
			return fmt.Errorf("read height of row %d: %w", r, err)
		}
		if err := c.dst.SetRowHeight(c.name, r, height); err != nil {
			return fmt.Errorf("set height of row %d: %w", r, err)
		}
	}
	return nil
}

func (c *sheetCopier) copyMerges() error {
	merges, err := c.src.GetMergeCells(c.sheet)
	if err != nil {
		return fmt.Errorf("read merged cells: %w", err)
	}
	for _, m := range merges {
		if err := c.dst.MergeCell(c.name, m.GetStartAxis(), m.GetEndAxis()); err != nil {
			return fmt.Errorf("merge %s:%s: %w", m.GetStartAxis(), m.GetEndAxis(), err)
		}
	}
	return nil
}
