package excel_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"seatmark/internal/model"
	"seatmark/internal/service/excel"
)

func TestExportSheet_CopiesSeatSheet(t *testing.T) {
	t.Parallel()

	wb := buildSeatWorkbook(t)
	sheet := testLayers.Seat

	if err := wb.SetCellValue(sheet, "A5", "STAGE"); err != nil {
		t.Fatalf("SetCellValue failed: %v", err)
	}
	if err := wb.MergeCell(sheet, "A5", "C5"); err != nil {
		t.Fatalf("MergeCell failed: %v", err)
	}
	if err := wb.SetColWidth(sheet, "B", "B", 4.5); err != nil {
		t.Fatalf("SetColWidth failed: %v", err)
	}
	if err := wb.SetRowHeight(sheet, 2, 30); err != nil {
		t.Fatalf("SetRowHeight failed: %v", err)
	}
	if err := wb.SetCellFormula(sheet, "C2", "SUM(A2:B2)"); err != nil {
		t.Fatalf("SetCellFormula failed: %v", err)
	}
	if err := excel.NewHighlighter(wb, sheet, "").Mark(model.Coord{Row: 1, Col: 1}); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}

	out, err := excel.ExportSheet(wb, sheet, "0101")
	if err != nil {
		t.Fatalf("ExportSheet failed: %v", err)
	}
	data, err := excel.WriteWorkbook(out)
	if err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	got, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	t.Cleanup(func() { _ = got.Close() })

	if list := got.GetSheetList(); len(list) != 1 || list[0] != "0101" {
		t.Fatalf("sheets=%v, want [0101]", list)
	}

	for axis, want := range map[string]string{"A1": "33", "B1": "34", "C3": "通路", "A5": "STAGE"} {
		v, err := got.GetCellValue("0101", axis)
		if err != nil {
			t.Fatalf("GetCellValue %s failed: %v", axis, err)
		}
		if v != want {
			t.Fatalf("%s=%q, want %q", axis, v, want)
		}
	}
	if typ, _ := got.GetCellType("0101", "A1"); typ == excelize.CellTypeSharedString {
		t.Fatalf("numeric cell copied as string")
	}
	if f, _ := got.GetCellFormula("0101", "C2"); f != "SUM(A2:B2)" {
		t.Fatalf("formula=%q", f)
	}

	if c := fillColor(t, got, "0101", "A1"); c != excel.DefaultHighlightColor {
		t.Fatalf("A1 fill=%q", c)
	}
	if c := fillColor(t, got, "0101", "B1"); c != "" {
		t.Fatalf("B1 fill=%q, want none", c)
	}

	if w, _ := got.GetColWidth("0101", "B"); w != 4.5 {
		t.Fatalf("col B width=%v, want 4.5", w)
	}
	if h, _ := got.GetRowHeight("0101", 2); h != 30 {
		t.Fatalf("row 2 height=%v, want 30", h)
	}

	merges, err := got.GetMergeCells("0101")
	if err != nil {
		t.Fatalf("GetMergeCells failed: %v", err)
	}
	if len(merges) != 1 || merges[0].GetStartAxis() != "A5" || merges[0].GetEndAxis() != "C5" {
		t.Fatalf("merges=%v", merges)
	}
}

func TestExportSheet_RejectsEmptyName(t *testing.T) {
	t.Parallel()

	if _, err := excel.ExportSheet(buildSeatWorkbook(t), testLayers.Seat, ""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestExportSheet_ColumnWidthsOutsideUsedRange(t *testing.T) {
	t.Parallel()

	wb := buildSeatWorkbook(t)
	sheet := testLayers.Seat

	def := 20.0
	if err := wb.SetSheetProps(sheet, &excelize.SheetPropsOptions{DefaultColWidth: &def}); err != nil {
		t.Fatalf("SetSheetProps failed: %v", err)
	}
	if err := wb.SetColWidth(sheet, "H", "I", 12); err != nil {
		t.Fatalf("SetColWidth failed: %v", err)
	}

	out, err := excel.ExportSheet(wb, sheet, "0101")
	if err != nil {
		t.Fatalf("ExportSheet failed: %v", err)
	}
	data, err := excel.WriteWorkbook(out)
	if err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}
	got, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	t.Cleanup(func() { _ = got.Close() })

	for col, want := range map[string]float64{"A": 20, "D": 20, "H": 12, "I": 12, "J": 20} {
		if w, _ := got.GetColWidth("0101", col); w != want {
			t.Fatalf("col %s width=%v, want %v", col, w, want)
		}
	}

	// 默认宽度的列没有显式定义，跟随 sheet 默认值变化
	wider := 25.0
	if err := got.SetSheetProps("0101", &excelize.SheetPropsOptions{DefaultColWidth: &wider}); err != nil {
		t.Fatalf("SetSheetProps failed: %v", err)
	}
	for col, want := range map[string]float64{"A": 25, "C": 25, "H": 12} {
		if w, _ := got.GetColWidth("0101", col); w != want {
			t.Fatalf("after default change col %s width=%v, want %v", col, w, want)
		}
	}
}
