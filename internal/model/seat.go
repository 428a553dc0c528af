package model

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SeatRequest 从文本解析出的座席指定（クラス名, 列, 座席番号）
// 值语义：相同三元组视为同一请求
type SeatRequest struct {
	ClassName string `json:"className"`
	Row       int    `json:"row"`
	Seat      int    `json:"seat"`
}

func (r SeatRequest) String() string {
	return fmt.Sprintf("%s %d列%d", r.ClassName, r.Row, r.Seat)
}

// NormalizedKey 坐标索引的查找键（クラス名已规范化）
type NormalizedKey struct {
	Class string
	Row   int
	Seat  int
}

// Coord 单元格坐标（1-based）
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Label R{r}C{c} 形式
func (c Coord) Label() string {
	return fmt.Sprintf("R%dC%d", c.Row, c.Col)
}

// CellName A1 形式的单元格名
func (c Coord) CellName() string {
	name, err := excelize.CoordinatesToCellName(c.Col, c.Row)
	if err != nil {
		return c.Label()
	}
	return name
}

// Match 命中结果
type Match struct {
	Request SeatRequest `json:"request"`
	Coord   Coord       `json:"coord"`
}
