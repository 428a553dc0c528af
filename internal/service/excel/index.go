package excel

import (
	"context"
	"sort"

	"seatmark/internal/model"
	"seatmark/internal/parser"
)

// Index (クラス, 列, 座席) → 单元格坐标 的反向索引，构建后只读
type Index struct {
	coords map[model.NormalizedKey]model.Coord

	// Rows/Cols 扫描范围（クラス sheet 的已使用区域）
	Rows int
	Cols int
	// Collisions 同一键被后扫描的单元格覆盖的次数
	Collisions int
	// Skipped 三层均有值但列/座席无法转为整数而跳过的位置数
	Skipped int
}

// BuildIndex 逐格扫描三张对齐的层 sheet 构建索引
//
// 扫描顺序为行优先（上→下，左→右）；键冲突时后者覆盖前者。
// ctx 每行检查一次，用于给超大 sheet 设置超时。
func BuildIndex(ctx context.Context, class, row, seat Grid) (*Index, error) {
	maxRow, maxCol := class.Bounds()
	idx := &Index{
		coords: make(map[model.NormalizedKey]model.Coord),
		Rows:   maxRow,
		Cols:   maxCol,
	}

	for r := 1; r <= maxRow; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for c := 1; c <= maxCol; c++ {
			cv := class.At(r, c)
			rv := row.At(r, c)
			sv := seat.At(r, c)
			if cv.IsEmpty() || rv.IsEmpty() || sv.IsEmpty() {
				continue
			}

			rowNum, ok := rv.Int()
			if !ok {
				idx.Skipped++
				continue
			}
			seatNum, ok := sv.Int()
			if !ok {
				idx.Skipped++
				continue
			}

			key := parser.NormalizeKey(cv.String(), rowNum, seatNum)
			if _, dup := idx.coords[key]; dup {
				idx.Collisions++
			}
			idx.coords[key] = model.Coord{Row: r, Col: c}
		}
	}

	return idx, nil
}

// Lookup 查找规范化键
func (i *Index) Lookup(key model.NormalizedKey) (model.Coord, bool) {
	c, ok := i.coords[key]
	return c, ok
}

// Len 索引条目数
func (i *Index) Len() int {
	return len(i.coords)
}

// Keys 按坐标顺序返回全部键
func (i *Index) Keys() []model.NormalizedKey {
	keys := make([]model.NormalizedKey, 0, len(i.coords))
	for k := range i.coords {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		ca, cb := i.coords[keys[a]], i.coords[keys[b]]
		if ca.Row != cb.Row {
			return ca.Row < cb.Row
		}
		return ca.Col < cb.Col
	})
	return keys
}
