package parser

import (
	"strings"

	"seatmark/internal/model"
)

// NormalizeClass 规范化クラス名：压缩连续空白为单个半角空格并去除首尾空白
// 请求侧与クラス sheet 侧都经过这里，避免双空格/制表符造成误判
func NormalizeClass(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// NormalizeKey 由请求得到索引查找键
func NormalizeKey(className string, row, seat int) model.NormalizedKey {
	return model.NormalizedKey{
		Class: NormalizeClass(className),
		Row:   row,
		Seat:  seat,
	}
}
