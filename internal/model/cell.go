package model

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// CellKind 单元格内容类型
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
	CellBool
)

// CellValue 读取边界上的单元格内容（absent / numeric / text / bool）
type CellValue struct {
	Kind CellKind
	Num  float64
	Text string
	Bool bool
}

func EmptyCell() CellValue { return CellValue{Kind: CellEmpty} }

func NumberCell(v float64) CellValue { return CellValue{Kind: CellNumber, Num: v} }

func TextCell(s string) CellValue { return CellValue{Kind: CellText, Text: s} }

func BoolCell(b bool) CellValue { return CellValue{Kind: CellBool, Bool: b} }

// IsEmpty 是否为空单元格
func (v CellValue) IsEmpty() bool { return v.Kind == CellEmpty }

// String 文本表示；数值按最短形式输出（1 而非 1.0）
func (v CellValue) String() string {
	switch v.Kind {
	case CellNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case CellText:
		return v.Text
	case CellBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Int 转换为整数；失败返回 false（装饰性单元格在扫描时直接跳过）
func (v CellValue) Int() (int, bool) {
	switch v.Kind {
	case CellNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return 0, false
		}
		t := math.Trunc(v.Num)
		if t > math.MaxInt32 || t < math.MinInt32 {
			return 0, false
		}
		return int(t), true
	case CellText:
		return ParseInt(v.Text)
	default:
		return 0, false
	}
}

// ParseInt 解析十进制整数，容忍首尾空白；任意 Unicode 十进制数字（全角、アラビア数字等）按数值处理
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(strings.Map(asciiDigit, width.Fold.String(s)))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// asciiDigit 将非 ASCII 的十进制数字映射为 '0'..'9'
//
// Unicode 的 Nd 字符总是以 0..9 连续成组出现，向前找到所在连续段的起点即可求出数值。
func asciiDigit(r rune) rune {
	if r < 0x80 || !unicode.Is(unicode.Nd, r) {
		return r
	}
	start := r
	for unicode.Is(unicode.Nd, start-1) {
		start--
	}
	return '0' + (r-start)%10
}
