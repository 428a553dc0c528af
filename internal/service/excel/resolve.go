package excel

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// ResolveLayerNames 精确名称不存在时按后缀匹配层 sheet
//
// 后缀取名称最后一个 "_" 起的部分（如 "_座席番号"），用于兼容赛季前缀变化的座席表
// （"24－25ブロックマップ_座席番号" 等）。只有唯一候选时才替换；否则保留原名，
// 由 ReadLayers 报告缺失。
func ResolveLayerNames(f *excelize.File, names LayerNames) LayerNames {
	sheets := f.GetSheetList()
	return LayerNames{
		Seat:  resolveSheet(sheets, names.Seat),
		Row:   resolveSheet(sheets, names.Row),
		Class: resolveSheet(sheets, names.Class),
	}
}

func resolveSheet(sheets []string, name string) string {
	for _, s := range sheets {
		if s == name {
			return name
		}
	}

	i := strings.LastIndex(name, "_")
	if i < 0 {
		return name
	}
	suffix := name[i:]

	picked := ""
	for _, s := range sheets {
		if !strings.HasSuffix(s, suffix) {
			continue
		}
		if picked != "" {
			// 多个候选，不做猜测
			return name
		}
		picked = s
	}
	if picked == "" {
		return name
	}
	return picked
}
