package marker

import (
	"fmt"
	"strings"
	"time"
)

const outputSuffix = "blue_marked.xlsx"

// DateCode 试合日期 → 4 位日期码（MMDD），同时用作 sheet 名与文件名
func DateCode(t time.Time) string {
	return t.Format("0102")
}

// ParseDate 解析 YYYY-MM-DD；空串返回 now 所在日期
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// OutputFilename {原文件名}_{日期码}_blue_marked.xlsx
func OutputFilename(original, code string) string {
	base := original
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if strings.HasSuffix(strings.ToLower(base), ".xlsx") {
		base = base[:len(base)-len(".xlsx")]
	}
	base = strings.TrimSpace(base)
	if base == "" {
		base = "seatmap"
	}
	return fmt.Sprintf("%s_%s_%s", base, code, outputSuffix)
}
