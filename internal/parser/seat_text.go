package parser

import (
	"regexp"
	"strings"

	"seatmark/internal/model"
)

const (
	// MarkerKeyword 每条座席指定的起始关键字
	MarkerKeyword = "Class"
	// RowUnit 列号后的单位字
	RowUnit = "列"

	ws    = `[\s\p{Zs}]`
	nonWS = `[^\s\p{Zs}]`
	// 座席区域：数字 + 区切り文字（、 , ． . ・ 空白）
	seatRegion = `[\p{Nd}\s\p{Zs}、,．.・]+`
)

var (
	markerRe    = regexp.MustCompile(MarkerKeyword + ws)
	seatSplitRe = regexp.MustCompile(`[、,．.・\s\p{Zs}]+`)
	digitsRe    = regexp.MustCompile(`^\p{Nd}+$`)
)

// ClassForm クラス名的一种写法：Class 后跟 Qualifiers 个 token
type ClassForm struct {
	Name       string
	Qualifiers int
	re         *regexp.Regexp
}

// Pattern 返回该形式对应的正则（仅用于排查）
func (f ClassForm) Pattern() string {
	return f.re.String()
}

func newClassForm(name string, qualifiers int) ClassForm {
	var b strings.Builder
	b.WriteString(`^(` + MarkerKeyword)
	for i := 0; i < qualifiers; i++ {
		b.WriteString(ws + `+` + nonWS + `+`)
	}
	b.WriteString(`)` + ws + `+(\p{Nd}+)` + RowUnit + ws + `*(` + seatRegion + `)`)
	return ClassForm{
		Name:       name,
		Qualifiers: qualifiers,
		re:         regexp.MustCompile(b.String()),
	}
}

// 按顺序尝试，先命中者生效
var seatGrammar = []ClassForm{
	newClassForm("two-token", 1),   // Class SS-T
	newClassForm("three-token", 2), // Class S South / Class SS End-1
}

// SeatGrammar 返回候选形式列表（按尝试顺序）
func SeatGrammar() []ClassForm {
	out := make([]ClassForm, len(seatGrammar))
	copy(out, seatGrammar)
	return out
}

// ParseSeatText 将粘贴的文本解析为去重后的座席指定
//
// 例:
//
//	Class S South 1列33
//	Class SS End-1 2列　8、9
//	Class A Side 3列8,9
//
// 无法识别的块静默丢弃；结果保持首次出现的顺序。
func ParseSeatText(text string) []model.SeatRequest {
	text = strings.ReplaceAll(text, "\u3000", " ")

	seen := make(map[model.SeatRequest]struct{})
	var out []model.SeatRequest
	for _, block := range SplitBlocks(text) {
		reqs, ok := ParseBlock(block)
		if !ok {
			continue
		}
		for _, r := range reqs {
			if _, dup := seen[r]; dup {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// SplitBlocks 在每个 "Class␣" 出现处切分，不依赖换行
func SplitBlocks(text string) []string {
	locs := markerRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	blocks := make([]string, 0, len(locs)+1)
	if locs[0][0] > 0 {
		blocks = append(blocks, text[:locs[0][0]])
	}
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, text[loc[0]:end])
	}
	return blocks
}

// ParseBlock 解析单个块；没有任何形式匹配时返回 false
// 列号能匹配但没有有效座席号时返回空切片和 true
func ParseBlock(block string) ([]model.SeatRequest, bool) {
	block = strings.TrimSpace(block)
	if block == "" {
		return nil, false
	}

	for _, form := range seatGrammar {
		m := form.re.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		row, ok := model.ParseInt(m[2])
		if !ok {
			return nil, false
		}
		className := strings.TrimSpace(m[1])
		var out []model.SeatRequest
		for _, seat := range splitSeats(m[3]) {
			out = append(out, model.SeatRequest{
				ClassName: className,
				Row:       row,
				Seat:      seat,
			})
		}
		return out, true
	}
	return nil, false
}

func splitSeats(region string) []int {
	var seats []int
	for _, tok := range seatSplitRe.Split(strings.TrimSpace(region), -1) {
		if !digitsRe.MatchString(tok) {
			continue
		}
		n, ok := model.ParseInt(tok)
		if !ok {
			continue
		}
		seats = append(seats, n)
	}
	return seats
}
