package marker

import (
	"testing"
	"time"
)

func TestDateCode(t *testing.T) {
	t.Parallel()

	cases := map[time.Time]string{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC):   "0101",
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC): "1231",
		time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC):  "0307",
	}
	for in, want := range cases {
		if got := DateCode(in); got != want {
			t.Fatalf("DateCode(%v)=%q, want %q", in, got, want)
		}
	}
}

func TestOutputFilename(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"座席マップ.xlsx", "座席マップ_0101_blue_marked.xlsx"},
		{"map.XLSX", "map_0101_blue_marked.xlsx"},
		{`C:\Users\a\map.xlsx`, "map_0101_blue_marked.xlsx"},
		{"dir/map.v2.xlsx", "map.v2_0101_blue_marked.xlsx"},
		{"", "seatmap_0101_blue_marked.xlsx"},
	}
	for _, tc := range cases {
		if got := OutputFilename(tc.in, "0101"); got != tc.want {
			t.Fatalf("OutputFilename(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	got, err := ParseDate("", now)
	if err != nil || !got.Equal(now) {
		t.Fatalf("empty date: %v %v", got, err)
	}
	got, err = ParseDate("2026-01-05", now)
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if DateCode(got) != "0105" {
		t.Fatalf("code=%s", DateCode(got))
	}
	if _, err := ParseDate("01/05", now); err == nil {
		t.Fatalf("expected error")
	}
}
