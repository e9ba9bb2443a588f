package tenor

import (
	"testing"
	"time"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestParseAndAdd(t *testing.T) {
	cases := []struct {
		tenor string
		from  time.Time
		want  time.Time
	}{
		{"ON", d(2026, 1, 1), d(2026, 1, 2)},
		{"1D", d(2026, 1, 1), d(2026, 1, 2)},
		{"1W", d(2026, 1, 1), d(2026, 1, 8)},
		{"3M", d(2026, 1, 1), d(2026, 4, 1)},
		{"5Y", d(2026, 1, 1), d(2031, 1, 1)},
	}
	for _, tc := range cases {
		got, err := Add(tc.from, tc.tenor)
		if err != nil {
			t.Fatalf("Add(%v, %q) error: %v", tc.from, tc.tenor, err)
		}
		if !got.Equal(tc.want) {
			t.Errorf("Add(%v, %q) = %v, want %v", tc.from, tc.tenor, got, tc.want)
		}
	}
}

func TestAddMonthEndOfMonthClamp(t *testing.T) {
	got, err := Add(d(2026, 1, 31), "1M")
	if err != nil {
		t.Fatal(err)
	}
	want := d(2026, 2, 28) // 2026 is not a leap year
	if !got.Equal(want) {
		t.Errorf("Jan 31 + 1M = %v, want %v", got, want)
	}
}

func TestUnsupportedTenor(t *testing.T) {
	for _, bad := range []string{"", "3Z", "Q1", "abc"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q): expected error", bad)
		}
	}
}
