package utils

import "testing"

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{5.5, "5.50"},
		{1234.56, "1,234.56"},
		{1234567.891, "1,234,567.89"},
		{-9876.54, "-9,876.54"},
	}
	for _, tc := range cases {
		if got := FormatPrice(tc.in); got != tc.want {
			t.Errorf("FormatPrice(%g) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatUSD(t *testing.T) {
	if got := FormatUSD(1234.5); got != "$1,234.50" {
		t.Errorf("FormatUSD = %q", got)
	}
	if got := FormatUSD(-20); got != "-$20.00" {
		t.Errorf("FormatUSD negative = %q", got)
	}
}

func TestFormatPct(t *testing.T) {
	if got := FormatPct(1.234); got != "+1.23%" {
		t.Errorf("FormatPct positive = %q", got)
	}
	if got := FormatPct(-0.5); got != "-0.50%" {
		t.Errorf("FormatPct negative = %q", got)
	}
	if got := FormatPct(0); got != "+0.00%" {
		t.Errorf("FormatPct zero = %q", got)
	}
}

func TestChangeMarker(t *testing.T) {
	if ChangeMarker(1) != "🟢" || ChangeMarker(-1) != "🔴" || ChangeMarker(0) != "⚪" {
		t.Error("unexpected change markers")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("a longer sentence", 8); got != "a longer..." {
		t.Errorf("Truncate long = %q", got)
	}
	if got := Truncate("  padded  ", 20); got != "padded" {
		t.Errorf("Truncate should trim whitespace, got %q", got)
	}
}
