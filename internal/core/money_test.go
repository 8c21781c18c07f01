package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1200", 1200, true},
		{"1200.5", 1200.5, true},
		{"12,5", 12.5, true},
		{"1 200,50", 1200.5, true},
		{"1,200.50", 1200.5, true},
		{"1.200,50", 1200.5, true},
		{"1.200", 1200, true},
		{"1,200,300", 1200300, true},
		{"1'500", 1500, true},
		{" 42 ", 42, true},
		{"0", 0, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"€10", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseAmount(tc.in)
		if ok != tc.ok {
			t.Fatalf("%q: expected ok=%v, got %v", tc.in, tc.ok, ok)
		}
		if ok && got != tc.out {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.out, got)
		}
	}
}
