package chess

import "testing"

func TestParseMoveText(t *testing.T) {
	cases := []struct {
		in       string
		from, to string
		ok       bool
	}{
		{"e2 e4", "e2", "e4", true},
		{"e2e4", "e2", "e4", true},
		{"E2-E4", "E2", "E4", true},
		{"  g1   f3 ", "g1", "f3", true},
		{"e2 e", "e2", "e", true},
		{"e2", "", "", false},
		{"e2e45", "", "", false},
		{"", "", "", false},
		{"a1 b2 c3", "", "", false},
	}
	for _, tc := range cases {
		from, to, ok := ParseMoveText(tc.in)
		if ok != tc.ok || from != tc.from || to != tc.to {
			t.Errorf("ParseMoveText(%q) = %q, %q, %v; want %q, %q, %v", tc.in, from, to, ok, tc.from, tc.to, tc.ok)
		}
	}
}
