package util

import (
	"strings"
	"testing"
	"time"
)

func TestSeeMore(t *testing.T) {
	got := SeeMore("Recent games\r\n\n• 1. A vs B\n• 2. C vs D")
	head, body, _ := strings.Cut(got, "\n")
	if !strings.HasPrefix(head, "Recent games"+KakaoZeroWidthSpace) {
		t.Fatalf("head = %q", head)
	}
	if strings.Count(head, KakaoZeroWidthSpace) != KakaoSeeMorePadding {
		t.Fatalf("padding = %d", strings.Count(head, KakaoZeroWidthSpace))
	}
	if body != "• 1. A vs B\n• 2. C vs D" {
		t.Fatalf("body = %q", body)
	}
	for _, s := range []string{"", "one line", "title\n\n  "} {
		if SeeMore(s) != s {
			t.Errorf("SeeMore(%q) should be unchanged", s)
		}
	}
}

func TestFormatKST(t *testing.T) {
	ts := time.Date(2025, 12, 31, 16, 30, 0, 0, time.UTC)
	if got := FormatKST(ts, "2006-01-02 15:04"); got != "2026-01-01 01:30" {
		t.Fatalf("FormatKST = %q", got)
	}
}
