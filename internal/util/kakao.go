package util

import "strings"

const (
	// KakaoSeeMorePadding zero-width spaces push the rest of a message behind the fold.
	KakaoSeeMorePadding = 500
	KakaoZeroWidthSpace = "\u200b"
)

// SeeMore keeps the first line of text visible in the chat bubble and folds
// the rest behind KakaoTalk's '전체보기'. Single-line text is returned as is.
func SeeMore(text string) string {
	head, body, ok := strings.Cut(strings.TrimLeft(text, "\r\n"), "\n")
	body = strings.TrimLeft(body, "\r\n")
	if !ok || strings.TrimSpace(body) == "" {
		return text
	}
	head = strings.TrimSpace(head)

	var b strings.Builder
	b.Grow(len(head) + KakaoSeeMorePadding*len(KakaoZeroWidthSpace) + 1 + len(body))
	b.WriteString(head)
	b.WriteString(strings.Repeat(KakaoZeroWidthSpace, KakaoSeeMorePadding))
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String()
}
