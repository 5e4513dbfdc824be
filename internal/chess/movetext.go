package chess

import "strings"

// ParseMoveText splits player input such as "e2 e4", "e2e4" or "E2-E4" into
// its two coordinates. The halves are returned unchecked so that Validate
// reports the precise reason for malformed squares.
func ParseMoveText(text string) (from, to string, ok bool) {
	fields := strings.FieldsFunc(strings.TrimSpace(text), func(r rune) bool {
		return r == ' ' || r == '-' || r == '\t'
	})
	switch len(fields) {
	case 2:
		return fields[0], fields[1], true
	case 1:
		r := []rune(fields[0])
		if len(r) == 4 {
			return string(r[:2]), string(r[2:]), true
		}
	}
	return "", "", false
}
