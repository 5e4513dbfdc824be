package pvp

import (
	"strings"
)

type ColorChoice string

const (
	ColorWhite  ColorChoice = "white"
	ColorBlack  ColorChoice = "black"
	ColorRandom ColorChoice = "random"
)

// ParseColorChoice reads the optional color argument of a challenge.
// Anything unrecognised means random.
func ParseColorChoice(s string) ColorChoice {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "white", "w", "백":
		return ColorWhite
	case "black", "b", "흑":
		return ColorBlack
	default:
		return ColorRandom
	}
}

// IsColorWord reports whether s is an explicit color argument.
func IsColorWord(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w", "백", "black", "b", "흑", "random", "r", "랜덤":
		return true
	}
	return false
}

// DefaultCapacity bounds the number of games held in memory.
const DefaultCapacity = 200
