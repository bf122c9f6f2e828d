package bot

import (
	"math"
	"strconv"
	"strings"
)

// parsePage reads the page argument the way the community is used to:
// leading integer wins ("2쪽" is 2), and a missing, zero or non-numeric
// argument means page 1. Negative numbers survive so the range check can
// report them.
func parsePage(arg string) int {
	s := strings.TrimSpace(arg)
	sign := 1
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		n = math.MaxInt32
	}
	if n == 0 {
		return 1
	}
	return sign * n
}

// firstArg returns the first whitespace separated word of payload.
func firstArg(payload string) string {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
