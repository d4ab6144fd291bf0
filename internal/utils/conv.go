package utils

import (
	"strconv"
)

// ParsePage parses a 1-based page query value; anything missing,
// malformed or non-positive clamps to the first page.
func ParsePage(s string) int {
	if p, err := strconv.Atoi(s); err == nil && p > 0 {
		return p
	}
	return 1
}
