package kuaishou

import (
	"strconv"
	"strings"
)

// NormalizeCount converts a platform count value to an integer. Plain numbers
// pass through, "1.5万" and "1.5w" mean 15000, comma separators are stripped,
// and anything unparseable normalizes to 0 so threshold filters exclude it
// instead of crashing. Idempotent: feeding the result back in is a no-op.
func NormalizeCount(raw string) int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "万"):
		s = strings.TrimSuffix(s, "万")
		multiplier = 10000
	case strings.HasSuffix(s, "w"), strings.HasSuffix(s, "W"):
		s = s[:len(s)-1]
		multiplier = 10000
	}

	s = strings.ReplaceAll(s, ",", "")

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n * multiplier
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f * float64(multiplier))
	}
	return 0
}
