package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	tenThousandSuffix = "万"
	tenThousand       = 10000
	kilo              = 1000
)

var leadingNumber = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)`)

// Normalize converts a human formatted counter such as "1.5万", "2.3k" or
// "1,024" into an integer. Integers pass through unchanged, floats are
// rounded half away from zero and anything unparseable becomes 0.
func Normalize(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return clampUint(uint64(n))
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return clampUint(n)
	case float32:
		return roundFloat(float64(n))
	case float64:
		return roundFloat(n)
	case string:
		return normalizeString(n)
	default:
		return 0
	}
}

func clampUint(n uint64) int64 {
	if n > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

func normalizeString(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")

	if i := strings.Index(s, tenThousandSuffix); i >= 0 {
		return scaled(s[:i], tenThousand)
	}
	if i := strings.IndexAny(s, "kK"); i >= 0 {
		return scaled(s[:i], kilo)
	}
	return scaled(s, 1)
}

func scaled(prefix string, factor float64) int64 {
	f, ok := parseLeadingFloat(prefix)
	if !ok {
		return 0
	}
	return roundFloat(f * factor)
}

// parseLeadingFloat reads the numeric prefix of s, ignoring trailing text
// such as "+" or unit words.
func parseLeadingFloat(s string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func roundFloat(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(math.Round(f))
}
