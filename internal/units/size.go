// Package units parses human-readable byte sizes for flags and config.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var multipliers = map[string]int64{ //nolint:gochecknoglobals // lookup table
	"":  1,
	"B": 1,
	"K": 1 << 10,
	"M": 1 << 20,
	"G": 1 << 30,
	"T": 1 << 40,
}

// ParseSize parses a human-readable size string into bytes.
// Accepts 100, 100B, 100K, 100KB, 100KiB and the same for M, G, T
// (case-insensitive). Uses powers of 1024.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	upper := strings.ToUpper(s)
	numStr := strings.TrimRight(upper, "BIKMGT")
	suffix := upper[len(numStr):]
	suffix = strings.TrimSuffix(strings.TrimSuffix(suffix, "B"), "I")
	if suffix == "" && strings.HasSuffix(upper, "B") {
		suffix = "B"
	}

	mult, ok := multipliers[suffix]
	if !ok || numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %q", s)
		}
		if n > math.MaxInt64/mult {
			return 0, fmt.Errorf("size overflows int64: %q", s)
		}
		return n * mult, nil
	}

	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	v := f * float64(mult)
	if v >= math.MaxInt64 {
		return 0, fmt.Errorf("size overflows int64: %q", s)
	}
	return int64(v), nil
}
