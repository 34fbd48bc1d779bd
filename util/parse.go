package util

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"G", 1 << 30},
	{"M", 1 << 20},
	{"K", 1 << 10},
	{"B", 1},
}

// ParseSize parses a byte count such as "512", "64KB" or "1mb". Units are
// binary and case-insensitive.
func ParseSize(s string) (int64, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	factor := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(raw, u.suffix) {
			raw, factor = strings.TrimSpace(strings.TrimSuffix(raw, u.suffix)), u.factor
			break
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if n > (1<<62)/factor {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return n * factor, nil
}

// MaskSecret keeps the first visible bytes of s and replaces the rest with
// "***". Values no longer than visible are masked entirely.
func MaskSecret(s string, visible int) string {
	if visible < 0 || len(s) <= visible {
		return "***"
	}
	return s[:visible] + "***"
}
