package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	kilobyte int64 = 1024
	megabyte       = kilobyte * 1024
	gigabyte       = megabyte * 1024
)

// HumanReadableSize formats a byte count with 1024-based units:
// "1023 bytes", "1.0 KB", "1.5 KB", "1.07 MB".
func HumanReadableSize(size int64) string {
	switch {
	case size < kilobyte:
		return fmt.Sprintf("%d bytes", size)
	case size < megabyte:
		return scaled(size, kilobyte) + " KB"
	case size < gigabyte:
		return scaled(size, megabyte) + " MB"
	default:
		return scaled(size, gigabyte) + " GB"
	}
}

// scaled divides and rounds half to even at two places, keeping at least
// one fractional digit.
func scaled(size, unit int64) string {
	v := decimal.NewFromInt(size).Div(decimal.NewFromInt(unit)).RoundBank(2).String()
	if !strings.Contains(v, ".") {
		v += ".0"
	}
	return v
}
