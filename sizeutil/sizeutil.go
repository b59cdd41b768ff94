// Package sizeutil parses and formats byte-count configuration values
// (e.g. maxFileSize) per §6: binary base-1024 units B/KB/MB/GB/TB and
// their IEC equivalents KiB/MiB/GiB/TiB.
package sizeutil

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fsroute/fsroute/errs"
)

const (
	unit = 1024
	kb   = unit
	mb   = kb * unit
	gb   = mb * unit
	tb   = gb * unit
)

var unitValues = map[string]int64{
	"B":   1,
	"KB":  kb,
	"MB":  mb,
	"GB":  gb,
	"TB":  tb,
	"KIB": kb,
	"MIB": mb,
	"GIB": gb,
	"TIB": tb,
}

var sizePattern = regexp.MustCompile(`^(-?[0-9]+(?:\.[0-9]+)?)\s*([A-Za-z]+)?$`)

// ParseSize parses s (e.g. "10MB", "512 KiB", "2048") into a byte
// count. Bare numeric input is treated as bytes. Negative values,
// non-finite values, and unknown units fail with a ValidationError.
func ParseSize(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	matches := sizePattern.FindStringSubmatch(trimmed)
	if matches == nil {
		return 0, errs.Validation("Invalid size string", map[string]any{"value": s})
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errs.Validation("Invalid size string", map[string]any{"value": s})
	}
	if value < 0 {
		return 0, errs.Validation("Size must not be negative", map[string]any{"value": s})
	}

	unitName := strings.ToUpper(matches[2])
	if unitName == "" {
		unitName = "B"
	}
	multiplier, ok := unitValues[unitName]
	if !ok {
		return 0, errs.Validation("Unknown size unit", map[string]any{"value": s, "unit": matches[2]})
	}

	return int64(value * float64(multiplier)), nil
}

// FormatBytes renders n as a human-readable size string using the
// largest binary unit that divides it evenly, falling back to a plain
// byte count ("1500B") otherwise. FormatBytes(n) is chosen so that
// ParseSize(FormatBytes(n)) == n for every non-negative n ParseSize
// would accept.
func FormatBytes(n int64) string {
	if n < 0 {
		return fmt.Sprintf("%dB", n)
	}

	switch {
	case n != 0 && n%tb == 0:
		return fmt.Sprintf("%dTB", n/tb)
	case n != 0 && n%gb == 0:
		return fmt.Sprintf("%dGB", n/gb)
	case n != 0 && n%mb == 0:
		return fmt.Sprintf("%dMB", n/mb)
	case n != 0 && n%kb == 0:
		return fmt.Sprintf("%dKB", n/kb)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
