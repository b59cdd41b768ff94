package sizeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsroute/fsroute/errs"
)

func TestParseSizeUnits(t *testing.T) {
	cases := map[string]int64{
		"0":        0,
		"512":      512,
		"10MB":     10 * mb,
		"10 MB":    10 * mb,
		"1GB":      1 * gb,
		"2TB":      2 * tb,
		"4KiB":     4 * kb,
		"1MiB":     1 * mb,
		"  5KB  ":  5 * kb,
		"1.5MB":    int64(1.5 * float64(mb)),
	}
	for in, want := range cases {
		got, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseSizeRejectsNegative(t *testing.T) {
	_, err := ParseSize("-10MB")
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindValidation, e.Kind())
}

func TestParseSizeRejectsUnknownUnit(t *testing.T) {
	_, err := ParseSize("10XB")
	require.Error(t, err)
}

func TestParseSizeRejectsGarbage(t *testing.T) {
	_, err := ParseSize("not-a-size")
	require.Error(t, err)
}

func TestFormatBytesRoundTrip(t *testing.T) {
	inputs := []string{"0", "512", "10MB", "1GB", "2TB", "4KiB", "100"}
	for _, in := range inputs {
		parsed, err := ParseSize(in)
		require.NoError(t, err, in)

		formatted := FormatBytes(parsed)
		reparsed, err := ParseSize(formatted)
		require.NoError(t, err, formatted)

		assert.Equal(t, parsed, reparsed, "round trip for %s via %s", in, formatted)
	}
}
