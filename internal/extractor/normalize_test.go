package extractor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"ten thousand suffix", "1.5万", 15000},
		{"kilo suffix", "2.3k", 2300},
		{"kilo suffix upper", "2.3K", 2300},
		{"empty", "", 0},
		{"whitespace", "   ", 0},
		{"nil", nil, 0},
		{"int", 500, 500},
		{"unparseable", "abc", 0},
		{"plain digits", "120", 120},
		{"padded digits", " 42 ", 42},
		{"thousands separator", "1,234", 1234},
		{"trailing plus", "10+", 10},
		{"ten thousand with plus", "1万+", 10000},
		{"rounding of magnitude", "1.333万", 13330},
		{"float rounds half away from zero", 12.5, 13},
		{"negative float rounds half away from zero", -2.5, -3},
		{"decimal string", "7.6", 8},
		{"bool is not a number", true, 0},
		{"suffix without number", "万", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_IdempotentOnIntegers(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, 15000, math.MaxInt32, math.MaxInt64, math.MinInt64} {
		assert.Equal(t, n, Normalize(n))
		assert.Equal(t, n, Normalize(Normalize(n)))
	}
}

func TestNormalize_AllIntegerKinds(t *testing.T) {
	tests := []struct {
		in   any
		want int64
	}{
		{int(5), 5},
		{int8(-5), -5},
		{int16(5), 5},
		{int32(5), 5},
		{int64(5), 5},
		{uint(5), 5},
		{uint8(255), 255},
		{uint16(65535), 65535},
		{uint32(math.MaxUint32), math.MaxUint32},
		{uint64(5), 5},
		{uint64(math.MaxUint64), math.MaxInt64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "%T(%v)", tt.in, tt.in)
	}
}
