package platform

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrowOffset(t *testing.T) {
	tests := []struct {
		name string
		in   string
		bits uint
		want int64
		err  bool
	}{
		{"zero", "0", 64, 0, false},
		{"max int64", "9223372036854775807", 64, math.MaxInt64, false},
		{"min int64", "-9223372036854775808", 64, math.MinInt64, false},
		{"above int64", "9223372036854775808", 64, 0, true},
		{"below int64", "-9223372036854775809", 64, 0, true},
		{"huge", "340282366920938463463374607431768211456", 64, 0, true},
		{"max int32", "2147483647", 32, math.MaxInt32, false},
		{"above int32", "2147483648", 32, 0, true},
		{"min int32", "-2147483648", 32, math.MinInt32, false},
		{"below int32", "-2147483649", 32, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := new(big.Int).SetString(tt.in, 10)
			require.True(t, ok)

			got, err := NarrowOffset(v, tt.bits)
			if tt.err {
				assert.ErrorIs(t, err, ErrOffsetOverflow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNarrowOffsetBadWidth(t *testing.T) {
	_, err := NarrowOffset(big.NewInt(1), 0)
	assert.ErrorIs(t, err, ErrOffsetOverflow)
	_, err = NarrowOffset(big.NewInt(1), 65)
	assert.ErrorIs(t, err, ErrOffsetOverflow)
}

func TestParseOffset(t *testing.T) {
	v, ok := ParseOffset("0x10")
	require.True(t, ok)
	assert.Equal(t, int64(16), v.Int64())

	v, ok = ParseOffset("18446744073709551616")
	require.True(t, ok)
	assert.False(t, v.IsInt64())

	_, ok = ParseOffset("twelve")
	assert.False(t, ok)
}
