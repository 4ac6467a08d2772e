package platform

import "math/big"

// nativeOffsetBits is the width of off_t. Go uses a 64-bit offset on every
// platform with a sendfile implementation, including 32-bit ones.
const nativeOffsetBits = 64

// NarrowOffset converts v to a signed integer of the given width (32 or 64).
// It fails with ErrOffsetOverflow when v does not fit; v is never truncated.
func NarrowOffset(v *big.Int, bits uint) (int64, error) {
	if bits == 0 || bits > 64 {
		return 0, ErrOffsetOverflow
	}
	limit := new(big.Int).Lsh(big.NewInt(1), bits-1)
	minVal := new(big.Int).Neg(limit)
	maxVal := limit.Sub(limit, big.NewInt(1))
	if v.Cmp(minVal) < 0 || v.Cmp(maxVal) > 0 {
		return 0, ErrOffsetOverflow
	}
	return v.Int64(), nil
}

// ParseOffset parses a decimal (or 0x-prefixed) offset of any size. Range
// checking is left to NarrowOffset.
func ParseOffset(s string) (*big.Int, bool) {
	return new(big.Int).SetString(s, 0)
}
