package column

import (
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Int64Type holds 64-bit signed integers.
type Int64Type struct{}

func (Int64Type) ID() TypeID { return Int64TypeID }

func (Int64Type) Compare(a, b any) int {
	x, y := a.(int64), b.(int64)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func (Int64Type) Hash(h *xxhash.Digest, v any) {
	var buf [8]byte
	putInt64(buf[:], v.(int64))
	h.Write(buf[:])
}

func (Int64Type) Parse(s string) (any, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, ErrTypeMismatch
	}
	return n, nil
}

func (Int64Type) AsFloat64(v any) (float64, bool) {
	return float64(v.(int64)), true
}

// Float64Type holds 64-bit floating-point numbers.
type Float64Type struct{}

func (Float64Type) ID() TypeID { return Float64TypeID }

func (Float64Type) Compare(a, b any) int {
	x, y := a.(float64), b.(float64)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func (Float64Type) Hash(h *xxhash.Digest, v any) {
	var buf [8]byte
	putUint64(buf[:], floatBits(v.(float64)))
	h.Write(buf[:])
}

func (Float64Type) Parse(s string) (any, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, ErrTypeMismatch
	}
	return f, nil
}

func (Float64Type) AsFloat64(v any) (float64, bool) {
	return v.(float64), true
}

// StringType holds opaque text values, compared byte-lexicographically.
type StringType struct{}

func (StringType) ID() TypeID { return StringTypeID }

func (StringType) Compare(a, b any) int {
	x, y := a.(string), b.(string)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func (StringType) Hash(h *xxhash.Digest, v any) {
	s := v.(string)
	// Length prefix keeps composite keys unambiguous: ("ab","c") and
	// ("a","bc") must not hash the same byte stream.
	var buf [8]byte
	putUint64(buf[:], uint64(len(s)))
	h.Write(buf[:])
	h.WriteString(s)
}

func (StringType) Parse(s string) (any, error) {
	return s, nil
}

func (StringType) AsFloat64(any) (float64, bool) {
	return 0, false
}

func putInt64(buf []byte, v int64) {
	putUint64(buf, uint64(v))
}

// putUint64 writes v into buf least-significant-byte first.
func putUint64(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

// floatBits reinterprets f's bit pattern as a uint64, hashing -0 and +0 (and
// any bit-identical NaNs) identically, which is the right behavior for
// equality comparisons driven by Compare rather than by bit pattern.
func floatBits(f float64) uint64 {
	if f == 0 {
		return 0
	}
	return math.Float64bits(f)
}
