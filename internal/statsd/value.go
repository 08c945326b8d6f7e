package statsd

import (
	"fmt"
	"math"
	"strconv"
)

type valueKind uint8

const (
	kindInt valueKind = iota
	kindUint
	kindFloat
)

// Value is a gauge reading. Integers stay integers all the way to the wire,
// so 64-bit byte counters are never rounded through float64. The zero Value
// is the integer 0.
type Value struct {
	kind valueKind
	i    int64
	u    uint64
	f    float64
}

// Int returns an integer Value.
func Int(v int64) Value { return Value{kind: kindInt, i: v} }

// Uint returns an unsigned integer Value.
func Uint(v uint64) Value {
	if v <= math.MaxInt64 {
		return Int(int64(v))
	}
	return Value{kind: kindUint, u: v}
}

// Float returns a floating point Value.
func Float(v float64) Value { return Value{kind: kindFloat, f: v} }

// ParseValue parses s as a signed integer, then an unsigned integer, then a
// float, keeping the first representation that fits.
func ParseValue(s string) (Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), nil
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return Uint(u), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("statsd: %q is not a number", s)
	}
	return Float(f), nil
}

// Int64 returns the value when it is an integer that fits in an int64.
func (v Value) Int64() (int64, bool) {
	return v.i, v.kind == kindInt
}

// Float64 returns the value as a float64, rounding large integers.
func (v Value) Float64() float64 {
	switch v.kind {
	case kindUint:
		return float64(v.u)
	case kindFloat:
		return v.f
	}
	return float64(v.i)
}

// String formats the value exactly. Floats carry no exponent.
func (v Value) String() string {
	switch v.kind {
	case kindUint:
		return strconv.FormatUint(v.u, 10)
	case kindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	}
	return strconv.FormatInt(v.i, 10)
}
