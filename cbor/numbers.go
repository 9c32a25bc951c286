package cbor

import (
	"fmt"
	"math"
	"math/big"
)

// NumberKind discriminates the narrowed representation chosen for a Number,
// per spec §9 "Weakly-typed Number parameters": tag numbers, sizes, and
// decoded integers are all modeled as the narrowest of Int32 | Int64 | Big.
type NumberKind int

const (
	KindInt32 NumberKind = iota
	KindInt64
	KindBig
)

// Number is the narrowed representation of a CBOR integer: the result of
// decoding a major-0/1 head or a bignum tag (2/3), always reduced to the
// narrowest variant that holds it exactly (spec §3 "Integer narrowing").
type Number struct {
	kind NumberKind
	i32  int32
	i64  int64
	big  *big.Int
}

// NewNumberFromInt64 narrows v to the smallest Number variant that holds it.
func NewNumberFromInt64(v int64) Number {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return Number{kind: KindInt32, i32: int32(v)}
	}
	return Number{kind: KindInt64, i64: v}
}

// NewNumberFromUint64 narrows an unsigned value, widening to big.Int only
// when it exceeds int64 (CBOR major-0 arguments are unsigned up to 2^64-1).
func NewNumberFromUint64(v uint64) Number {
	if v <= math.MaxInt32 {
		return Number{kind: KindInt32, i32: int32(v)}
	}
	if v <= math.MaxInt64 {
		return Number{kind: KindInt64, i64: int64(v)}
	}
	return Number{kind: KindBig, big: new(big.Int).SetUint64(v)}
}

// NewNumberFromBigInt narrows a big.Int down to Int32/Int64 when it fits.
func NewNumberFromBigInt(v *big.Int) Number {
	if v.IsInt64() {
		return NewNumberFromInt64(v.Int64())
	}
	return Number{kind: KindBig, big: new(big.Int).Set(v)}
}

// Kind reports which representation this Number was narrowed to.
func (n Number) Kind() NumberKind { return n.kind }

// Int64 returns the value as an int64 and true, or false if it does not fit.
func (n Number) Int64() (int64, bool) {
	switch n.kind {
	case KindInt32:
		return int64(n.i32), true
	case KindInt64:
		return n.i64, true
	default:
		if n.big.IsInt64() {
			return n.big.Int64(), true
		}
		return 0, false
	}
}

// Uint64 returns the value as a uint64 and true, or false if it is negative
// or does not fit — used by tag-registry lookups and CBOR head encoding.
func (n Number) Uint64() (uint64, bool) {
	switch n.kind {
	case KindInt32:
		if n.i32 < 0 {
			return 0, false
		}
		return uint64(n.i32), true
	case KindInt64:
		if n.i64 < 0 {
			return 0, false
		}
		return uint64(n.i64), true
	default:
		if n.big.Sign() < 0 || !n.big.IsUint64() {
			return 0, false
		}
		return n.big.Uint64(), true
	}
}

// BigInt returns the value as a *big.Int, always (never fails).
func (n Number) BigInt() *big.Int {
	switch n.kind {
	case KindInt32:
		return big.NewInt(int64(n.i32))
	case KindInt64:
		return big.NewInt(n.i64)
	default:
		return new(big.Int).Set(n.big)
	}
}

// Sign returns -1, 0, or 1 per the usual big.Int convention.
func (n Number) Sign() int {
	switch n.kind {
	case KindInt32:
		switch {
		case n.i32 < 0:
			return -1
		case n.i32 > 0:
			return 1
		default:
			return 0
		}
	case KindInt64:
		switch {
		case n.i64 < 0:
			return -1
		case n.i64 > 0:
			return 1
		default:
			return 0
		}
	default:
		return n.big.Sign()
	}
}

// Equal reports structural equality between two narrowed Numbers.
func (n Number) Equal(o Number) bool {
	return n.BigInt().Cmp(o.BigInt()) == 0
}

func (n Number) String() string {
	switch n.kind {
	case KindInt32:
		return fmt.Sprintf("%d", n.i32)
	case KindInt64:
		return fmt.Sprintf("%d", n.i64)
	default:
		return n.big.String()
	}
}

// bigIntFromBytes interprets b as a big-endian unsigned magnitude, then
// applies the tag-3 "negative bignum" transform (-1 - n) when negative is
// true, per RFC 8949 §3.4.3.
func bigIntFromBytes(b []byte, negative bool) *big.Int {
	n := new(big.Int).SetBytes(b)
	if negative {
		n.Neg(n)
		n.Sub(n, big.NewInt(1))
	}
	return n
}

// absUint64 returns the unsigned CBOR head argument for this Number's
// absolute magnitude along with a flag for whether it fits 64 bits, which is
// always true for anything a tokenizer can have produced (RFC 8949 head
// arguments never exceed 8 bytes / 2^64-1).
func (n Number) absUint64() (uint64, bool) {
	b := n.BigInt()
	if b.Sign() < 0 {
		b = new(big.Int).Neg(b)
	}
	if !b.IsUint64() {
		return 0, false
	}
	return b.Uint64(), true
}
