package algebra

import (
	"math/big"
)

// Scalar is the capability the engine consumes from a scalar subsystem:
// exact addition and multiplication, equality, and the zero/one
// predicates needed by neutral-element filtering and numeric rules. Any
// external symbolic-scalar implementation can be plugged in by
// satisfying this interface.
type Scalar interface {
	// IsZero reports whether the scalar is the number zero.
	IsZero() bool

	// IsOne reports whether the scalar is the number one.
	IsOne() bool

	// Add returns the sum of this scalar and other.
	Add(other Scalar) Scalar

	// Mul returns the product of this scalar and other.
	Mul(other Scalar) Scalar

	// Neg returns the additive inverse.
	Neg() Scalar

	// Equal reports exact equality with another scalar.
	Equal(other Scalar) bool

	// String returns a deterministic rendering, used in canonical keys.
	String() string
}

// Rat is an exact rational scalar backed by math/big. Rats are
// immutable: every operation returns a new value, and the underlying
// big.Rat is never exposed for mutation.
type Rat struct {
	r *big.Rat
}

// Int returns the rational n/1.
func Int(n int64) Rat {
	return Rat{r: new(big.Rat).SetInt64(n)}
}

// NewRat returns the rational p/q in lowest terms. Panics if q is zero,
// matching the behavior of big.Rat.
func NewRat(p, q int64) Rat {
	return Rat{r: big.NewRat(p, q)}
}

// IsZero reports whether the rational is zero.
func (a Rat) IsZero() bool { return a.r.Sign() == 0 }

// IsOne reports whether the rational is one.
func (a Rat) IsOne() bool { return a.r.Cmp(ratOne) == 0 }

// Add returns a + other. The other scalar must be a Rat.
func (a Rat) Add(other Scalar) Scalar {
	b := other.(Rat)
	return Rat{r: new(big.Rat).Add(a.r, b.r)}
}

// Mul returns a * other. The other scalar must be a Rat.
func (a Rat) Mul(other Scalar) Scalar {
	b := other.(Rat)
	return Rat{r: new(big.Rat).Mul(a.r, b.r)}
}

// Neg returns -a.
func (a Rat) Neg() Scalar {
	return Rat{r: new(big.Rat).Neg(a.r)}
}

// Equal reports whether other is a Rat with the same value.
func (a Rat) Equal(other Scalar) bool {
	b, ok := other.(Rat)
	return ok && a.r.Cmp(b.r) == 0
}

// String renders the rational as "p/q", or just "p" for integers.
func (a Rat) String() string {
	if a.r.IsInt() {
		return a.r.Num().String()
	}
	return a.r.String()
}

var ratOne = big.NewRat(1, 1)

// coerceScalar converts raw Go numbers into Scalars so that callers can
// pass plain ints where a scalar is expected.
func coerceScalar(v any) (Scalar, bool) {
	switch val := v.(type) {
	case Scalar:
		return val, true
	case int:
		return Int(int64(val)), true
	case int64:
		return Int(val), true
	case *big.Rat:
		return Rat{r: new(big.Rat).Set(val)}, true
	default:
		return nil, false
	}
}
