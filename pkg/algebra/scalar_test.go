package algebra

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatArithmetic(t *testing.T) {
	t.Run("addition and multiplication are exact", func(t *testing.T) {
		third := NewRat(1, 3)
		sum := third.Add(third).Add(third)
		assert.True(t, sum.IsOne(), "1/3 + 1/3 + 1/3 should be exactly 1")

		assert.True(t, NewRat(2, 3).Mul(NewRat(3, 2)).IsOne())
	})

	t.Run("negation", func(t *testing.T) {
		assert.True(t, Int(5).Neg().Add(Int(5)).IsZero())
	})

	t.Run("lowest terms equality", func(t *testing.T) {
		assert.True(t, NewRat(2, 4).Equal(NewRat(1, 2)))
		assert.False(t, NewRat(1, 2).Equal(NewRat(1, 3)))
	})

	t.Run("predicates", func(t *testing.T) {
		assert.True(t, Int(0).IsZero())
		assert.False(t, Int(0).IsOne())
		assert.True(t, Int(1).IsOne())
		assert.False(t, Int(1).IsZero())
	})
}

func TestRatImmutability(t *testing.T) {
	a := Int(2)
	b := Int(3)
	_ = a.Add(b)
	_ = a.Mul(b)
	_ = a.Neg()
	assert.True(t, a.Equal(Int(2)), "operations must not mutate the receiver")
}

func TestRatString(t *testing.T) {
	assert.Equal(t, "2", Int(2).String())
	assert.Equal(t, "-2", Int(-2).String())
	assert.Equal(t, "4", NewRat(8, 2).String(), "integral rationals render without denominator")
	assert.Equal(t, "1/2", NewRat(1, 2).String())
}

func TestCoerceScalar(t *testing.T) {
	t.Run("accepted inputs", func(t *testing.T) {
		for _, v := range []any{Int(2), 2, int64(2), big.NewRat(2, 1)} {
			s, ok := coerceScalar(v)
			require.True(t, ok, "%T should coerce", v)
			assert.True(t, s.Equal(Int(2)))
		}
	})

	t.Run("big.Rat input is copied", func(t *testing.T) {
		r := big.NewRat(2, 1)
		s, ok := coerceScalar(r)
		require.True(t, ok)
		r.SetInt64(7)
		assert.True(t, s.Equal(Int(2)), "later mutation of the input must not leak in")
	})

	t.Run("rejected inputs", func(t *testing.T) {
		for _, v := range []any{"2", 2.0, nil, NewSymbol("a")} {
			_, ok := coerceScalar(v)
			assert.False(t, ok, "%T should not coerce", v)
		}
	})
}
