package algebra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSpaces(t *testing.T) {
	h1 := NewLocalSpace("q1")
	h2 := NewLocalSpace("q2")

	assert.True(t, h1.Equal(NewLocalSpace("q1")), "label identifies the space")
	assert.False(t, h1.Equal(h2))
	assert.False(t, h1.IsTrivial())
	assert.True(t, h1.Intersects(h1))
	assert.False(t, h1.Intersects(h2))
	assert.True(t, h1.Contains(TrivialSpace))
}

func TestTensorSpace(t *testing.T) {
	h1 := NewLocalSpace("q1")
	h2 := NewLocalSpace("q2")
	h3 := NewLocalSpace("q3")

	t.Run("factor order does not matter", func(t *testing.T) {
		assert.True(t, TensorSpace(h1, h2).Equal(TensorSpace(h2, h1)))
		assert.Equal(t, "q1*q2", TensorSpace(h2, h1).Label())
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		assert.True(t, TensorSpace(h1, h1).Equal(h1))
	})

	t.Run("trivial factors drop out", func(t *testing.T) {
		assert.True(t, TensorSpace(TrivialSpace, h1).Equal(h1))
		assert.True(t, TensorSpace().IsTrivial())
		assert.True(t, TensorSpace(TrivialSpace, TrivialSpace).IsTrivial())
	})

	t.Run("products flatten", func(t *testing.T) {
		p := TensorSpace(TensorSpace(h1, h2), h3)
		require.Len(t, p.LocalFactors(), 3)
		assert.Equal(t, "q1*q2*q3", p.Label())
	})

	t.Run("intersection and containment", func(t *testing.T) {
		p12 := TensorSpace(h1, h2)
		p23 := TensorSpace(h2, h3)
		assert.True(t, p12.Intersects(p23))
		assert.False(t, p12.Intersects(h3))
		assert.True(t, p12.Contains(h1))
		assert.False(t, p12.Contains(p23))
	})
}

func TestSpaceOf(t *testing.T) {
	alg := NewStdAlgebra()
	h1 := NewLocalSpace("q1")
	h2 := NewLocalSpace("q2")
	x := NewSymbolIn("x", h1)
	y := NewSymbolIn("y", h2)

	t.Run("symbol space", func(t *testing.T) {
		assert.True(t, SpaceOf(x).Equal(h1))
	})

	t.Run("plain symbols are trivial", func(t *testing.T) {
		assert.True(t, SpaceOf(NewSymbol("a")).IsTrivial())
	})

	t.Run("operations combine operand spaces", func(t *testing.T) {
		prod := alg.Times.MustCreate(x, y)
		assert.True(t, SpaceOf(prod).Equal(TensorSpace(h1, h2)))
	})

	t.Run("scalar operands contribute nothing", func(t *testing.T) {
		scaled := alg.ScalarMul.MustCreate(2, x)
		assert.True(t, SpaceOf(scaled).Equal(h1))
	})
}
