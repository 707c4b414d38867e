package algebra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWildcardBinding(t *testing.T) {
	a := NewSymbol("a")

	t.Run("named wildcard binds the candidate", func(t *testing.T) {
		res := Wildcard("x").Match(a)
		require.True(t, res.Success)
		assert.True(t, res.Bindings().Expr("x").Equal(a))
	})

	t.Run("empty name matches without binding", func(t *testing.T) {
		res := Wildcard("").Match(a)
		require.True(t, res.Success)
		assert.Empty(t, res.Bindings())
	})

	t.Run("repeated name must bind equal values", func(t *testing.T) {
		alg := NewStdAlgebra()
		p := NewPattern(alg.Commutator, Wildcard("x"), Wildcard("x"))

		res := p.Match(mustOperation(t, alg.Commutator, a, a))
		require.True(t, res.Success)

		res = p.Match(mustOperation(t, alg.Commutator, a, NewSymbol("b")))
		require.False(t, res.Success)
		assert.Contains(t, res.Reason, "already bound")
	})
}

func TestWildcardConstraints(t *testing.T) {
	a := NewSymbol("a")
	two := NewScalarValue(Int(2))

	t.Run("OfKind accepts matching kind", func(t *testing.T) {
		res := Wildcard("s", OfKind(ScalarValueKind)).Match(two)
		assert.True(t, res.Success)
	})

	t.Run("OfKind rejects other kinds", func(t *testing.T) {
		res := Wildcard("s", OfKind(ScalarValueKind)).Match(a)
		require.False(t, res.Success)
		assert.Contains(t, res.Reason, "requires kind")
	})

	t.Run("Where predicate gates the match", func(t *testing.T) {
		nonZero := Wildcard("s", OfKind(ScalarValueKind), Where(func(v any) bool {
			return !v.(*ScalarValue).Value().IsZero()
		}))
		assert.True(t, nonZero.Match(two).Success)
		assert.False(t, nonZero.Match(NewScalarValue(Int(0))).Success)
	})
}

func TestVariadicWildcards(t *testing.T) {
	alg := NewStdAlgebra()
	a := NewSymbol("a")
	b := NewSymbol("b")
	c := NewSymbol("c")
	sum := mustOperation(t, alg.Plus, a, b, c)

	t.Run("one-or-more captures the tail", func(t *testing.T) {
		p := PatternHead(Wildcard("first"), Wildcard("rest", OneOrMore()))
		res := p.Match(sum)
		require.True(t, res.Success)
		assert.True(t, res.Bindings().Expr("first").Equal(a))
		rest := res.Bindings().Exprs("rest")
		require.Len(t, rest, 2)
		assert.True(t, rest[0].Equal(b))
		assert.True(t, rest[1].Equal(c))
	})

	t.Run("one-or-more needs at least one operand", func(t *testing.T) {
		p := PatternHead(Wildcard("x"), Wildcard("y"), Wildcard("z"), Wildcard("rest", OneOrMore()))
		res := p.Match(sum)
		require.False(t, res.Success)
		assert.Contains(t, res.Reason, "at least one")
	})

	t.Run("zero-or-more accepts the empty tail", func(t *testing.T) {
		p := PatternHead(Wildcard("x"), Wildcard("y"), Wildcard("z"), Wildcard("rest", ZeroOrMore()))
		res := p.Match(sum)
		require.True(t, res.Success)
		assert.Empty(t, res.Bindings().Exprs("rest"))
	})

	t.Run("variadic tail honors kind constraint", func(t *testing.T) {
		p := PatternHead(Wildcard("all", OneOrMore(), OfKind(SymbolKind)))
		assert.True(t, p.Match(sum).Success)

		mixed := mustOperation(t, alg.Plus, a, alg.ScalarMul.MustCreate(2, b))
		assert.False(t, p.Match(mixed).Success)
	})

	t.Run("variadic wildcard before the tail is rejected at registration", func(t *testing.T) {
		k := MustKind(KindSpec{Name: "V", MinArity: 0, MaxArity: -1, Associative: true})
		err := k.AddRule("bad",
			PatternHead(Wildcard("pre", OneOrMore()), Wildcard("last")),
			func(Bindings) (any, error) { return nil, ErrCannotSimplify })
		var cfg *RuleConfigurationError
		require.ErrorAs(t, err, &cfg)
		assert.Contains(t, cfg.Detail, "last operand pattern")
	})
}

func TestLiteralPatterns(t *testing.T) {
	a := NewSymbol("a")

	t.Run("expression literal matches structurally", func(t *testing.T) {
		assert.True(t, Lit(a).Match(NewSymbol("a")).Success)
		assert.False(t, Lit(a).Match(NewSymbol("b")).Success)
	})

	t.Run("plain integer literal matches the scalar atom", func(t *testing.T) {
		assert.True(t, Lit(0).Match(NewScalarValue(Int(0))).Success)
		assert.False(t, Lit(0).Match(NewScalarValue(Int(1))).Success)
	})
}

func TestConcretePatterns(t *testing.T) {
	alg := NewStdAlgebra()
	a := NewSymbol("a")
	b := NewSymbol("b")
	comm := mustOperation(t, alg.Commutator, a, b)

	t.Run("kind and operands must both match", func(t *testing.T) {
		p := NewPattern(alg.Commutator, Lit(a), Wildcard("y"))
		res := p.Match(comm)
		require.True(t, res.Success)
		assert.True(t, res.Bindings().Expr("y").Equal(b))
	})

	t.Run("wrong kind fails with a reason", func(t *testing.T) {
		p := NewPattern(alg.Plus, Wildcard("x"), Wildcard("y"))
		res := p.Match(comm)
		require.False(t, res.Success)
		assert.Contains(t, res.Reason, "kind mismatch")
	})

	t.Run("arity mismatch fails", func(t *testing.T) {
		p := NewPattern(alg.Commutator, Wildcard("x"))
		res := p.Match(comm)
		require.False(t, res.Success)
		assert.Contains(t, res.Reason, "arity mismatch")
	})
}

func TestHeadPatternsMatchProtos(t *testing.T) {
	alg := NewStdAlgebra()
	a := NewSymbol("a")
	b := NewSymbol("b")

	proto, err := ProtoOf(alg.Plus, []Expression{a, b}, nil)
	require.NoError(t, err)

	p := PatternHead(Wildcard("x"), Wildcard("y"))
	res := p.Match(proto)
	require.True(t, res.Success)
	assert.True(t, res.Bindings().Expr("x").Equal(a))
	assert.True(t, res.Bindings().Expr("y").Equal(b))

	t.Run("non-operation candidate fails", func(t *testing.T) {
		res := p.Match(42)
		require.False(t, res.Success)
		assert.Contains(t, res.Reason, "head pattern")
	})
}

func TestKwargPatterns(t *testing.T) {
	k := MustKind(KindSpec{Name: "Tagged", MinArity: 1, MaxArity: -1, Associative: true})
	a := NewSymbol("a")
	b := NewSymbol("b")

	expr, err := k.CreateKw(Kwargs{"tag": "left"}, a, b)
	require.NoError(t, err)

	t.Run("named kwarg sub-pattern binds", func(t *testing.T) {
		p := PatternHead(Wildcard("x"), Wildcard("y")).
			WithKwargs(map[string]*Pattern{"tag": Wildcard("t")})
		res := p.Match(expr)
		require.True(t, res.Success)
		assert.Equal(t, "left", res.Bindings().Value("t"))
	})

	t.Run("missing candidate kwarg fails", func(t *testing.T) {
		p := PatternHead(Wildcard("x"), Wildcard("y")).
			WithKwargs(map[string]*Pattern{"other": Wildcard("o")})
		res := p.Match(expr)
		require.False(t, res.Success)
		assert.Contains(t, res.Reason, "missing kwarg")
	})

	t.Run("extra candidate kwargs are ignored", func(t *testing.T) {
		p := PatternHead(Wildcard("x"), Wildcard("y"))
		assert.True(t, p.Match(expr).Success)
	})
}

// mustOperation builds an operation directly, bypassing the pipeline, so
// matcher tests control the exact operand layout.
func mustOperation(t *testing.T, k *Kind, ops ...Expression) *Operation {
	t.Helper()
	return newOperation(k, ops, nil)
}
