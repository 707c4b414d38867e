package algebra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleKind(t *testing.T) *Kind {
	t.Helper()
	return MustKind(KindSpec{Name: "R", MinArity: 1, MaxArity: -1, Associative: true})
}

func TestRulePrecedence(t *testing.T) {
	k := ruleKind(t)
	a := NewSymbol("a")
	first := NewSymbol("first")
	second := NewSymbol("second")

	// Both rules match any pair; declaration order decides.
	k.MustAddRule("first", PatternHead(Wildcard("x"), Wildcard("y")),
		func(Bindings) (any, error) { return first, nil })
	k.MustAddRule("second", PatternHead(Wildcard("x"), Wildcard("y")),
		func(Bindings) (any, error) { return second, nil })

	got := k.MustCreate(a, a)
	assert.True(t, got.Equal(first), "earlier rule should win, got %s", got)
	assert.Equal(t, []string{"first", "second"}, k.RuleNames())
}

func TestRuleDeclinesWithCannotSimplify(t *testing.T) {
	k := ruleKind(t)
	a := NewSymbol("a")
	fallback := NewSymbol("fallback")

	k.MustAddRule("declines", PatternHead(Wildcard("x"), Wildcard("y")),
		func(Bindings) (any, error) { return nil, ErrCannotSimplify })
	k.MustAddRule("applies", PatternHead(Wildcard("x"), Wildcard("y")),
		func(Bindings) (any, error) { return fallback, nil })

	got := k.MustCreate(a, a)
	assert.True(t, got.Equal(fallback), "declined rule should fall through to the next")
}

func TestRuleRegistrationValidation(t *testing.T) {
	k := ruleKind(t)
	pat := PatternHead(Wildcard("x"))
	repl := func(Bindings) (any, error) { return nil, ErrCannotSimplify }

	cases := []struct {
		name string
		add  func() error
		want string
	}{
		{"empty name", func() error { return k.AddRule("", pat, repl) }, "must not be empty"},
		{"nil pattern", func() error { return k.AddRule("r", nil, repl) }, "nil pattern"},
		{"nil replacement", func() error { return k.AddRule("r", pat, nil) }, "nil replacement"},
		{"non-head pattern", func() error {
			return k.AddRule("r", NewPattern(k, Wildcard("x")), repl)
		}, "PatternHead"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.add()
			var cfg *RuleConfigurationError
			require.ErrorAs(t, err, &cfg)
			assert.Contains(t, cfg.Detail, tc.want)
		})
	}

	t.Run("duplicate name", func(t *testing.T) {
		require.NoError(t, k.AddRule("dup", pat, repl))
		err := k.AddRule("dup", pat, repl)
		var cfg *RuleConfigurationError
		require.ErrorAs(t, err, &cfg)
		assert.Contains(t, cfg.Detail, "duplicate")
	})
}

func TestBinaryRuleRegistrationValidation(t *testing.T) {
	repl := func(Bindings) (any, error) { return nil, ErrCannotSimplify }

	t.Run("non-associative kind is rejected", func(t *testing.T) {
		k := MustKind(KindSpec{Name: "Pair", MinArity: 2, MaxArity: 2})
		err := k.AddBinaryRule("b", PatternHead(Wildcard("x"), Wildcard("y")), repl)
		var cfg *RuleConfigurationError
		require.ErrorAs(t, err, &cfg)
		assert.Contains(t, cfg.Detail, "non-associative")
	})

	t.Run("pattern must cover exactly two operands", func(t *testing.T) {
		k := ruleKind(t)
		err := k.AddBinaryRule("b", PatternHead(Wildcard("x")), repl)
		var cfg *RuleConfigurationError
		require.ErrorAs(t, err, &cfg)
		assert.Contains(t, cfg.Detail, "exactly two")
	})

	t.Run("variadic wildcards are rejected", func(t *testing.T) {
		k := ruleKind(t)
		err := k.AddBinaryRule("b",
			PatternHead(Wildcard("x"), Wildcard("y", OneOrMore())), repl)
		var cfg *RuleConfigurationError
		require.ErrorAs(t, err, &cfg)
		assert.Contains(t, cfg.Detail, "variadic")
	})
}

func TestBinaryRuleFusion(t *testing.T) {
	a := NewSymbol("a")
	b := NewSymbol("b")
	c := NewSymbol("c")

	t.Run("adjacent pair fuses and the scan continues", func(t *testing.T) {
		k := ruleKind(t)
		// Fuse any equal adjacent pair into one operand.
		k.MustAddBinaryRule("dedupe", PatternHead(Wildcard("x"), Wildcard("x")),
			func(bnd Bindings) (any, error) { return bnd.Expr("x"), nil })

		got := k.MustCreate(a, a, a, b, b, c)
		want := k.MustCreate(a, b, c)
		assert.True(t, got.Equal(want), "got %s", got)
	})

	t.Run("same-kind fusion result is spliced flat", func(t *testing.T) {
		k := ruleKind(t)
		k.MustAddBinaryRule("swap-ab", PatternHead(Lit(a), Lit(b)),
			func(Bindings) (any, error) {
				return ProtoOf(k, []Expression{b, a}, nil)
			})

		got := k.MustCreate(a, b, c)
		ops := got.Operands()
		require.Len(t, ops, 3)
		assert.True(t, ops[0].Equal(b))
		assert.True(t, ops[1].Equal(a))
		assert.True(t, ops[2].Equal(c))
	})

	t.Run("declining rule leaves the pair", func(t *testing.T) {
		k := ruleKind(t)
		k.MustAddBinaryRule("never", PatternHead(Wildcard("x"), Wildcard("y")),
			func(Bindings) (any, error) { return nil, ErrCannotSimplify })

		got := k.MustCreate(a, b)
		require.Len(t, got.Operands(), 2)
	})
}

func TestDelRules(t *testing.T) {
	k := ruleKind(t)
	a := NewSymbol("a")
	out := NewSymbol("out")
	pat := PatternHead(Wildcard("x"), Wildcard("y"))
	repl := func(Bindings) (any, error) { return out, nil }

	k.MustAddRule("r1", pat, repl)
	k.MustAddRule("r2", pat, repl)

	t.Run("removing by name keeps the rest", func(t *testing.T) {
		k.DelRules("r1")
		assert.Equal(t, []string{"r2"}, k.RuleNames())
		got := k.MustCreate(a, a)
		assert.True(t, got.Equal(out), "r2 should still fire")
	})

	t.Run("no names clears everything", func(t *testing.T) {
		k.DelRules()
		assert.Empty(t, k.RuleNames())
		got := k.MustCreate(a, a)
		require.Len(t, got.Operands(), 2, "no rules should fire")
	})
}

func TestTemporaryRules(t *testing.T) {
	k := ruleKind(t)
	a := NewSymbol("a")
	out := NewSymbol("out")
	pat := PatternHead(Wildcard("x"), Wildcard("y"))
	repl := func(Bindings) (any, error) { return out, nil }

	k.MustAddRule("permanent", pat, repl)

	restore := TemporaryRules(k)
	k.DelRules("permanent")
	k.MustAddRule("scoped", pat, func(Bindings) (any, error) { return a, nil })
	assert.Equal(t, []string{"scoped"}, k.RuleNames())

	restore()
	assert.Equal(t, []string{"permanent"}, k.RuleNames())
	got := k.MustCreate(a, a)
	assert.True(t, got.Equal(out), "restored rule set should be active again")
}

func TestRuleReplacementKinds(t *testing.T) {
	alg := NewStdAlgebra()
	a := NewSymbol("a")
	b := NewSymbol("b")

	t.Run("proto of a different kind hands off to that pipeline", func(t *testing.T) {
		k := ruleKind(t)
		k.MustAddRule("to-plus", PatternHead(Wildcard("x"), Wildcard("y")),
			func(bnd Bindings) (any, error) {
				return ProtoOf(alg.Plus, []Expression{bnd.Expr("x"), bnd.Expr("y")}, nil)
			})

		got := k.MustCreate(b, a)
		want := alg.Plus.MustCreate(a, b)
		assert.True(t, got.Equal(want), "handoff should run Plus ordering, got %s", got)
	})

	t.Run("raw scalar replacement is coerced", func(t *testing.T) {
		k := ruleKind(t)
		k.MustAddRule("to-zero", PatternHead(Wildcard("x"), Wildcard("y")),
			func(Bindings) (any, error) { return 0, nil })

		got := k.MustCreate(a, b)
		assert.True(t, got.Equal(NewScalarValue(Int(0))))
	})
}
