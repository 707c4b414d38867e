package algebra

// StdAlgebra bundles a ready-made symbolic algebra built on the engine:
// a commutative sum, a non-commutative product, scalar multiples, and a
// commutator, with the customary rewrite rules registered. It doubles as
// a worked example of the rule-registration surface: every pipeline
// feature (flattening, summand collection, neutral filtering, canonical
// ordering, binary fusion, general rules) is exercised by at least one
// of its kinds.
//
// Each call to NewStdAlgebra returns an independent algebra with its own
// kinds, neutral elements and rule sets, so tests and applications can
// modify rules without affecting each other.
type StdAlgebra struct {
	// Zero is the neutral element of Plus.
	Zero Expression

	// One is the neutral element of Times.
	One Expression

	// Plus is the associative, commutative sum. Equal summands are
	// collected into scalar multiples: a + a = 2*a.
	Plus *Kind

	// Times is the associative, non-commutative product. Binary rules
	// bubble scalar prefactors out: (u*A)*B = u*(A*B).
	Times *Kind

	// ScalarMul is the product of a scalar coefficient and one
	// expression.
	ScalarMul *Kind

	// Commutator is the strictly binary commutator bracket. [A, A] = 0,
	// and operators on disjoint spaces commute.
	Commutator *Kind
}

// isScalarValue is the head constraint for scalar-coefficient wildcards.
func isScalarValue(v any) bool {
	_, ok := v.(*ScalarValue)
	return ok
}

// NewStdAlgebra constructs the standard algebra and registers its
// default rules. Configuration errors are impossible here by
// construction, so registration panics instead of returning errors.
func NewStdAlgebra() *StdAlgebra {
	alg := &StdAlgebra{
		Zero: NewSingleton("Zero"),
		One:  NewSingleton("One"),
	}

	alg.ScalarMul = MustKind(KindSpec{
		Name:     "ScalarMul",
		MinArity: 2,
		MaxArity: 2,
	})

	alg.Plus = MustKind(KindSpec{
		Name:        "Plus",
		MinArity:    1,
		MaxArity:    -1,
		Associative: true,
		Commutative: true,
		Neutral:     alg.Zero,
		OrderKey:    alg.plusOrderKey,
		Collect:     alg.collectSummands,
	})

	alg.Times = MustKind(KindSpec{
		Name:        "Times",
		MinArity:    1,
		MaxArity:    -1,
		Associative: true,
		Neutral:     alg.One,
	})

	alg.Commutator = MustKind(KindSpec{
		Name:     "Commutator",
		MinArity: 2,
		MaxArity: 2,
	})

	alg.registerScalarMulRules()
	alg.registerTimesRules()
	alg.registerCommutatorRules()
	return alg
}

// plusOrderKey sorts summands by their base term, ignoring scalar
// prefactors, so that a and 2*a end up adjacent for collection.
func (alg *StdAlgebra) plusOrderKey(e Expression) OrderKey {
	base, _ := alg.splitScalarFactor(e)
	return DefaultOrderKey(base)
}

// splitScalarFactor decomposes a summand into its base term and scalar
// coefficient: 2*a gives (a, 2), a gives (a, 1), and a bare scalar s
// gives (s, 1).
func (alg *StdAlgebra) splitScalarFactor(e Expression) (Expression, Scalar) {
	if e.Kind() == alg.ScalarMul {
		ops := e.Operands()
		if sv, ok := ops[0].(*ScalarValue); ok {
			return ops[1], sv.Value()
		}
	}
	return e, Int(1)
}

// collectSummands merges equal base terms into scalar multiples and
// folds bare scalar summands into one. Base terms keep the order of
// their first occurrence; canonical ordering runs after collection.
func (alg *StdAlgebra) collectSummands(k *Kind, ops []Expression) ([]Expression, error) {
	if len(ops) < 2 {
		return ops, nil
	}
	type group struct {
		base  Expression
		coeff Scalar
	}
	var order []string
	groups := map[string]*group{}
	numeric := Scalar(Int(0))
	sawNumeric := false
	for _, op := range ops {
		if sv, ok := op.(*ScalarValue); ok {
			numeric = numeric.Add(sv.Value())
			sawNumeric = true
			continue
		}
		base, coeff := alg.splitScalarFactor(op)
		key := base.Key()
		if g, ok := groups[key]; ok {
			g.coeff = g.coeff.Add(coeff)
		} else {
			groups[key] = &group{base: base, coeff: coeff}
			order = append(order, key)
		}
	}
	out := make([]Expression, 0, len(order)+1)
	if sawNumeric && !numeric.IsZero() {
		out = append(out, NewScalarValue(numeric))
	}
	for _, key := range order {
		g := groups[key]
		switch {
		case g.coeff.IsZero():
			// summands cancelled
		case g.coeff.IsOne():
			out = append(out, g.base)
		default:
			term, err := alg.ScalarMul.Create(g.coeff, g.base)
			if err != nil {
				return nil, err
			}
			out = append(out, term)
		}
	}
	return out, nil
}

// registerScalarMulRules installs the scalar-multiple rules:
// 1*A = A, 0*A = 0, u*0 = 0, numeric folding, nesting, and distribution
// of -1 over sums.
func (alg *StdAlgebra) registerScalarMulRules() {
	k := alg.ScalarMul
	u := Wildcard("u", Where(isScalarValue))
	v := Wildcard("v", Where(isScalarValue))
	A := Wildcard("A")

	k.MustAddRule("one-times", PatternHead(Lit(1), A),
		func(b Bindings) (any, error) {
			return b.Expr("A"), nil
		})
	k.MustAddRule("zero-times", PatternHead(Lit(0), A),
		func(b Bindings) (any, error) {
			return alg.Zero, nil
		})
	k.MustAddRule("times-zero", PatternHead(u, Lit(alg.Zero)),
		func(b Bindings) (any, error) {
			return alg.Zero, nil
		})
	k.MustAddRule("numeric", PatternHead(u, v),
		func(b Bindings) (any, error) {
			return NewScalarValue(b.Scalar("u").Mul(b.Scalar("v"))), nil
		})
	k.MustAddRule("nested", PatternHead(u, NewPattern(k, v, A)),
		func(b Bindings) (any, error) {
			coeff := NewScalarValue(b.Scalar("u").Mul(b.Scalar("v")))
			return ProtoOf(k, []Expression{coeff, b.Expr("A")}, nil)
		})
	k.MustAddRule("neg-sum", PatternHead(Lit(-1), Wildcard("S", OfKind(alg.Plus))),
		func(b Bindings) (any, error) {
			sum := b.Expr("S")
			args := make([]any, len(sum.Operands()))
			for i, op := range sum.Operands() {
				neg, err := k.Create(-1, op)
				if err != nil {
					return nil, err
				}
				args[i] = neg
			}
			return Create(alg.Plus, args, nil)
		})
}

// registerTimesRules installs the binary fusion rules that bubble scalar
// prefactors out of products: repeated pairwise fusion turns
// (u*A)*B*(v*C) into (u*v)*(A*B*C).
func (alg *StdAlgebra) registerTimesRules() {
	k := alg.Times
	u := Wildcard("u", Where(isScalarValue))
	v := Wildcard("v", Where(isScalarValue))
	A := Wildcard("A")
	B := Wildcard("B")

	k.MustAddBinaryRule("numeric", PatternHead(u, v),
		func(b Bindings) (any, error) {
			return NewScalarValue(b.Scalar("u").Mul(b.Scalar("v"))), nil
		})
	k.MustAddBinaryRule("scal-left", PatternHead(NewPattern(alg.ScalarMul, u, A), B),
		func(b Bindings) (any, error) {
			prod, err := k.Create(b.Expr("A"), b.Expr("B"))
			if err != nil {
				return nil, err
			}
			return alg.ScalarMul.Create(b.Scalar("u"), prod)
		})
	k.MustAddBinaryRule("scal-right", PatternHead(A, NewPattern(alg.ScalarMul, u, B)),
		func(b Bindings) (any, error) {
			prod, err := k.Create(b.Expr("A"), b.Expr("B"))
			if err != nil {
				return nil, err
			}
			return alg.ScalarMul.Create(b.Scalar("u"), prod)
		})
	// Bare scalar factors commute with everything and are absorbed into
	// a scalar multiple of the remaining product.
	k.MustAddBinaryRule("scal-fuse-left", PatternHead(u, A),
		func(b Bindings) (any, error) {
			return alg.ScalarMul.Create(b.Scalar("u"), b.Expr("A"))
		})
	k.MustAddBinaryRule("scal-fuse-right", PatternHead(A, u),
		func(b Bindings) (any, error) {
			return alg.ScalarMul.Create(b.Scalar("u"), b.Expr("A"))
		})
}

// registerCommutatorRules installs [A, A] = 0, scalar pull-out, and the
// disjoint-space rule: operators acting on non-intersecting spaces
// commute.
func (alg *StdAlgebra) registerCommutatorRules() {
	k := alg.Commutator
	u := Wildcard("u", Where(isScalarValue))
	A := Wildcard("A")
	B := Wildcard("B")

	k.MustAddRule("same", PatternHead(A, Wildcard("A")),
		func(b Bindings) (any, error) {
			return alg.Zero, nil
		})
	k.MustAddRule("scal-left", PatternHead(NewPattern(alg.ScalarMul, u, A), B),
		func(b Bindings) (any, error) {
			comm, err := k.Create(b.Expr("A"), b.Expr("B"))
			if err != nil {
				return nil, err
			}
			return alg.ScalarMul.Create(b.Scalar("u"), comm)
		})
	k.MustAddRule("scal-right", PatternHead(A, NewPattern(alg.ScalarMul, u, B)),
		func(b Bindings) (any, error) {
			comm, err := k.Create(b.Expr("A"), b.Expr("B"))
			if err != nil {
				return nil, err
			}
			return alg.ScalarMul.Create(b.Scalar("u"), comm)
		})
	k.MustAddRule("disjoint-spaces", PatternHead(A, B),
		func(b Bindings) (any, error) {
			sa := SpaceOf(b.Expr("A"))
			sb := SpaceOf(b.Expr("B"))
			if sa.IsTrivial() || sb.IsTrivial() || sa.Intersects(sb) {
				return nil, ErrCannotSimplify
			}
			return alg.Zero, nil
		})
}
