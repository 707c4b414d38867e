package algebra

import (
	"fmt"
	"sync"
)

// DefaultRewriteLimit bounds how many times the rewrite step may restart
// the simplification pipeline for a single creation request before
// Create gives up with a NonTerminatingRewriteError. Kinds can override
// it per kind via KindSpec.RewriteLimit.
const DefaultRewriteLimit = 1000

// CollectHook merges duplicate or mergeable operands during the collapse
// step of the pipeline. It receives the full operand list and returns
// the collapsed list. Returning ErrCannotSimplify leaves the operands
// unchanged.
type CollectHook func(k *Kind, ops []Expression) ([]Expression, error)

// KindSpec declares a kind of expression: its arity bounds, algebraic
// properties, and which pipeline steps apply when an expression of the
// kind is created. The declaration is validated once by NewKind; inconsistent
// declarations fail fast with a RuleConfigurationError rather than at
// call time.
//
// Step selection is driven by the declared properties:
//   - Associative enables flattening of same-kind operands and, when
//     binary rules are registered, pairwise fusion during flattening.
//   - Idempotent (or a custom Collect hook) enables the collapse step.
//   - Neutral enables neutral-element filtering.
//   - Commutative enables canonical ordering and requires OrderKey.
//
// The rewrite step always applies; kinds without registered rules simply
// never match.
type KindSpec struct {
	// Name identifies the kind in error messages and canonical keys.
	Name string

	// MinArity is the smallest permitted operand count.
	MinArity int

	// MaxArity is the largest permitted operand count, or -1 for
	// unbounded. Associative kinds must be unbounded, since flattening
	// grows the operand list.
	MaxArity int

	// Associative marks the kind for the flattening step.
	Associative bool

	// Commutative marks the kind for the canonical-ordering step.
	Commutative bool

	// Idempotent enables the built-in collapse policy that drops
	// duplicate operands (adjacent duplicates, or any duplicates when
	// the kind is also commutative).
	Idempotent bool

	// Collect replaces the built-in collapse policy with a custom merge,
	// for example fusing equal summands into a scalar multiple.
	// Mutually exclusive with Idempotent.
	Collect CollectHook

	// Neutral is the kind's neutral element, or nil if it has none.
	Neutral Expression

	// KeepSingleton keeps a one-operand operation as an operation
	// instead of unwrapping it to its sole operand after filtering.
	KeepSingleton bool

	// OrderKey is the total order used by canonical ordering. Required
	// if and only if Commutative is set.
	OrderKey OrderKeyFunc

	// RewriteLimit overrides DefaultRewriteLimit when positive.
	RewriteLimit int
}

// Kind is the immutable descriptor of an expression kind. All algebraic
// configuration is fixed at construction; only the attached rule sets
// can change afterwards, through the rule-registration surface.
//
// Kinds are compared by identity: two kinds are the same kind only if
// they are the same *Kind value.
type Kind struct {
	name          string
	minArity      int
	maxArity      int
	associative   bool
	commutative   bool
	atomic        bool
	keepSingleton bool
	neutral       Expression
	orderKey      OrderKeyFunc
	collect       CollectHook
	rewriteLimit  int

	// mu guards the rule-set pointers. Rule sets themselves are
	// immutable snapshots; registration swaps in a new snapshot so that
	// concurrent Create calls always see a consistent ordered list.
	mu          sync.RWMutex
	rules       *RuleSet
	binaryRules *RuleSet
}

// NewKind validates a KindSpec and returns the kind descriptor.
func NewKind(spec KindSpec) (*Kind, error) {
	fail := func(detail string) (*Kind, error) {
		return nil, &RuleConfigurationError{Kind: spec.Name, Detail: detail}
	}
	if spec.Name == "" {
		return fail("kind name must not be empty")
	}
	if spec.MinArity < 0 {
		return fail("minimum arity must not be negative")
	}
	if spec.MaxArity != -1 && spec.MaxArity < spec.MinArity {
		return fail(fmt.Sprintf("maximum arity %d below minimum %d", spec.MaxArity, spec.MinArity))
	}
	if spec.Associative && spec.MaxArity != -1 {
		return fail("associative kinds must declare unbounded maximum arity")
	}
	if spec.Commutative && spec.OrderKey == nil {
		return fail("commutative kinds must declare an order key")
	}
	if !spec.Commutative && spec.OrderKey != nil {
		return fail("order key declared for a non-commutative kind")
	}
	if spec.Idempotent && spec.Collect != nil {
		return fail("Idempotent and Collect are mutually exclusive")
	}
	if spec.RewriteLimit < 0 {
		return fail("rewrite limit must not be negative")
	}
	limit := spec.RewriteLimit
	if limit == 0 {
		limit = DefaultRewriteLimit
	}
	collect := spec.Collect
	if spec.Idempotent {
		collect = dropDuplicates
	}
	return &Kind{
		name:          spec.Name,
		minArity:      spec.MinArity,
		maxArity:      spec.MaxArity,
		associative:   spec.Associative,
		commutative:   spec.Commutative,
		keepSingleton: spec.KeepSingleton,
		neutral:       spec.Neutral,
		orderKey:      spec.OrderKey,
		collect:       collect,
		rewriteLimit:  limit,
		rules:         emptyRuleSet,
		binaryRules:   emptyRuleSet,
	}, nil
}

// MustKind is NewKind that panics on a configuration error. Intended for
// package-level kind definitions, where a bad spec is a programming
// error.
func MustKind(spec KindSpec) *Kind {
	k, err := NewKind(spec)
	if err != nil {
		panic(err)
	}
	return k
}

// newAtomicKind builds the descriptor behind atoms such as symbols and
// singletons. Atomic kinds take no operands and run no pipeline.
func newAtomicKind(name string) *Kind {
	return &Kind{
		name:         name,
		minArity:     0,
		maxArity:     0,
		atomic:       true,
		rewriteLimit: DefaultRewriteLimit,
		rules:        emptyRuleSet,
		binaryRules:  emptyRuleSet,
	}
}

// Shared descriptors for the built-in atom variants.
var (
	// SymbolKind is the kind of all Symbol atoms.
	SymbolKind = newAtomicKind("Symbol")

	// ScalarValueKind is the kind of all ScalarValue atoms.
	ScalarValueKind = newAtomicKind("ScalarValue")
)

// Name returns the kind's name.
func (k *Kind) Name() string { return k.name }

// Associative reports whether the flattening step applies.
func (k *Kind) Associative() bool { return k.associative }

// Commutative reports whether the canonical-ordering step applies.
func (k *Kind) Commutative() bool { return k.commutative }

// Neutral returns the kind's neutral element, or nil.
func (k *Kind) Neutral() Expression { return k.neutral }

// Arity returns the declared operand bounds; max is -1 when unbounded.
func (k *Kind) Arity() (min, max int) { return k.minArity, k.maxArity }

// checkArity validates an operand count against the declared bounds.
func (k *Kind) checkArity(n int) error {
	if n < k.minArity || (k.maxArity != -1 && n > k.maxArity) {
		return &ArityError{Kind: k.name, Got: n, Min: k.minArity, Max: k.maxArity}
	}
	return nil
}

// Create builds an expression of this kind from raw operands, running
// the full simplification pipeline. Operands may be expressions, or
// scalars and plain integers, which are wrapped as ScalarValue atoms.
func (k *Kind) Create(args ...any) (Expression, error) {
	return Create(k, args, nil)
}

// CreateKw is Create with keyword parameters.
func (k *Kind) CreateKw(kwargs Kwargs, args ...any) (Expression, error) {
	return Create(k, args, kwargs)
}

// MustCreate is Create that panics on error. Intended for tests and
// examples working with inputs known to be valid.
func (k *Kind) MustCreate(args ...any) Expression {
	e, err := k.Create(args...)
	if err != nil {
		panic(err)
	}
	return e
}

// activeRules returns the current general rule-set snapshot.
func (k *Kind) activeRules() *RuleSet {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.rules
}

// activeBinaryRules returns the current binary rule-set snapshot.
func (k *Kind) activeBinaryRules() *RuleSet {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.binaryRules
}

// dropDuplicates is the built-in collapse policy for idempotent kinds.
// Adjacent structurally equal operands collapse to one; commutative
// kinds collapse duplicates anywhere in the operand list.
func dropDuplicates(k *Kind, ops []Expression) ([]Expression, error) {
	if len(ops) < 2 {
		return ops, nil
	}
	out := make([]Expression, 0, len(ops))
	if k.commutative {
		seen := make(map[string]bool, len(ops))
		for _, op := range ops {
			if key := op.Key(); !seen[key] {
				seen[key] = true
				out = append(out, op)
			}
		}
		return out, nil
	}
	out = append(out, ops[0])
	for _, op := range ops[1:] {
		if !op.Equal(out[len(out)-1]) {
			out = append(out, op)
		}
	}
	return out, nil
}
