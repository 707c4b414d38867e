package algebra

import (
	"fmt"
)

// WildcardMode controls how many operands a wildcard consumes when it
// appears in an operand pattern list.
type WildcardMode int

const (
	// ModeSingle matches exactly one operand (the default).
	ModeSingle WildcardMode = iota

	// ModeOneOrMore matches one or more remaining operands. Only valid
	// as the last operand pattern.
	ModeOneOrMore

	// ModeZeroOrMore matches zero or more remaining operands. Only
	// valid as the last operand pattern.
	ModeZeroOrMore
)

// Pattern is a template tree matched against expressions and
// proto-expressions. A pattern node is one of:
//   - a wildcard: a named binding slot with optional kind or predicate
//     constraints, possibly variadic;
//   - a literal: matches a single concrete value structurally;
//   - a concrete node: a kind with sub-patterns for operands and kwargs;
//   - a head: operand/kwarg sub-patterns with no kind, used to match the
//     in-flight (args, kwargs) pair of a creation request.
//
// Patterns are immutable once built and safe for concurrent use.
type Pattern struct {
	wildcard   bool
	name       string
	mode       WildcardMode
	kind       *Kind
	constraint func(any) bool

	isLiteral bool
	literal   any

	head   bool
	args   []*Pattern
	kwargs map[string]*Pattern
}

// WildcardOption configures a wildcard pattern.
type WildcardOption func(*Pattern)

// OfKind constrains the wildcard to candidates of the given kind.
func OfKind(k *Kind) WildcardOption {
	return func(p *Pattern) { p.kind = k }
}

// Where constrains the wildcard with an arbitrary predicate over the
// candidate value.
func Where(pred func(any) bool) WildcardOption {
	return func(p *Pattern) { p.constraint = pred }
}

// OneOrMore makes the wildcard variadic, consuming all remaining
// operands (at least one). Valid only as the last operand pattern.
func OneOrMore() WildcardOption {
	return func(p *Pattern) { p.mode = ModeOneOrMore }
}

// ZeroOrMore makes the wildcard variadic, consuming all remaining
// operands (possibly none). Valid only as the last operand pattern.
func ZeroOrMore() WildcardOption {
	return func(p *Pattern) { p.mode = ModeZeroOrMore }
}

// Wildcard creates a named binding slot. A wildcard binds at most once
// per match attempt: if the same name is encountered again, the new
// candidate must be structurally equal to the existing binding or the
// match fails. The empty name matches without binding.
func Wildcard(name string, opts ...WildcardOption) *Pattern {
	p := &Pattern{wildcard: true, name: name}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Lit creates a pattern matching one concrete value. Scalars and plain
// integers are wrapped the same way operands are, so Lit(0) matches the
// ScalarValue atom zero.
func Lit(v any) *Pattern {
	if _, ok := v.(Expression); !ok {
		if s, ok := coerceScalar(v); ok {
			v = NewScalarValue(s)
		}
	}
	return &Pattern{isLiteral: true, literal: v}
}

// NewPattern creates a concrete pattern node: candidates must be of the
// given kind, and each operand sub-pattern must match the corresponding
// operand.
func NewPattern(kind *Kind, args ...*Pattern) *Pattern {
	return &Pattern{kind: kind, args: args}
}

// PatternHead creates a pattern over an (args, kwargs) pair without
// constraining the kind. Rule patterns are heads: they are matched
// against the proto-expression of the creation request being simplified.
func PatternHead(args ...*Pattern) *Pattern {
	return &Pattern{head: true, args: args}
}

// WithKwargs returns a copy of the pattern with kwarg sub-patterns
// added. Each named sub-pattern must match the candidate kwarg of the
// same name; a missing candidate kwarg fails the match. Extra candidate
// kwargs are ignored.
func (p *Pattern) WithKwargs(kwargs map[string]*Pattern) *Pattern {
	q := *p
	q.kwargs = kwargs
	return &q
}

// validate checks structural well-formedness: variadic wildcards may
// only appear in the last operand position. Called when a rule is
// registered so misuse fails at definition time.
func (p *Pattern) validate() error {
	if p == nil {
		return fmt.Errorf("nil pattern")
	}
	for i, a := range p.args {
		if a == nil {
			return fmt.Errorf("nil operand pattern at position %d", i)
		}
		if a.wildcard && a.mode != ModeSingle && i != len(p.args)-1 {
			return fmt.Errorf("variadic wildcard %q must be the last operand pattern", a.name)
		}
		if err := a.validate(); err != nil {
			return err
		}
	}
	for name, kp := range p.kwargs {
		if kp == nil {
			return fmt.Errorf("nil kwarg pattern %q", name)
		}
		if kp.wildcard && kp.mode != ModeSingle {
			return fmt.Errorf("kwarg pattern %q must not be variadic", name)
		}
		if err := kp.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Bindings maps wildcard names to the values they captured during a
// successful match. Variadic wildcards bind []Expression.
type Bindings map[string]any

// Value returns the raw binding for a name, or nil.
func (b Bindings) Value(name string) any { return b[name] }

// Expr returns the expression bound to a name. Panics if the binding is
// absent or not an expression; rule replacements rely on their own
// pattern having produced the binding.
func (b Bindings) Expr(name string) Expression {
	return b[name].(Expression)
}

// Exprs returns the expressions captured by a variadic wildcard.
func (b Bindings) Exprs(name string) []Expression {
	return b[name].([]Expression)
}

// Scalar returns the scalar bound to a name, unwrapping a ScalarValue
// binding if necessary.
func (b Bindings) Scalar(name string) Scalar {
	switch v := b[name].(type) {
	case *ScalarValue:
		return v.Value()
	case Scalar:
		return v
	default:
		panic(fmt.Sprintf("binding %q is not a scalar", name))
	}
}

// Space returns the space bound to a name.
func (b Bindings) Space(name string) Space {
	return b[name].(Space)
}

func (b Bindings) clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// MatchResult is the outcome of a single pattern-match attempt. A failed
// match is an expected, non-exceptional outcome and carries the reason
// for diagnostics; it is never surfaced as an error.
type MatchResult struct {
	// Success reports whether the pattern matched.
	Success bool

	// Reason describes the first sub-match that failed. Empty on
	// success.
	Reason string

	bindings Bindings
}

// Bindings returns the wildcard bindings collected by a successful
// match. Nil if the match failed.
func (m MatchResult) Bindings() Bindings { return m.bindings }

func matched(b Bindings) MatchResult {
	return MatchResult{Success: true, bindings: b}
}

func noMatch(format string, args ...any) MatchResult {
	return MatchResult{Success: false, Reason: fmt.Sprintf(format, args...)}
}

// Match attempts to match the pattern against a candidate, which may be
// an Expression, a *Proto, or (for kwarg sub-patterns) any value. The
// matcher is a pure function: it has no side effects and the same
// inputs always produce the same result.
func (p *Pattern) Match(candidate any) MatchResult {
	b := make(Bindings)
	if res := p.match(candidate, b); !res.Success {
		return res
	}
	return matched(b)
}

// match is the recursive core. Bindings accumulate in b; on failure the
// caller discards b, so no cleanup of partial bindings is needed at the
// top level (rule trial order provides the only backtracking).
func (p *Pattern) match(candidate any, b Bindings) MatchResult {
	switch {
	case p.wildcard:
		return p.matchWildcard(candidate, b)
	case p.isLiteral:
		if !equalValues(p.literal, candidate) {
			return noMatch("literal mismatch: got %s, want %s", valueKey(candidate), valueKey(p.literal))
		}
		return matched(b)
	case p.head:
		args, kwargs, ok := operandsOf(candidate)
		if !ok {
			return noMatch("head pattern requires an operation or proto, got %T", candidate)
		}
		return p.matchArgsKwargs(args, kwargs, b)
	default:
		expr, ok := candidate.(Expression)
		if !ok {
			return noMatch("pattern of kind %s cannot match %T", p.kind.Name(), candidate)
		}
		if expr.Kind() != p.kind {
			return noMatch("kind mismatch: got %s, want %s", expr.Kind().Name(), p.kind.Name())
		}
		return p.matchArgsKwargs(expr.Operands(), expr.Kwargs(), b)
	}
}

func (p *Pattern) matchWildcard(candidate any, b Bindings) MatchResult {
	if p.kind != nil {
		expr, ok := candidate.(Expression)
		if !ok || expr.Kind() != p.kind {
			return noMatch("wildcard %q requires kind %s", p.name, p.kind.Name())
		}
	}
	if p.constraint != nil && !p.constraint(candidate) {
		return noMatch("wildcard %q constraint rejected %s", p.name, valueKey(candidate))
	}
	return p.bind(candidate, b)
}

func (p *Pattern) bind(value any, b Bindings) MatchResult {
	if p.name == "" {
		return matched(b)
	}
	if prev, ok := b[p.name]; ok {
		if !equalValues(prev, value) {
			return noMatch("wildcard %q already bound to %s, cannot rebind to %s",
				p.name, valueKey(prev), valueKey(value))
		}
		return matched(b)
	}
	b[p.name] = value
	return matched(b)
}

// matchArgsKwargs matches operand sub-patterns positionally (honoring a
// variadic tail) and kwarg sub-patterns by name.
func (p *Pattern) matchArgsKwargs(ops []Expression, kwargs Kwargs, b Bindings) MatchResult {
	variadic := len(p.args) > 0 && p.args[len(p.args)-1].wildcard &&
		p.args[len(p.args)-1].mode != ModeSingle
	fixed := len(p.args)
	if variadic {
		fixed--
	}
	if !variadic && len(ops) != len(p.args) {
		return noMatch("arity mismatch: got %d operands, pattern has %d", len(ops), len(p.args))
	}
	if variadic && len(ops) < fixed {
		return noMatch("arity mismatch: got %d operands, pattern needs at least %d", len(ops), fixed)
	}
	for i := 0; i < fixed; i++ {
		if res := p.args[i].match(ops[i], b); !res.Success {
			return res
		}
	}
	if variadic {
		tail := p.args[len(p.args)-1]
		rest := ops[fixed:]
		if tail.mode == ModeOneOrMore && len(rest) == 0 {
			return noMatch("variadic wildcard %q requires at least one operand", tail.name)
		}
		for _, op := range rest {
			if tail.kind != nil && op.Kind() != tail.kind {
				return noMatch("variadic wildcard %q requires kind %s", tail.name, tail.kind.Name())
			}
			if tail.constraint != nil && !tail.constraint(op) {
				return noMatch("variadic wildcard %q constraint rejected %s", tail.name, op.Key())
			}
		}
		captured := make([]Expression, len(rest))
		copy(captured, rest)
		if res := tail.bind(captured, b); !res.Success {
			return res
		}
	}
	for name, kp := range p.kwargs {
		val, ok := kwargs[name]
		if !ok {
			return noMatch("missing kwarg %q", name)
		}
		if res := kp.match(val, b); !res.Success {
			return res
		}
	}
	return matched(b)
}

// operandsOf extracts the (args, kwargs) view a head pattern matches
// against: the candidate pair of a proto, or the operands of a finished
// operation.
func operandsOf(candidate any) ([]Expression, Kwargs, bool) {
	switch c := candidate.(type) {
	case *Proto:
		return c.args, c.kwargs, true
	case Expression:
		return c.Operands(), c.Kwargs(), true
	default:
		return nil, nil, false
	}
}
