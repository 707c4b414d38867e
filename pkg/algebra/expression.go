// Package algebra provides a symbolic expression engine built around
// immutable expression trees and rule-based rewriting. Expressions are
// constructed through a per-kind simplification pipeline (flattening,
// collapse of duplicate operands, neutral-element filtering, canonical
// ordering, and pattern-driven rewrite rules) so that structurally equal
// inputs always normalize to identical results.
//
// The engine is split into a small number of cooperating pieces:
//   - Expressions: immutable trees of atoms and operations
//   - Patterns: templates with named wildcards, matched against expressions
//   - Rules: ordered (pattern, replacement) pairs attached to a Kind
//   - The Create pipeline: turns raw operands into a finalized Expression
//
// Creation is a pure function of its inputs and the registered rule sets,
// so independent Create calls are safe to run concurrently.
package algebra

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Expression is an immutable node in an algebraic expression tree.
// An expression is either atomic (no operands) or an Operation whose
// operands are themselves expressions.
//
// Structurally equal expressions (same kind, same operands, same kwargs)
// are interchangeable. Expressions are never mutated after construction;
// every transformation yields a new instance.
type Expression interface {
	// Kind returns the kind descriptor identifying this expression type.
	Kind() *Kind

	// Operands returns the ordered operand sequence. Atomic expressions
	// return nil. The returned slice must not be modified.
	Operands() []Expression

	// Kwargs returns the non-operand keyword parameters of the
	// expression. The returned map must not be modified.
	Kwargs() Kwargs

	// Equal reports structural equality: same kind, operand sequence
	// (order-sensitive) and kwarg mapping (order-insensitive).
	Equal(other Expression) bool

	// Key returns a deterministic canonical representation of the
	// expression, suitable as a hash/equality key. Computed once at
	// construction.
	Key() string

	// String returns a human-readable rendering of the expression.
	String() string
}

// Kwargs holds the keyword parameters of an expression: a mapping from
// unique names to values. Values may be expressions, scalars, spaces, or
// plain Go values; equality is structural (see equalValues).
type Kwargs map[string]any

// Equal reports whether two kwarg mappings have the same key set and
// structurally equal values. Key order is irrelevant.
func (kw Kwargs) Equal(other Kwargs) bool {
	if len(kw) != len(other) {
		return false
	}
	for name, v := range kw {
		ov, ok := other[name]
		if !ok || !equalValues(v, ov) {
			return false
		}
	}
	return true
}

// clone returns a shallow copy. Values are immutable by convention, so a
// shallow copy is sufficient to decouple the mapping itself.
func (kw Kwargs) clone() Kwargs {
	if kw == nil {
		return nil
	}
	out := make(Kwargs, len(kw))
	for name, v := range kw {
		out[name] = v
	}
	return out
}

// key renders the kwargs deterministically, with names sorted.
func (kw Kwargs) key() string {
	if len(kw) == 0 {
		return ""
	}
	names := make([]string, 0, len(kw))
	for name := range kw {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%s", name, valueKey(kw[name]))
	}
	return strings.Join(parts, ",")
}

// equalValues compares two kwarg or binding values structurally. It
// understands expressions, scalars and spaces; anything else falls back
// to Go equality. Slices of expressions (variadic wildcard bindings)
// compare element-wise.
func equalValues(a, b any) bool {
	switch av := a.(type) {
	case Expression:
		bv, ok := b.(Expression)
		return ok && av.Equal(bv)
	case Scalar:
		bv, ok := coerceScalar(b)
		return ok && av.Equal(bv)
	case Space:
		bv, ok := b.(Space)
		return ok && av.Equal(bv)
	case []Expression:
		bv, ok := b.([]Expression)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].Equal(bv[i]) {
				return false
			}
		}
		return true
	default:
		if _, ok := b.(Scalar); ok {
			if av2, ok2 := coerceScalar(a); ok2 {
				return equalValues(av2, b)
			}
		}
		// Plain Go values may be uncomparable (slices, maps), so the
		// fallback must not use ==.
		return reflect.DeepEqual(a, b)
	}
}

// valueKey renders an arbitrary value deterministically for hash keys.
func valueKey(v any) string {
	switch val := v.(type) {
	case Expression:
		return val.Key()
	case Scalar:
		return val.String()
	case Space:
		return val.Label()
	case []Expression:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = e.Key()
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// equalOperands compares two operand sequences element-wise.
func equalOperands(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Symbol is an atomic expression identified by a label, optionally
// associated with a Space. Two symbols are equal when their labels and
// spaces agree.
type Symbol struct {
	label string
	space Space
	key   string
}

// NewSymbol creates an atomic symbol in the trivial space.
func NewSymbol(label string) *Symbol {
	return NewSymbolIn(label, TrivialSpace)
}

// NewSymbolIn creates an atomic symbol associated with the given space.
func NewSymbolIn(label string, space Space) *Symbol {
	if space == nil {
		space = TrivialSpace
	}
	s := &Symbol{label: label, space: space}
	if space.IsTrivial() {
		s.key = fmt.Sprintf("Symbol(%s)", label)
	} else {
		s.key = fmt.Sprintf("Symbol(%s,hs=%s)", label, space.Label())
	}
	return s
}

// Kind returns the shared kind descriptor for symbols.
func (s *Symbol) Kind() *Kind { return SymbolKind }

// Operands returns nil; symbols are atomic.
func (s *Symbol) Operands() []Expression { return nil }

// Kwargs returns nil; the label and space are intrinsic, not kwargs.
func (s *Symbol) Kwargs() Kwargs { return nil }

// Label returns the symbol's label.
func (s *Symbol) Label() string { return s.label }

// Space returns the space the symbol lives in.
func (s *Symbol) Space() Space { return s.space }

// Equal reports whether other is a symbol with the same label and space.
func (s *Symbol) Equal(other Expression) bool {
	o, ok := other.(*Symbol)
	return ok && s.label == o.label && s.space.Equal(o.space)
}

// Key returns the canonical key of the symbol.
func (s *Symbol) Key() string { return s.key }

func (s *Symbol) String() string { return s.label }

// ScalarValue wraps a Scalar so that scalars can appear in operand
// position. Scalars supplied as raw operands to Create are wrapped
// automatically.
type ScalarValue struct {
	val Scalar
	key string
}

// NewScalarValue wraps a scalar as an atomic expression.
func NewScalarValue(s Scalar) *ScalarValue {
	return &ScalarValue{val: s, key: fmt.Sprintf("Scalar(%s)", s.String())}
}

// Kind returns the shared kind descriptor for scalar values.
func (s *ScalarValue) Kind() *Kind { return ScalarValueKind }

// Operands returns nil; scalar values are atomic.
func (s *ScalarValue) Operands() []Expression { return nil }

// Kwargs returns nil.
func (s *ScalarValue) Kwargs() Kwargs { return nil }

// Value returns the wrapped scalar.
func (s *ScalarValue) Value() Scalar { return s.val }

// Equal reports whether other wraps an equal scalar.
func (s *ScalarValue) Equal(other Expression) bool {
	o, ok := other.(*ScalarValue)
	return ok && s.val.Equal(o.val)
}

// Key returns the canonical key of the scalar value.
func (s *ScalarValue) Key() string { return s.key }

func (s *ScalarValue) String() string { return s.val.String() }

// Singleton is an atomic expression that is the unique member of its own
// kind, such as the neutral element of a sum or product. Singletons
// compare equal by kind identity.
type Singleton struct {
	kind *Kind
	key  string
}

// NewSingleton creates a fresh singleton expression with its own atomic
// kind. Typical uses are neutral elements such as Zero or One.
func NewSingleton(name string) *Singleton {
	k := newAtomicKind(name)
	return &Singleton{kind: k, key: name}
}

// Kind returns the singleton's unique kind.
func (s *Singleton) Kind() *Kind { return s.kind }

// Operands returns nil; singletons are atomic.
func (s *Singleton) Operands() []Expression { return nil }

// Kwargs returns nil.
func (s *Singleton) Kwargs() Kwargs { return nil }

// Equal reports whether other is the same singleton.
func (s *Singleton) Equal(other Expression) bool {
	o, ok := other.(*Singleton)
	return ok && s.kind == o.kind
}

// Key returns the singleton's name.
func (s *Singleton) Key() string { return s.key }

func (s *Singleton) String() string { return s.key }

// Operation is an expression with one or more operands and an optional
// kwarg mapping. Operations are produced exclusively by the Create
// pipeline; constructing one directly bypasses simplification and is
// reserved for the engine itself.
type Operation struct {
	kind     *Kind
	operands []Expression
	kwargs   Kwargs
	key      string
}

// newOperation finalizes an operation node. The operand slice is owned by
// the caller and must not be modified afterwards.
func newOperation(kind *Kind, operands []Expression, kwargs Kwargs) *Operation {
	op := &Operation{kind: kind, operands: operands, kwargs: kwargs}
	parts := make([]string, len(operands))
	for i, o := range operands {
		parts[i] = o.Key()
	}
	key := kind.Name() + "(" + strings.Join(parts, ",")
	if kwk := kwargs.key(); kwk != "" {
		key += ";" + kwk
	}
	op.key = key + ")"
	return op
}

// Kind returns the operation's kind descriptor.
func (op *Operation) Kind() *Kind { return op.kind }

// Operands returns the ordered operand sequence.
func (op *Operation) Operands() []Expression { return op.operands }

// Kwargs returns the keyword parameters.
func (op *Operation) Kwargs() Kwargs { return op.kwargs }

// Equal reports structural equality with another expression.
func (op *Operation) Equal(other Expression) bool {
	o, ok := other.(*Operation)
	if !ok || op.kind != o.kind {
		return false
	}
	return equalOperands(op.operands, o.operands) && op.kwargs.Equal(o.kwargs)
}

// Key returns the cached canonical key.
func (op *Operation) Key() string { return op.key }

func (op *Operation) String() string {
	parts := make([]string, len(op.operands))
	for i, o := range op.operands {
		parts[i] = o.String()
	}
	s := op.kind.Name() + "(" + strings.Join(parts, ", ")
	if kwk := op.kwargs.key(); kwk != "" {
		s += "; " + kwk
	}
	return s + ")"
}

// Rebuild re-creates an expression bottom-up through the simplification
// pipeline under the currently active rule sets. Rebuilding is how rule
// changes made after an expression was constructed (for example inside a
// TemporaryRules scope) are applied to existing expressions.
func Rebuild(expr Expression) (Expression, error) {
	op, ok := expr.(*Operation)
	if !ok {
		return expr, nil
	}
	rebuilt := make([]any, len(op.operands))
	for i, o := range op.operands {
		r, err := Rebuild(o)
		if err != nil {
			return nil, err
		}
		rebuilt[i] = r
	}
	return Create(op.kind, rebuilt, op.kwargs)
}
