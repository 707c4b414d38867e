package algebra

import (
	"sort"
	"strings"
)

// Space is the capability the engine consumes from a Hilbert-space
// module: rules that decide whether two factors commute or whether a
// tensor split is legal only need to ask how two spaces relate. A space
// is either trivial, a named local degree of freedom, or a tensor
// product of local spaces.
type Space interface {
	// Label returns a deterministic identifier for the space.
	Label() string

	// IsTrivial reports whether this is the trivial (scalar) space.
	IsTrivial() bool

	// LocalFactors returns the local spaces the space is composed of,
	// sorted by label. Trivial spaces have no factors.
	LocalFactors() []Space

	// Equal reports whether two spaces are the same.
	Equal(other Space) bool

	// Intersects reports whether the two spaces share a local factor.
	Intersects(other Space) bool

	// Contains reports whether every local factor of other is also a
	// factor of this space.
	Contains(other Space) bool
}

type trivialSpace struct{}

// TrivialSpace is the space of scalars: the neutral element of the
// tensor product of spaces.
var TrivialSpace Space = trivialSpace{}

func (trivialSpace) Label() string               { return "TrivialSpace" }
func (trivialSpace) IsTrivial() bool             { return true }
func (trivialSpace) LocalFactors() []Space       { return nil }
func (trivialSpace) Equal(other Space) bool      { return other != nil && other.IsTrivial() }
func (trivialSpace) Intersects(other Space) bool { return false }
func (trivialSpace) Contains(other Space) bool   { return other != nil && other.IsTrivial() }

// LocalSpace is a single named degree of freedom.
type LocalSpace struct {
	label string
}

// NewLocalSpace creates a local space with the given label. Two local
// spaces with the same label are the same space.
func NewLocalSpace(label string) *LocalSpace {
	return &LocalSpace{label: label}
}

// Label returns the space's label.
func (s *LocalSpace) Label() string { return s.label }

// IsTrivial returns false; local spaces are never trivial.
func (s *LocalSpace) IsTrivial() bool { return false }

// LocalFactors returns the space itself.
func (s *LocalSpace) LocalFactors() []Space { return []Space{s} }

// Equal reports whether other is a local space with the same label.
func (s *LocalSpace) Equal(other Space) bool {
	o, ok := other.(*LocalSpace)
	return ok && s.label == o.label
}

// Intersects reports whether other has s among its local factors.
func (s *LocalSpace) Intersects(other Space) bool {
	if other == nil || other.IsTrivial() {
		return false
	}
	for _, f := range other.LocalFactors() {
		if s.Equal(f) {
			return true
		}
	}
	return false
}

// Contains reports whether other is trivial or equal to s.
func (s *LocalSpace) Contains(other Space) bool {
	if other == nil || other.IsTrivial() {
		return true
	}
	for _, f := range other.LocalFactors() {
		if !s.Equal(f) {
			return false
		}
	}
	return true
}

// ProductSpace is a tensor product of two or more distinct local
// spaces, kept sorted by label so products built in any order are equal.
type ProductSpace struct {
	factors []Space
	label   string
}

// TensorSpace combines spaces into their tensor product. Duplicate local
// factors are kept once; trivial spaces are dropped. The result is a
// trivial space, a single local space, or a ProductSpace, whichever is
// smallest.
func TensorSpace(spaces ...Space) Space {
	byLabel := map[string]Space{}
	for _, s := range spaces {
		if s == nil || s.IsTrivial() {
			continue
		}
		for _, f := range s.LocalFactors() {
			byLabel[f.Label()] = f
		}
	}
	if len(byLabel) == 0 {
		return TrivialSpace
	}
	labels := make([]string, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	if len(labels) == 1 {
		return byLabel[labels[0]]
	}
	factors := make([]Space, len(labels))
	for i, l := range labels {
		factors[i] = byLabel[l]
	}
	return &ProductSpace{factors: factors, label: strings.Join(labels, "*")}
}

// Label returns the product's label, the labels of its factors joined
// with "*".
func (s *ProductSpace) Label() string { return s.label }

// IsTrivial returns false; product spaces always have factors.
func (s *ProductSpace) IsTrivial() bool { return false }

// LocalFactors returns the sorted local factors.
func (s *ProductSpace) LocalFactors() []Space { return s.factors }

// Equal reports whether other is a product of the same local factors.
func (s *ProductSpace) Equal(other Space) bool {
	o, ok := other.(*ProductSpace)
	return ok && s.label == o.label
}

// Intersects reports whether the two spaces share a local factor.
func (s *ProductSpace) Intersects(other Space) bool {
	if other == nil || other.IsTrivial() {
		return false
	}
	for _, f := range s.factors {
		if f.Intersects(other) {
			return true
		}
	}
	return false
}

// Contains reports whether every local factor of other is a factor of s.
func (s *ProductSpace) Contains(other Space) bool {
	if other == nil || other.IsTrivial() {
		return true
	}
	for _, f := range other.LocalFactors() {
		if !f.Intersects(s) {
			return false
		}
	}
	return true
}

// SpaceOf returns the combined space of an expression: the tensor
// product of the spaces of all symbols it contains. Expressions with no
// symbols live in the trivial space.
func SpaceOf(expr Expression) Space {
	if sym, ok := expr.(*Symbol); ok {
		return sym.Space()
	}
	spaces := []Space{}
	for _, o := range expr.Operands() {
		spaces = append(spaces, SpaceOf(o))
	}
	return TensorSpace(spaces...)
}
