package algebra

import "fmt"

// Proto is the transient pre-instantiation form of an expression: a kind
// together with candidate operands and kwargs, before the simplification
// pipeline has finished. Protos exist only inside a single in-flight
// Create call and inside rule replacements; they are never retained or
// exposed as results.
//
// A rule replacement can return a *Proto to hand a rewritten
// (args, kwargs) pair back to the pipeline, which then restarts from the
// flattening step.
type Proto struct {
	kind   *Kind
	args   []Expression
	kwargs Kwargs
}

// NewProto builds a proto-expression from raw operands. Scalars and
// plain integers are wrapped as ScalarValue atoms. The only validation
// performed is the kind's arity check; all structural transformation
// happens later in the pipeline.
func NewProto(kind *Kind, args []any, kwargs Kwargs) (*Proto, error) {
	ops := make([]Expression, len(args))
	for i, a := range args {
		e, err := coerceOperand(a)
		if err != nil {
			return nil, err
		}
		ops[i] = e
	}
	if err := kind.checkArity(len(ops)); err != nil {
		return nil, err
	}
	return &Proto{kind: kind, args: ops, kwargs: kwargs.clone()}, nil
}

// ProtoOf builds a proto from already-coerced operands, rechecking
// arity. Used by rule replacements that rearrange existing operands.
func ProtoOf(kind *Kind, args []Expression, kwargs Kwargs) (*Proto, error) {
	if err := kind.checkArity(len(args)); err != nil {
		return nil, err
	}
	ops := make([]Expression, len(args))
	copy(ops, args)
	return &Proto{kind: kind, args: ops, kwargs: kwargs.clone()}, nil
}

// Kind returns the kind the proto will instantiate.
func (p *Proto) Kind() *Kind { return p.kind }

// Args returns the candidate operands. The slice is owned by the proto.
func (p *Proto) Args() []Expression { return p.args }

// Kwargs returns the candidate keyword parameters.
func (p *Proto) Kwargs() Kwargs { return p.kwargs }

// Equal reports structural equality of two protos: same kind, operand
// sequence, and kwarg mapping.
func (p *Proto) Equal(other *Proto) bool {
	if p.kind != other.kind {
		return false
	}
	return equalOperands(p.args, other.args) && p.kwargs.Equal(other.kwargs)
}

// coerceOperand turns a raw creation argument into an Expression.
// Scalars, ints and big rationals become ScalarValue atoms.
func coerceOperand(v any) (Expression, error) {
	if e, ok := v.(Expression); ok {
		return e, nil
	}
	if s, ok := coerceScalar(v); ok {
		return NewScalarValue(s), nil
	}
	return nil, fmt.Errorf("cannot use %T as an operand: not an expression or scalar", v)
}
