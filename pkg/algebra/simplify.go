package algebra

import (
	"errors"
	"fmt"
	"sort"
)

// Create builds an expression of the given kind from raw operands and
// keyword parameters, running the kind's simplification pipeline:
//
//  1. flattening of same-kind operands and pairwise binary-rule fusion
//     (associative kinds);
//  2. collapse of duplicate or mergeable operands (idempotent kinds or
//     kinds with a Collect hook);
//  3. neutral-element filtering, short-circuiting to the neutral element
//     when nothing remains and applying the kind's singleton policy;
//  4. canonical ordering (commutative kinds), a stable sort by the
//     declared order key so equal inputs normalize identically
//     regardless of construction order;
//  5. rule-based rewrite: the first matching general rule either
//     finishes the expression or restarts the pipeline with a rewritten
//     pair (bounded by the kind's rewrite limit).
//
// Create is a pure function of its inputs and the registered rule sets;
// independent calls may run concurrently.
func Create(kind *Kind, args []any, kwargs Kwargs) (Expression, error) {
	if kind.atomic {
		return nil, fmt.Errorf("%s: atomic kinds are constructed directly, not through Create", kind.name)
	}
	proto, err := NewProto(kind, args, kwargs)
	if err != nil {
		return nil, err
	}
	return createFromProto(proto)
}

// createFromProto runs the pipeline loop over an evolving (args, kwargs)
// pair. The loop restarts when the rewrite step returns a new pair and
// is bounded by the kind's rewrite limit.
func createFromProto(proto *Proto) (Expression, error) {
	return createBounded(proto, 0)
}

// createBounded is createFromProto with restarts already spent. Rewrites
// that hand off to another kind carry their count along, so rules that
// bounce a pair between kinds exhaust the limit instead of recursing
// unboundedly.
func createBounded(proto *Proto, used int) (Expression, error) {
	k := proto.kind
	ops := proto.args
	kwargs := proto.kwargs

	for restarts := used; ; restarts++ {
		if restarts > k.rewriteLimit {
			return nil, &NonTerminatingRewriteError{Kind: k.name, Limit: k.rewriteLimit}
		}

		// Flatten: splice same-kind operands, then fuse adjacent pairs.
		if k.associative {
			ops = flattenOperands(k, ops)
			var err error
			ops, err = applyBinaryRules(k, ops)
			if err != nil {
				return nil, err
			}
		}

		// Collapse duplicates per the kind's merge policy.
		if k.collect != nil {
			collapsed, err := k.collect(k, ops)
			switch {
			case err == nil:
				ops = collapsed
			case errors.Is(err, ErrCannotSimplify):
				// merge declined, keep operands
			default:
				return nil, fmt.Errorf("%s: collapse: %w", k.name, err)
			}
		}

		// Filter the neutral element.
		if k.neutral != nil {
			ops = filterNeutral(k, ops)
			if len(ops) == 0 {
				return k.neutral, nil
			}
		}
		if len(ops) == 1 && !k.keepSingleton && (k.associative || k.neutral != nil) {
			return ops[0], nil
		}

		// Canonical ordering: stable, so structurally equal operands
		// keep their insertion order.
		if k.commutative {
			sort.SliceStable(ops, func(i, j int) bool {
				return k.orderKey(ops[i]).Compare(k.orderKey(ops[j])) < 0
			})
		}

		// Rule-based rewrite: first match wins.
		out, ok, err := applyRules(k, &Proto{kind: k, args: ops, kwargs: kwargs})
		if err != nil {
			return nil, err
		}
		if ok {
			switch v := out.(type) {
			case *Proto:
				if v.kind != k {
					// The rewrite changed the operation kind; the new
					// kind's pipeline takes over with the budget spent
					// so far.
					return createBounded(v, restarts+1)
				}
				logger().Debug("pipeline restart", "kind", k.name, "restarts", restarts+1)
				ops, kwargs = v.args, v.kwargs
				continue
			default:
				return finishReplacement(out)
			}
		}

		// Finalize: the pair survived every step unchanged.
		if err := k.checkArity(len(ops)); err != nil {
			return nil, err
		}
		return intern(newOperation(k, ops, kwargs)), nil
	}
}

// flattenOperands splices operands that are themselves operations of the
// same kind into the operand list, recursively: a sum of sums becomes
// one flat sum.
func flattenOperands(k *Kind, ops []Expression) []Expression {
	flat := make([]Expression, 0, len(ops))
	for _, op := range ops {
		if op.Kind() == k {
			flat = append(flat, flattenOperands(k, op.Operands())...)
		} else {
			flat = append(flat, op)
		}
	}
	return flat
}

// filterNeutral removes operands structurally equal to the kind's
// neutral element.
func filterNeutral(k *Kind, ops []Expression) []Expression {
	out := ops[:0:0]
	for _, op := range ops {
		if !op.Equal(k.neutral) {
			out = append(out, op)
		}
	}
	return out
}

// Simplify applies caller-supplied rules to a finished expression,
// bottom-up, without registering them on any kind. Each node is
// rewritten repeatedly until no rule matches (first match wins per
// round), bounded by DefaultRewriteLimit. Rule patterns here match
// complete expressions, so concrete-kind patterns are typical.
func Simplify(expr Expression, rules []Rule) (Expression, error) {
	if op, ok := expr.(*Operation); ok {
		args := make([]any, len(op.operands))
		changed := false
		for i, o := range op.operands {
			s, err := Simplify(o, rules)
			if err != nil {
				return nil, err
			}
			if !s.Equal(o) {
				changed = true
			}
			args[i] = s
		}
		if changed {
			rebuilt, err := Create(op.kind, args, op.kwargs)
			if err != nil {
				return nil, err
			}
			expr = rebuilt
		}
	}
	for round := 0; round <= DefaultRewriteLimit; round++ {
		next, ok, err := applyAdHoc(expr, rules)
		if err != nil {
			return nil, err
		}
		if !ok || next.Equal(expr) {
			return expr, nil
		}
		expr = next
	}
	return nil, &NonTerminatingRewriteError{Kind: expr.Kind().Name(), Limit: DefaultRewriteLimit}
}

func applyAdHoc(expr Expression, rules []Rule) (Expression, bool, error) {
	for _, r := range rules {
		res := r.Pattern.Match(expr)
		if !res.Success {
			continue
		}
		out, err := r.Replace(res.Bindings())
		if err != nil {
			if errors.Is(err, ErrCannotSimplify) {
				continue
			}
			return nil, false, fmt.Errorf("simplify: rule %q: %w", r.Name, err)
		}
		fin, err := finishReplacement(out)
		if err != nil {
			return nil, false, fmt.Errorf("simplify: rule %q: %w", r.Name, err)
		}
		return fin, true, nil
	}
	return expr, false, nil
}
