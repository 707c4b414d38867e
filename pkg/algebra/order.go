package algebra

// OrderKey is the sort key used by the canonical-ordering step. Keys
// compare element-wise; elements may be ints or strings (ints sort
// before strings of the same position). Shorter keys that are a prefix
// of longer keys sort first.
//
// Keys are derived only from the structure of an expression, never from
// memory identity, so sorting is reproducible across runs.
type OrderKey []any

// Compare returns -1, 0 or 1 for k < other, k == other, k > other.
func (k OrderKey) Compare(other OrderKey) int {
	n := len(k)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if c := compareKeyElem(k[i], other[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(k) < len(other):
		return -1
	case len(k) > len(other):
		return 1
	default:
		return 0
	}
}

func compareKeyElem(a, b any) int {
	switch av := a.(type) {
	case int:
		switch bv := b.(type) {
		case int:
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		default:
			return -1 // ints before strings
		}
	case string:
		switch bv := b.(type) {
		case string:
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		default:
			return 1
		}
	default:
		// Unknown element types compare by rendering; keys built by
		// this package only contain ints and strings.
		as := valueKey(a)
		bs := valueKey(b)
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
}

// OrderKeyFunc derives the canonical sort key of an operand. A kind that
// enables the ordering step must declare one.
type OrderKeyFunc func(Expression) OrderKey

// Ranks for DefaultOrderKey: scalars sort before symbols, symbols before
// composite operations.
const (
	rankScalar = iota
	rankAtom
	rankOperation
)

// DefaultOrderKey orders scalar values first, then atoms by label, then
// operations by kind name. The final element is the full canonical key,
// so the order is total over structurally distinct expressions;
// structurally equal operands compare equal and keep their insertion
// order under the stable sort used by the ordering step.
func DefaultOrderKey(e Expression) OrderKey {
	switch v := e.(type) {
	case *ScalarValue:
		return OrderKey{rankScalar, v.val.String()}
	case *Symbol:
		return OrderKey{rankAtom, v.label, v.key}
	case *Singleton:
		return OrderKey{rankAtom, v.key}
	default:
		return OrderKey{rankOperation, e.Kind().Name(), e.Key()}
	}
}
