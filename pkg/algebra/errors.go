package algebra

import (
	"errors"
	"fmt"
)

// ErrCannotSimplify is returned by a replacement producer to signal that,
// although its pattern matched, the rule declines to rewrite this
// particular input. The rule engine treats it as a non-match and tries
// the next rule in order. It is internal control flow and never escapes
// a Create call.
var ErrCannotSimplify = errors.New("cannot simplify")

// ArityError reports that a kind received a number of operands outside
// its declared bounds. It is detected when the proto-expression for a
// creation request is built and surfaces unchanged to the caller of
// Create.
type ArityError struct {
	Kind string // kind name
	Got  int    // number of operands received
	Min  int    // declared minimum
	Max  int    // declared maximum, -1 if unbounded
}

func (e *ArityError) Error() string {
	if e.Max < 0 {
		return fmt.Sprintf("%s: got %d operands, need at least %d", e.Kind, e.Got, e.Min)
	}
	return fmt.Sprintf("%s: got %d operands, need between %d and %d", e.Kind, e.Got, e.Min, e.Max)
}

// RuleConfigurationError reports a malformed kind or rule definition:
// an inapplicable pipeline step (for example ordering without an order
// key), a duplicate rule name, or a rule with a nil pattern or
// replacement. It is detected eagerly at registration time, before any
// Create call can observe the misconfiguration.
type RuleConfigurationError struct {
	Kind   string // kind name, empty if not kind-specific
	Detail string
}

func (e *RuleConfigurationError) Error() string {
	if e.Kind == "" {
		return "rule configuration: " + e.Detail
	}
	return fmt.Sprintf("rule configuration for %s: %s", e.Kind, e.Detail)
}

// NonTerminatingRewriteError reports that the rewrite step restarted the
// simplification pipeline more times than the kind's rewrite limit
// allows. Rules are expected to strictly reduce a complexity measure on
// every successful rewrite; exceeding the bound indicates a rule set
// that cycles or grows without bound.
type NonTerminatingRewriteError struct {
	Kind  string
	Limit int
}

func (e *NonTerminatingRewriteError) Error() string {
	return fmt.Sprintf("%s: rewrite did not terminate within %d pipeline restarts", e.Kind, e.Limit)
}
