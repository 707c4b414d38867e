package algebra

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// ReplacementFunc produces the replacement for a matched rule. It is a
// pure function of the bindings and returns either:
//   - a finished Expression, which becomes the final result of the
//     creation request (short-circuiting the remaining pipeline steps);
//   - a *Proto, handing a rewritten (args, kwargs) pair back to the
//     pipeline, which restarts from the flattening step;
//   - a raw scalar or plain integer, wrapped as a ScalarValue atom;
//   - ErrCannotSimplify, declining the rewrite so the next rule in
//     declaration order is tried.
//
// Any other error aborts the creation request and surfaces to the
// caller of Create.
type ReplacementFunc func(b Bindings) (any, error)

// Rule pairs a pattern with a replacement producer. Rules are matched
// against the proto-expression of an in-flight creation request.
type Rule struct {
	// Name identifies the rule within its rule set, for diagnostics and
	// removal. Unique per rule set.
	Name string

	// Pattern is a head pattern matched against the (args, kwargs) pair.
	Pattern *Pattern

	// Replace produces the rewrite for a successful match.
	Replace ReplacementFunc
}

// RuleSet is an immutable ordered snapshot of rules. Registration swaps
// a new snapshot into the owning kind, so readers iterating a snapshot
// never observe a partially updated list. Declaration order is a
// user-visible contract: the first matching rule wins.
type RuleSet struct {
	rules []Rule
}

var emptyRuleSet = &RuleSet{}

// Names returns the rule names in declaration order.
func (rs *RuleSet) Names() []string {
	names := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		names[i] = r.Name
	}
	return names
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int { return len(rs.rules) }

func (rs *RuleSet) with(r Rule) *RuleSet {
	out := make([]Rule, len(rs.rules)+1)
	copy(out, rs.rules)
	out[len(rs.rules)] = r
	return &RuleSet{rules: out}
}

func (rs *RuleSet) without(names []string) *RuleSet {
	if len(names) == 0 {
		return emptyRuleSet
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := make([]Rule, 0, len(rs.rules))
	for _, r := range rs.rules {
		if !drop[r.Name] {
			out = append(out, r)
		}
	}
	return &RuleSet{rules: out}
}

func (rs *RuleSet) has(name string) bool {
	for _, r := range rs.rules {
		if r.Name == name {
			return true
		}
	}
	return false
}

// checkRule validates a rule definition against a rule set. Malformed
// rules fail fast at registration, before any Create call can use them.
func (k *Kind) checkRule(rs *RuleSet, name string, pattern *Pattern, replace ReplacementFunc) error {
	fail := func(detail string) error {
		return &RuleConfigurationError{Kind: k.name, Detail: detail}
	}
	if name == "" {
		return fail("rule name must not be empty")
	}
	if rs.has(name) {
		return fail(fmt.Sprintf("duplicate rule name %q", name))
	}
	if pattern == nil {
		return fail(fmt.Sprintf("rule %q has a nil pattern", name))
	}
	if !pattern.head {
		return fail(fmt.Sprintf("rule %q: pattern must be built with PatternHead", name))
	}
	if err := pattern.validate(); err != nil {
		return fail(fmt.Sprintf("rule %q: %v", name, err))
	}
	if replace == nil {
		return fail(fmt.Sprintf("rule %q has a nil replacement", name))
	}
	return nil
}

// AddRule appends a rule to the kind's general rule set. General rules
// are tried in declaration order against the full (args, kwargs) pair
// during the rewrite step.
func (k *Kind) AddRule(name string, pattern *Pattern, replace ReplacementFunc) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.checkRule(k.rules, name, pattern, replace); err != nil {
		return err
	}
	k.rules = k.rules.with(Rule{Name: name, Pattern: pattern, Replace: replace})
	return nil
}

// AddBinaryRule appends a rule to the kind's binary rule set. Binary
// rules are applied to adjacent operand pairs during associative
// flattening; their patterns must cover exactly two operands. Only
// associative kinds may carry binary rules.
func (k *Kind) AddBinaryRule(name string, pattern *Pattern, replace ReplacementFunc) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.associative {
		return &RuleConfigurationError{Kind: k.name,
			Detail: fmt.Sprintf("binary rule %q on a non-associative kind", name)}
	}
	if err := k.checkRule(k.binaryRules, name, pattern, replace); err != nil {
		return err
	}
	if len(pattern.args) != 2 {
		return &RuleConfigurationError{Kind: k.name,
			Detail: fmt.Sprintf("binary rule %q must match exactly two operands", name)}
	}
	for _, a := range pattern.args {
		if a.wildcard && a.mode != ModeSingle {
			return &RuleConfigurationError{Kind: k.name,
				Detail: fmt.Sprintf("binary rule %q must not use variadic wildcards", name)}
		}
	}
	k.binaryRules = k.binaryRules.with(Rule{Name: name, Pattern: pattern, Replace: replace})
	return nil
}

// MustAddRule is AddRule that panics on a configuration error. Intended
// for rule registration at kind-definition time.
func (k *Kind) MustAddRule(name string, pattern *Pattern, replace ReplacementFunc) {
	if err := k.AddRule(name, pattern, replace); err != nil {
		panic(err)
	}
}

// MustAddBinaryRule is AddBinaryRule that panics on a configuration
// error.
func (k *Kind) MustAddBinaryRule(name string, pattern *Pattern, replace ReplacementFunc) {
	if err := k.AddBinaryRule(name, pattern, replace); err != nil {
		panic(err)
	}
}

// DelRules removes the named general rules, or all of them when called
// with no names.
func (k *Kind) DelRules(names ...string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.rules = k.rules.without(names)
}

// DelBinaryRules removes the named binary rules, or all of them when
// called with no names.
func (k *Kind) DelBinaryRules(names ...string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.binaryRules = k.binaryRules.without(names)
}

// RuleNames returns the names of the active general rules in order.
func (k *Kind) RuleNames() []string { return k.activeRules().Names() }

// BinaryRuleNames returns the names of the active binary rules in order.
func (k *Kind) BinaryRuleNames() []string { return k.activeBinaryRules().Names() }

// TemporaryRules snapshots the active rule sets of the given kinds and
// returns a function restoring them. Additions and removals made between
// the two calls are scoped:
//
//	restore := algebra.TemporaryRules(Times)
//	defer restore()
//	Times.MustAddRule("extra", pat, repl)
//
// Rule overrides are process-wide mutable state: every goroutine
// creating expressions of the affected kinds observes them. Scoped
// overrides must therefore be confined to single-threaded call sites.
func TemporaryRules(kinds ...*Kind) (restore func()) {
	type snapshot struct {
		kind        *Kind
		rules       *RuleSet
		binaryRules *RuleSet
	}
	snaps := make([]snapshot, len(kinds))
	for i, k := range kinds {
		k.mu.RLock()
		snaps[i] = snapshot{kind: k, rules: k.rules, binaryRules: k.binaryRules}
		k.mu.RUnlock()
	}
	return func() {
		for _, s := range snaps {
			s.kind.mu.Lock()
			s.kind.rules = s.rules
			s.kind.binaryRules = s.binaryRules
			s.kind.mu.Unlock()
		}
	}
}

// applyRules tries the kind's general rules in declaration order against
// the proto. It returns the first successful replacement (an Expression
// or a *Proto) or ok=false when no rule applies, leaving the pipeline to
// proceed with the pair unchanged.
func applyRules(k *Kind, proto *Proto) (result any, ok bool, err error) {
	for _, r := range k.activeRules().rules {
		res := r.Pattern.Match(proto)
		if !res.Success {
			continue
		}
		out, rerr := r.Replace(res.Bindings())
		if rerr != nil {
			if errors.Is(rerr, ErrCannotSimplify) {
				continue
			}
			return nil, false, fmt.Errorf("%s: rule %q: %w", k.name, r.Name, rerr)
		}
		logger().Debug("rule applied", "kind", k.name, "rule", r.Name)
		return out, true, nil
	}
	return nil, false, nil
}

// applyBinaryRules attempts pairwise fusion of adjacent operands. It
// scans left-to-right, applies the first binary rule matching a pair,
// splices the replacement in (flattening a same-kind result), and
// rescans until no adjacent pair matches.
//
// Termination is the rule authors' obligation: binary rules must
// strictly shrink the operand list or reach a fixed point.
func applyBinaryRules(k *Kind, ops []Expression) ([]Expression, error) {
	rs := k.activeBinaryRules()
	if rs.Len() == 0 || len(ops) < 2 {
		return ops, nil
	}
	ops = append([]Expression(nil), ops...)
rescan:
	for i := 0; i+1 < len(ops); i++ {
		pair := &Proto{kind: k, args: ops[i : i+2]}
		for _, r := range rs.rules {
			res := r.Pattern.Match(pair)
			if !res.Success {
				continue
			}
			out, err := r.Replace(res.Bindings())
			if err != nil {
				if errors.Is(err, ErrCannotSimplify) {
					continue
				}
				return nil, fmt.Errorf("%s: binary rule %q: %w", k.name, r.Name, err)
			}
			fused, err := finishReplacement(out)
			if err != nil {
				return nil, fmt.Errorf("%s: binary rule %q: %w", k.name, r.Name, err)
			}
			logger().Debug("binary rule applied", "kind", k.name, "rule", r.Name)
			ops = spliceFused(k, ops, i, fused)
			goto rescan
		}
	}
	return ops, nil
}

// finishReplacement normalizes a replacement value to an Expression,
// finalizing a returned Proto through the pipeline.
func finishReplacement(out any) (Expression, error) {
	switch v := out.(type) {
	case Expression:
		return v, nil
	case *Proto:
		return createFromProto(v)
	default:
		if e, err := coerceOperand(out); err == nil {
			return e, nil
		}
		return nil, fmt.Errorf("replacement returned %T, want Expression or *Proto", out)
	}
}

// spliceFused replaces the operand pair at position i with the fused
// result, splicing in its operands when the result is itself an
// operation of the same kind.
func spliceFused(k *Kind, ops []Expression, i int, fused Expression) []Expression {
	var insert []Expression
	if fused.Kind() == k {
		insert = fused.Operands()
	} else {
		insert = []Expression{fused}
	}
	out := make([]Expression, 0, len(ops)-2+len(insert))
	out = append(out, ops[:i]...)
	out = append(out, insert...)
	out = append(out, ops[i+2:]...)
	return out
}

// Package logger, used for debug tracing of rule application. Discards
// by default; SetLogger opts in.
var pkgLogger atomic.Pointer[slog.Logger]

func init() {
	pkgLogger.Store(slog.New(slog.DiscardHandler))
}

// SetLogger routes the engine's debug tracing (rule hits, pipeline
// restarts) to the given logger. Pass nil to silence tracing again.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	pkgLogger.Store(l)
}

func logger() *slog.Logger { return pkgLogger.Load() }
