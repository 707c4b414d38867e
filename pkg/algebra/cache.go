package algebra

import (
	"sync"
	"sync/atomic"
)

// Expression interning. When enabled, finalized operations are cached by
// their canonical key so that structurally equal results share a single
// instance. Interning is safe because expressions are immutable; it
// makes repeated creation of the same expression cheap and turns deep
// equality of interned results into pointer equality in practice.
//
// Off by default: long-running processes that create many distinct
// expressions may not want the cache to grow without bound.
var (
	interning atomic.Bool
	internMap sync.Map // internKey -> *Operation
)

// internKey pairs the canonical key with the kind's identity. Canonical
// keys contain kind names, and independently built kinds may share a
// name without being the same kind.
type internKey struct {
	kind *Kind
	key  string
}

// EnableCaching switches expression interning on or off. Switching it
// off also drops the cached instances.
func EnableCaching(on bool) {
	interning.Store(on)
	if !on {
		internMap.Clear()
	}
}

// CachingEnabled reports whether interning is active.
func CachingEnabled() bool { return interning.Load() }

// intern returns the canonical instance for an operation, caching the
// given one if no equal instance exists yet.
func intern(op *Operation) *Operation {
	if !interning.Load() {
		return op
	}
	if cached, ok := internMap.LoadOrStore(internKey{kind: op.kind, key: op.key}, op); ok {
		return cached.(*Operation)
	}
	return op
}
