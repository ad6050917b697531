// Package atomicfloat provides a lock-free float64 for readers that must
// not contend with the campaign mutex: the observer hub polls live scores
// on every broadcast tick, and must never block behind a turn in
// progress to do it.
package atomicfloat

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Float64 encapsulates a float64 for non-locking atomic operations. The
// gc may relocate the backing variable between the unsafe.Pointer cast
// and its use, so every atomic op below re-takes the pointer immediately
// before the syscall-level op; none of them hold it across other work.
type Float64 struct {
	val float64
}

// New wraps val for atomic access.
func New(val float64) *Float64 {
	return &Float64{val: val}
}

// Read atomically loads the float64, so callers never observe a
// torn/stale value racing a concurrent Set or Add.
func (af *Float64) Read() float64 {
	bits := atomic.LoadUint64((*uint64)(unsafe.Pointer(&af.val)))
	return math.Float64frombits(bits)
}

// Add adds addend to the current value via compare-and-swap, reporting
// whether the swap won the race. A caller that loses should decide for
// itself whether to retry, drop the update, or recompute: silently
// looping until success would mask changes the caller needed to see.
func (af *Float64) Add(addend float64) (newVal float64, succeeded bool) {
	old := af.Read()
	newVal = old + addend
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&af.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}

// Set stores newVal via compare-and-swap against the last read value,
// reporting whether it won the race.
func (af *Float64) Set(newVal float64) (succeeded bool) {
	old := af.Read()
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&af.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}
