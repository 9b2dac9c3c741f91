package voice

import "sync/atomic"

// Interrupt is the per-session barge-in signal. The transport reader sets it
// the moment the user starts speaking again; the reply pipeline polls it at
// every suspension point. There is no forced preemption: an external call
// already in flight may finish, but its result is discarded.
type Interrupt struct {
	set atomic.Bool
}

func NewInterrupt() *Interrupt { return &Interrupt{} }

// Signal requests early termination of the in-flight reply run. Idempotent
// and safe to call concurrently with the run.
func (i *Interrupt) Signal() {
	i.set.Store(true)
}

// Clear resets the signal. Must happen at the start of a new run, before any
// collaborator is invoked, so a stale signal cannot abort the new run.
func (i *Interrupt) Clear() {
	i.set.Store(false)
}

// Interrupted reports whether termination has been requested.
func (i *Interrupt) Interrupted() bool {
	return i.set.Load()
}
