// Package input turns keyboard and gamepad state into controller snapshots
// for the frame pump.
package input

import (
	"sync/atomic"

	emucore "github.com/user-none/snesfront/api"
)

// localPlayer is the controller slot driven by local keyboard and gamepad.
const localPlayer = 0

// Aggregator holds the current logical state of every controller.
//
// The state is an immutable emucore.Input published through an atomic
// pointer. Writers build a modified copy and swap it in, so Snapshot never
// observes a half-applied transition and never blocks the event side.
type Aggregator struct {
	state        atomic.Pointer[emucore.Input]
	resetPending atomic.Bool
}

// NewAggregator creates an aggregator with every button released.
func NewAggregator() *Aggregator {
	a := &Aggregator{}
	a.state.Store(&emucore.Input{})
	return a
}

// ApplyKeyTransition sets one button of the local controller. Slot 1 is
// never written by local input.
func (a *Aggregator) ApplyKeyTransition(id emucore.ButtonID, pressed bool) {
	if !id.Valid() {
		return
	}
	for {
		cur := a.state.Load()
		if cur.Controllers[localPlayer].Pressed(id) == pressed {
			return
		}
		next := *cur
		next.Controllers[localPlayer].Set(id, pressed)
		if a.state.CompareAndSwap(cur, &next) {
			return
		}
	}
}

// Snapshot returns a copy of the current state. A pending reset request is
// reported once and then cleared.
func (a *Aggregator) Snapshot() emucore.Input {
	in := *a.state.Load()
	in.Reset = a.resetPending.Swap(false)
	return in
}

// RequestReset asks for the next snapshot to carry Reset = true.
func (a *Aggregator) RequestReset() {
	a.resetPending.Store(true)
}

// Release clears every button of the local controller.
func (a *Aggregator) Release() {
	for {
		cur := a.state.Load()
		if cur.Controllers[localPlayer] == (emucore.ControllerState{}) {
			return
		}
		next := *cur
		next.Controllers[localPlayer] = emucore.ControllerState{}
		if a.state.CompareAndSwap(cur, &next) {
			return
		}
	}
}
