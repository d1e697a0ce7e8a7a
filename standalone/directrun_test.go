package standalone

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	emucore "github.com/user-none/snesfront/api"
	"github.com/user-none/snesfront/input"
)

// countingTicker returns immediately from every tick.
type countingTicker struct {
	ticks atomic.Int32
}

func (c *countingTicker) Tick(ctx context.Context) error {
	c.ticks.Add(1)
	return nil
}

func newTestRunner(t *testing.T) (*runner, *countingTicker) {
	t.Helper()
	c := &countingTicker{}
	loop := NewTickLoop(c)
	loop.Start()
	t.Cleanup(loop.Stop)

	r := &runner{
		aggregator: input.NewAggregator(),
		poller:     input.NewPoller(input.KeyMap{}, true),
		loop:       loop,
		focused:    true,
	}
	return r, c
}

// advanceUntilAccepted retries until the loop goroutine takes a trigger.
func advanceUntilAccepted(t *testing.T, r *runner, focused bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !r.advance(focused) {
		if time.Now().After(deadline) {
			t.Fatal("tick never accepted")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRunner_KeepsTickingWithoutFocus(t *testing.T) {
	r, c := newTestRunner(t)
	r.aggregator.ApplyKeyTransition(emucore.ButtonA, true)

	advanceUntilAccepted(t, r, false)

	if r.focused {
		t.Error("runner should record focus loss")
	}
	if r.aggregator.Snapshot().Controllers[0].Pressed(emucore.ButtonA) {
		t.Error("held input should be released on focus loss")
	}

	deadline := time.Now().Add(2 * time.Second)
	for c.ticks.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no tick ran while unfocused")
		}
		time.Sleep(time.Millisecond)
	}

	// Still unfocused: further refreshes keep driving the engine.
	advanceUntilAccepted(t, r, false)
	if triggered, _ := r.loop.Counts(); triggered < 2 {
		t.Errorf("expected at least 2 triggers, got %d", triggered)
	}
}

func TestRunner_PausedDoesNotTick(t *testing.T) {
	r, c := newTestRunner(t)
	r.paused = true

	for i := 0; i < 10; i++ {
		if r.advance(false) {
			t.Fatal("tick accepted while paused")
		}
	}
	if triggered, _ := r.loop.Counts(); triggered != 0 {
		t.Errorf("expected no triggers, got %d", triggered)
	}
	if c.ticks.Load() != 0 {
		t.Errorf("expected no ticks, got %d", c.ticks.Load())
	}
}
