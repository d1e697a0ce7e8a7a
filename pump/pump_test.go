package pump

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	emucore "github.com/user-none/snesfront/api"
	"github.com/user-none/snesfront/audio"
	"github.com/user-none/snesfront/input"
)

const (
	testWidth  = 4
	testHeight = 2
)

type stepResult struct {
	res emucore.FrameResult
	err error
}

// fakeEngine returns queued results in order, then repeats the last one.
type fakeEngine struct {
	mu      sync.Mutex
	results []stepResult
	inputs  []emucore.Input
	calls   int

	// When set, Step blocks until release is closed.
	entered chan struct{}
	release chan struct{}
}

func (e *fakeEngine) Step(ctx context.Context, in emucore.Input) (emucore.FrameResult, error) {
	e.mu.Lock()
	e.calls++
	e.inputs = append(e.inputs, in)
	var r stepResult
	if len(e.results) > 0 {
		r = e.results[0]
		if len(e.results) > 1 {
			e.results = e.results[1:]
		}
	}
	entered, release := e.entered, e.release
	e.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}
	return r.res, r.err
}

func (e *fakeEngine) Close() error { return nil }

func (e *fakeEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type fakePresenter struct {
	mu     sync.Mutex
	frames [][]byte
}

func (p *fakePresenter) Present(video []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, append([]byte(nil), video...))
}

func (p *fakePresenter) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

type fakeRecorder struct {
	got []float32
	err error
}

func (r *fakeRecorder) Record(samples []float32) error {
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, samples...)
	return nil
}

func frame(samples ...float32) stepResult {
	return stepResult{res: emucore.FrameResult{
		Video: make([]byte, testWidth*testHeight*4),
		Audio: samples,
	}}
}

type harness struct {
	engine    *fakeEngine
	agg       *input.Aggregator
	ring      *audio.RingBuffer
	presenter *fakePresenter
	pump      *Pump
	logs      *bytes.Buffer
}

func newHarness(t *testing.T, gain float32, results ...stepResult) *harness {
	t.Helper()
	h := &harness{
		engine:    &fakeEngine{results: results},
		agg:       input.NewAggregator(),
		presenter: &fakePresenter{},
		logs:      &bytes.Buffer{},
	}
	var err error
	h.ring, err = audio.NewRingBuffer(64)
	if err != nil {
		t.Fatalf("NewRingBuffer: %v", err)
	}
	h.pump, err = New(h.engine, h.agg, h.ring, h.presenter, Config{
		Width:  testWidth,
		Height: testHeight,
		Gain:   gain,
		Logger: log.New(h.logs, "", 0),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func (h *harness) drain(n int) []float32 {
	out := make([]float32, n)
	h.ring.Read(out)
	return out
}

func TestNew_InvalidConfig(t *testing.T) {
	ring, _ := audio.NewRingBuffer(4)
	eng := &fakeEngine{}
	agg := input.NewAggregator()
	pres := &fakePresenter{}

	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero width", Config{Width: 0, Height: 2, Gain: 1}, ErrInvalidConfig},
		{"zero height", Config{Width: 2, Height: 0, Gain: 1}, ErrInvalidConfig},
		{"negative gain", Config{Width: 2, Height: 2, Gain: -1}, audio.ErrInvalidConfig},
	}
	for _, tt := range tests {
		if _, err := New(eng, agg, ring, pres, tt.cfg); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}

	_, err := New(nil, agg, ring, pres, Config{Width: 1, Height: 1, Gain: 1})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil engine: expected ErrInvalidConfig, got %v", err)
	}
	if errors.Is(err, audio.ErrInvalidConfig) {
		t.Errorf("nil engine must not report an audio config error: %v", err)
	}
}

func TestTick_DeliversAudioAndVideo(t *testing.T) {
	h := newHarness(t, 10, frame(0.05, -0.1))

	if err := h.pump.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	got := h.drain(2)
	if got[0] != 0.5 || got[1] != -1.0 {
		t.Fatalf("expected gain-scaled [0.5 -1], got %v", got)
	}
	if h.presenter.Count() != 1 {
		t.Fatalf("expected 1 presented frame, got %d", h.presenter.Count())
	}
	if h.pump.State() != Idle {
		t.Fatalf("expected Idle after tick, got %s", h.pump.State())
	}

	s := h.pump.Stats()
	if s.Ticks != 1 || s.Samples != 2 || s.EngineErrors != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestTick_PassesInputSnapshot(t *testing.T) {
	h := newHarness(t, 1, frame())
	h.agg.ApplyKeyTransition(emucore.ButtonStart, true)
	h.agg.RequestReset()

	if err := h.pump.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	in := h.engine.inputs[0]
	if !in.Controllers[0].Start || !in.Reset {
		t.Fatalf("engine did not receive snapshot: %+v", in)
	}
}

func TestTick_OutOfRangeDropsBatchKeepsVideo(t *testing.T) {
	h := newHarness(t, 10, frame(0.1, 1.5, 0.2))

	if err := h.pump.Tick(context.Background()); err != nil {
		t.Fatalf("out-of-range audio must not fail the tick: %v", err)
	}

	if w, _ := h.ring.Cursors(); w != 0 {
		t.Fatalf("no samples may reach the ring buffer, write cursor %d", w)
	}
	if h.presenter.Count() != 1 {
		t.Fatal("video must still be presented")
	}
	if h.pump.Stats().DroppedBatches != 1 {
		t.Fatalf("expected 1 dropped batch, got %d", h.pump.Stats().DroppedBatches)
	}
	if !strings.Contains(h.logs.String(), "Warning: dropping audio batch") {
		t.Fatalf("expected warning in log, got %q", h.logs.String())
	}
}

func TestTick_EngineErrorAbandonsTick(t *testing.T) {
	boom := errors.New("boom")
	h := newHarness(t, 1, stepResult{err: boom})

	var hooked []error
	h.pump.onErr = func(err error) { hooked = append(hooked, err) }

	err := h.pump.Tick(context.Background())
	if !errors.Is(err, ErrEngine) || !errors.Is(err, boom) {
		t.Fatalf("expected ErrEngine wrapping boom, got %v", err)
	}
	if w, _ := h.ring.Cursors(); w != 0 {
		t.Fatal("failed tick must not write audio")
	}
	if h.presenter.Count() != 0 {
		t.Fatal("failed tick must not present video")
	}
	if h.pump.State() != Idle {
		t.Fatal("pump must return to Idle after a failed tick")
	}
	if len(hooked) != 1 {
		t.Fatalf("expected hook called once, got %d", len(hooked))
	}
}

func TestTick_RepeatedEngineErrorLoggedOnce(t *testing.T) {
	boom := errors.New("boom")
	h := newHarness(t, 1,
		stepResult{err: boom},
		stepResult{err: boom},
		stepResult{err: boom},
		frame(0.1),
	)
	hookCalls := 0
	h.pump.onErr = func(error) { hookCalls++ }

	for i := 0; i < 3; i++ {
		if err := h.pump.Tick(context.Background()); err == nil {
			t.Fatalf("tick %d: expected error", i)
		}
	}
	if err := h.pump.Tick(context.Background()); err != nil {
		t.Fatalf("recovery tick: %v", err)
	}

	logs := h.logs.String()
	if n := strings.Count(logs, "Error: "); n != 1 {
		t.Fatalf("expected one error line, got %d in %q", n, logs)
	}
	if !strings.Contains(logs, "recovered after 2 repeated failures") {
		t.Fatalf("expected recovery summary, got %q", logs)
	}
	if hookCalls != 1 {
		t.Fatalf("expected hook called once, got %d", hookCalls)
	}
	if s := h.pump.Stats(); s.EngineErrors != 3 || s.Ticks != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestTick_WrongVideoSizeIsEngineError(t *testing.T) {
	bad := stepResult{res: emucore.FrameResult{Video: make([]byte, 3), Audio: []float32{0.1}}}
	h := newHarness(t, 1, bad)

	err := h.pump.Tick(context.Background())
	if !errors.Is(err, ErrEngine) {
		t.Fatalf("expected ErrEngine, got %v", err)
	}
	if w, _ := h.ring.Cursors(); w != 0 {
		t.Fatal("malformed frame must not write audio")
	}
}

func TestTick_SingleInFlight(t *testing.T) {
	h := newHarness(t, 1, frame(0.1))
	h.engine.entered = make(chan struct{})
	h.engine.release = make(chan struct{})

	first := make(chan error, 1)
	go func() { first <- h.pump.Tick(context.Background()) }()

	select {
	case <-h.engine.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first tick never reached the engine")
	}
	if h.pump.State() != TickInFlight {
		t.Fatalf("expected TickInFlight, got %s", h.pump.State())
	}

	// Concurrent ticks are refused without reaching the engine.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := h.pump.Tick(context.Background()); !errors.Is(err, ErrTickInFlight) {
				t.Errorf("expected ErrTickInFlight, got %v", err)
			}
		}()
	}
	wg.Wait()

	close(h.engine.release)
	if err := <-first; err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if h.engine.Calls() != 1 {
		t.Fatalf("expected exactly 1 engine call, got %d", h.engine.Calls())
	}
	if h.pump.Stats().BusySkips != 8 {
		t.Fatalf("expected 8 busy skips, got %d", h.pump.Stats().BusySkips)
	}
}

func TestStop_WaitsForInFlightTick(t *testing.T) {
	h := newHarness(t, 1, frame(0.1))
	h.engine.entered = make(chan struct{})
	h.engine.release = make(chan struct{})

	go func() { _ = h.pump.Tick(context.Background()) }()
	<-h.engine.entered

	stopped := make(chan struct{})
	go func() {
		h.pump.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a tick was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(h.engine.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the tick finished")
	}

	if err := h.pump.Tick(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after Stop, got %v", err)
	}
	if h.pump.State() != Idle {
		t.Fatal("pump should be Idle after Stop")
	}
}

func TestTick_RecorderTap(t *testing.T) {
	h := newHarness(t, 2, frame(0.1, 0.2), frame(2.0), frame(0.3))
	rec := &fakeRecorder{}
	h.pump.recorder = rec

	for i := 0; i < 3; i++ {
		if err := h.pump.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	want := []float32{0.2, 0.4, 0.6}
	if len(rec.got) != len(want) {
		t.Fatalf("expected %v recorded, got %v", want, rec.got)
	}
	for i := range want {
		if d := rec.got[i] - want[i]; d > 1e-6 || d < -1e-6 {
			t.Fatalf("sample %d: expected %v, got %v", i, want[i], rec.got[i])
		}
	}
}

func TestTick_RecorderFailureDisablesTap(t *testing.T) {
	h := newHarness(t, 1, frame(0.1))
	h.pump.recorder = &fakeRecorder{err: errors.New("disk full")}

	if err := h.pump.Tick(context.Background()); err != nil {
		t.Fatalf("recorder failure must not fail the tick: %v", err)
	}
	if h.pump.recorder != nil {
		t.Fatal("recorder should be detached after failure")
	}
	if w, _ := h.ring.Cursors(); w != 1 {
		t.Fatal("audio should still reach the ring buffer")
	}
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || TickInFlight.String() != "tick in flight" {
		t.Fatal("unexpected state names")
	}
}
