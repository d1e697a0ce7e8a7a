// Package standalone runs an engine in an ebiten window: ebiten's Update
// polls input and triggers one pump tick per display refresh, the pump
// feeds the audio ring buffer that oto drains, and Draw shows the last
// presented frame.
package standalone

import (
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	emucore "github.com/user-none/snesfront/api"
	"github.com/user-none/snesfront/audio"
	"github.com/user-none/snesfront/input"
	"github.com/user-none/snesfront/pump"
	"github.com/user-none/snesfront/romloader"
	"github.com/user-none/snesfront/standalone/storage"
)

// Options configures Run.
type Options struct {
	ROMPath string
	Config  *storage.Config

	// SaveWindow writes the final window size back to the default
	// config file on exit.
	SaveWindow bool
}

// runner implements ebiten.Game for a single loaded ROM.
type runner struct {
	config       *storage.Config
	systemInfo   emucore.SystemInfo
	rom          *romloader.ROM
	engine       emucore.Engine
	ring         *audio.RingBuffer
	output       *audio.Output // nil when no audio device is available
	recorder     *audio.WAVRecorder
	pump         *pump.Pump
	loop         *TickLoop
	aggregator   *input.Aggregator
	poller       *input.Poller
	source       input.EbitenSource
	sharedFB     *SharedFramebuffer
	renderer     *FramebufferRenderer
	notification *Notification

	paused    bool
	focused   bool
	showStats bool

	// Last windowed geometry, tracked in Update for SaveWindow.
	windowW, windowH int
	windowX, windowY int
	fullscreen       bool
}

// Run loads a ROM and runs it until the window is closed or Escape is
// pressed.
func Run(factory emucore.CoreFactory, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = storage.DefaultConfig()
	}
	systemInfo := factory.SystemInfo()

	rom, err := romloader.Load(opts.ROMPath, systemInfo.Extensions)
	if err != nil {
		return fmt.Errorf("failed to load ROM: %w", err)
	}
	if rom.CopierHeader {
		log.Printf("Stripped copier header from %s", rom.Name)
	}

	region, err := emucore.ParseRegion(cfg.Video.Region)
	if err != nil {
		return err
	}

	audioCfg := cfg.AudioConfig()
	if err := audioCfg.Validate(); err != nil {
		return err
	}
	ring, err := audio.NewRingBuffer(audioCfg.BufferCapacitySamples)
	if err != nil {
		return err
	}

	engine, err := factory.CreateEngine(rom.Data, region, audioCfg.SampleRate)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	r := &runner{
		config:       cfg,
		systemInfo:   systemInfo,
		rom:          rom,
		engine:       engine,
		ring:         ring,
		aggregator:   input.NewAggregator(),
		poller:       input.NewPoller(input.BuildMappingFromConfig(systemInfo.Buttons, cfg.Input.P1Keyboard, cfg.Input.P1Controller), cfg.Input.DisableAnalogStick),
		sharedFB:     NewSharedFramebuffer(systemInfo.ScreenWidth, systemInfo.ScreenHeight),
		renderer:     NewFramebufferRenderer(systemInfo.ScreenWidth, systemInfo.ScreenHeight, systemInfo.AspectRatio()),
		notification: NewNotification(),
		focused:      true,
		showStats:    cfg.Video.ShowStats,
	}

	pumpCfg := pump.Config{
		Width:  systemInfo.ScreenWidth,
		Height: systemInfo.ScreenHeight,
		Gain:   audioCfg.Gain,
		OnEngineError: func(err error) {
			r.notification.ShowDefault(fmt.Sprintf("Engine error: %v", err))
		},
	}
	if cfg.Recording.WAVPath != "" {
		r.recorder = openRecorder(cfg.Recording.WAVPath, audioCfg.SampleRate)
		if r.recorder != nil {
			pumpCfg.Recorder = r.recorder
		}
	}

	r.pump, err = pump.New(engine, r.aggregator, ring, r.sharedFB, pumpCfg)
	if err != nil {
		r.closeRecorder()
		engine.Close()
		return err
	}
	r.loop = NewTickLoop(r.pump)

	// Audio is optional: a headless machine still runs video and capture.
	output, err := audio.NewOutput(audioCfg, ring, cfg.OutputVolume())
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
	} else if err := output.Start(); err != nil {
		log.Printf("Warning: audio start failed: %v", err)
		output.Close()
	} else {
		r.output = output
	}

	ebiten.SetWindowTitle(fmt.Sprintf("%s - %s", systemInfo.ConsoleName, rom.Name))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	minW := systemInfo.ScreenWidth
	minH := int(float64(minW) / systemInfo.AspectRatio())
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowSizeLimits(minW, minH, -1, -1)
	if cfg.Window.X != nil && cfg.Window.Y != nil {
		ebiten.SetWindowPosition(*cfg.Window.X, *cfg.Window.Y)
	}
	ebiten.SetFullscreen(cfg.Window.Fullscreen)

	r.loop.Start()

	err = ebiten.RunGame(r)

	r.Close()
	if opts.SaveWindow {
		r.saveWindow()
	}

	return err
}

// openRecorder creates the WAV tap. Failure only disables recording.
func openRecorder(name string, sampleRate int) *audio.WAVRecorder {
	path, err := storage.ResolveRecordingPath(name)
	if err != nil {
		log.Printf("Warning: recording disabled: %v", err)
		return nil
	}
	rec, err := audio.NewWAVRecorder(path, sampleRate)
	if err != nil {
		log.Printf("Warning: recording disabled: %v", err)
		return nil
	}
	log.Printf("Recording audio to %s", path)
	return rec
}

// Update implements ebiten.Game.
func (r *runner) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		r.showStats = !r.showStats
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		r.takeScreenshot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		r.togglePause()
	}
	r.trackWindow()
	r.advance(ebiten.IsFocused())
	return nil
}

// advance polls input and requests one tick. It reports whether the tick
// was accepted. Emulation keeps running without focus; only input is
// dropped, since keys held while focus moves elsewhere never see their
// release.
func (r *runner) advance(focused bool) bool {
	if !focused && r.focused {
		r.releaseInput()
	}
	r.focused = focused

	if r.paused {
		return false
	}
	if focused {
		r.source.Refresh()
		r.poller.Poll(&r.source, r.aggregator)
	}
	return r.loop.Trigger()
}

// Draw implements ebiten.Game.
func (r *runner) Draw(screen *ebiten.Image) {
	pixels, frames := r.sharedFB.Read()
	if frames > 0 {
		r.renderer.DrawFramebuffer(screen, pixels)
	}
	r.notification.Draw(screen)
	if r.showStats {
		ebitenutil.DebugPrint(screen, r.stats().String())
	}
}

// Layout implements ebiten.Game.
func (r *runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := 1.0
	if m := ebiten.Monitor(); m != nil {
		s = m.DeviceScaleFactor()
	}
	return int(float64(outsideWidth) * s), int(float64(outsideHeight) * s)
}

func (r *runner) togglePause() {
	r.paused = !r.paused
	if r.paused {
		r.releaseInput()
		r.notification.ShowShort("Paused")
	} else {
		r.notification.ShowShort("Resumed")
	}
}

func (r *runner) releaseInput() {
	r.aggregator.Release()
	r.poller.Forget()
}

func (r *runner) takeScreenshot() {
	dir, err := storage.GetScreenshotDir()
	if err != nil {
		log.Printf("Warning: screenshot failed: %v", err)
		return
	}
	pixels, frames := r.sharedFB.Read()
	if frames == 0 {
		return
	}
	w, h := r.sharedFB.Size()
	path, err := SaveScreenshot(dir, fmt.Sprintf("%08X", r.rom.CRC32), pixels, w, h, time.Now())
	if err != nil {
		log.Printf("Warning: screenshot failed: %v", err)
		return
	}
	r.notification.ShowShort("Screenshot saved")
	log.Printf("Screenshot saved to %s", path)
}

func (r *runner) stats() sessionStats {
	triggered, skipped := r.loop.Counts()
	s := sessionStats{
		TPS:            ebiten.ActualTPS(),
		Paused:         r.paused,
		Pump:           r.pump.Stats(),
		Ring:           r.ring.Stats(),
		Buffered:       r.ring.Buffered(),
		Capacity:       r.ring.Capacity(),
		DeviceBuffered: -1,
		Triggers:       triggered,
		SkippedTicks:   skipped,
		DroppedFrames:  r.sharedFB.Dropped(),
	}
	if r.output != nil {
		s.DeviceBuffered = r.output.BufferedSamples()
	}
	return s
}

// Close stops ticking, waits for the in-flight tick, then releases the
// audio device, the recording and the engine in that order.
func (r *runner) Close() {
	r.loop.Stop()
	r.pump.Stop()

	if r.output != nil {
		if err := r.output.Close(); err != nil {
			log.Printf("Warning: closing audio output: %v", err)
		}
	}
	r.closeRecorder()
	if err := r.engine.Close(); err != nil {
		log.Printf("Warning: closing engine: %v", err)
	}

	ps := r.pump.Stats()
	rs := r.ring.Stats()
	log.Printf("Session ended: %d ticks, %d engine errors, %d dropped batches, %d underruns, %d overwritten",
		ps.Ticks, ps.EngineErrors, ps.DroppedBatches, rs.Underruns, rs.Overwritten)
}

func (r *runner) closeRecorder() {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Close(); err != nil {
		log.Printf("Warning: closing recording: %v", err)
		return
	}
	log.Printf("Recorded %d samples to %s", r.recorder.Frames(), r.recorder.Path())
}

func (r *runner) trackWindow() {
	r.fullscreen = ebiten.IsFullscreen()
	if !r.fullscreen {
		r.windowW, r.windowH = ebiten.WindowSize()
		r.windowX, r.windowY = ebiten.WindowPosition()
	}
}

// saveWindow persists the last windowed size and position.
func (r *runner) saveWindow() {
	if r.windowW > 0 && r.windowH > 0 {
		x, y := r.windowX, r.windowY
		r.config.Window.Width = r.windowW
		r.config.Window.Height = r.windowH
		r.config.Window.X = &x
		r.config.Window.Y = &y
	}
	r.config.Window.Fullscreen = r.fullscreen
	r.config.Video.ShowStats = r.showStats
	if err := storage.SaveConfig(r.config); err != nil {
		log.Printf("Warning: failed to save config: %v", err)
	}
}
