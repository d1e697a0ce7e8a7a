package engine

import (
	emucore "github.com/user-none/snesfront/api"
)

// Version of the built-in test core.
const Version = "1.0.0"

// Factory creates test cores wrapped in a Worker.
type Factory struct{}

// SystemInfo implements emucore.CoreFactory.
func (Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:         "snes",
		ConsoleName:  "Super Nintendo",
		Extensions:   []string{".sfc", ".smc"},
		ScreenWidth:  ScreenWidth,
		ScreenHeight: ScreenHeight,
		PixelAspect:  8.0 / 7.0,
		SampleRate:   32000,
		Buttons:      emucore.StandardButtons,
		Players:      emucore.NumControllers,
		CoreName:     "testcore",
		CoreVersion:  Version,
	}
}

// CreateEngine implements emucore.CoreFactory.
func (Factory) CreateEngine(rom []byte, region emucore.Region, sampleRate int) (emucore.Engine, error) {
	core, err := NewTestCore(rom, region, sampleRate)
	if err != nil {
		return nil, err
	}
	return NewWorker(core), nil
}
