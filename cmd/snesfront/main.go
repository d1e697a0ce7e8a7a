package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/sqweek/dialog"
	"github.com/user-none/snesfront/engine"
	"github.com/user-none/snesfront/input"
	"github.com/user-none/snesfront/standalone"
	"github.com/user-none/snesfront/standalone/storage"
)

const dataDirName = "snesfront"

// options holds the command line settings. Zero or negative values leave
// the config untouched.
type options struct {
	romPath    string
	configPath string
	gain       float64
	bufferSize int
	region     string
	recordWAV  string
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("snesfront", flag.ContinueOnError)
	fs.StringVar(&opts.romPath, "rom", "", "path to ROM file (opens a file picker if not provided)")
	fs.StringVar(&opts.configPath, "config", "", "path to config.json (default: per-user data directory)")
	fs.Float64Var(&opts.gain, "gain", -1, "sample gain applied after validation (default from config, 1.0)")
	fs.IntVar(&opts.bufferSize, "buffer", 0, "audio ring buffer capacity in samples (default from config, one second)")
	fs.StringVar(&opts.region, "region", "", "region: ntsc or pal (default from config)")
	fs.StringVar(&opts.recordWAV, "record-wav", "", "record the produced audio to this WAV file")
	return fs
}

// applyOverrides copies the flags that were set onto config.
func applyOverrides(config *storage.Config, opts options) {
	if opts.gain >= 0 {
		config.Audio.Gain = opts.gain
	}
	if opts.bufferSize > 0 {
		config.Audio.BufferCapacitySamples = opts.bufferSize
	}
	if opts.region != "" {
		config.Video.Region = strings.ToLower(opts.region)
	}
	if opts.recordWAV != "" {
		config.Recording.WAVPath = opts.recordWAV
	}
}

func main() {
	var opts options
	if err := newFlagSet(&opts).Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	storage.Init(dataDirName)
	if err := storage.EnsureDirectories(); err != nil {
		log.Printf("Warning: %v", err)
	}

	config, err := loadConfig(opts.configPath)
	if err != nil {
		log.Fatal(err)
	}
	applyOverrides(config, opts)

	// A bad audio path setting cannot be recovered from.
	if err := storage.ValidateAudio(config); err != nil {
		log.Fatalf("config: %v", err)
	}
	if problems := storage.ValidateConfig(config); len(problems) > 0 {
		for _, p := range problems {
			log.Printf("Warning: config: %s", p)
		}
		storage.CorrectConfig(config)
		log.Printf("Warning: invalid settings replaced with defaults")
	}
	for _, p := range input.ValidateOverrides(config.Input.P1Keyboard, config.Input.P1Controller) {
		log.Printf("Warning: input: %s", p)
	}

	path := opts.romPath
	if path == "" {
		path, err = pickROM()
		if errors.Is(err, dialog.ErrCancelled) {
			return
		}
		if err != nil {
			log.Fatal(err)
		}
	}

	runOpts := standalone.Options{
		ROMPath:    path,
		Config:     config,
		SaveWindow: opts.configPath == "",
	}
	if err := standalone.Run(engine.Factory{}, runOpts); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the config from path, or from the data directory
// (creating it with defaults) when path is empty.
func loadConfig(path string) (*storage.Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		return storage.LoadConfigFrom(path)
	}
	if err := storage.CreateConfigIfMissing(); err != nil {
		log.Printf("Warning: %v", err)
	}
	return storage.LoadConfig()
}

func pickROM() (string, error) {
	return dialog.File().
		Title("Open SNES ROM").
		Filter("SNES ROMs and archives", "sfc", "smc", "zip", "7z", "gz", "tgz", "rar").
		Filter("All files", "*").
		Load()
}
