package emucore

// Button describes a controller button with its default host bindings.
type Button struct {
	ID         ButtonID
	DefaultKey string // Default keyboard key for standalone UI (e.g., "J", "Enter")
	DefaultPad string // Default gamepad button for standalone UI (e.g., "A", "Start")
}

// SystemInfo describes an emulated system for front-end configuration.
type SystemInfo struct {
	Name         string
	ConsoleName  string
	Extensions   []string
	ScreenWidth  int
	ScreenHeight int
	PixelAspect  float64 // Pixel aspect ratio (width / height of one pixel)
	SampleRate   int     // Native rate of the core's audio output
	Buttons      []Button
	Players      int
	CoreName     string
	CoreVersion  string
}

// FrameSize returns the byte length of one RGBA8 video frame.
func (s SystemInfo) FrameSize() int {
	return s.ScreenWidth * s.ScreenHeight * 4
}

// AspectRatio returns the display aspect ratio of the video frame.
func (s SystemInfo) AspectRatio() float64 {
	par := s.PixelAspect
	if par == 0 {
		par = 1
	}
	return DisplayAspectRatio(s.ScreenWidth, s.ScreenHeight, par)
}

// DisplayAspectRatio computes the display aspect ratio for a frame of the
// given pixel dimensions and pixel aspect ratio.
func DisplayAspectRatio(width, height int, par float64) float64 {
	if height == 0 {
		return 0
	}
	return float64(width) / float64(height) * par
}

// StandardButtons is the button layout of the standard controller with
// default bindings. Keyboard defaults put the d-pad on WASD and the face
// buttons around B/N/M/Space.
var StandardButtons = []Button{
	{ID: ButtonA, DefaultKey: "B", DefaultPad: "B"},
	{ID: ButtonB, DefaultKey: "Space", DefaultPad: "A"},
	{ID: ButtonX, DefaultKey: "N", DefaultPad: "Y"},
	{ID: ButtonY, DefaultKey: "M", DefaultPad: "X"},
	{ID: ButtonL, DefaultKey: "Q", DefaultPad: "L1"},
	{ID: ButtonR, DefaultKey: "E", DefaultPad: "R1"},
	{ID: ButtonSelect, DefaultKey: "F", DefaultPad: "Select"},
	{ID: ButtonStart, DefaultKey: "Enter", DefaultPad: "Start"},
	{ID: ButtonUp, DefaultKey: "W", DefaultPad: "DpadUp"},
	{ID: ButtonDown, DefaultKey: "S", DefaultPad: "DpadDown"},
	{ID: ButtonLeft, DefaultKey: "A", DefaultPad: "DpadLeft"},
	{ID: ButtonRight, DefaultKey: "D", DefaultPad: "DpadRight"},
}
