package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	emucore "github.com/user-none/snesfront/api"
)

// analogDeadzone is the stick deflection needed to count as a d-pad press.
const analogDeadzone = 0.25

// Source reports raw device state for a single poll.
type Source interface {
	KeyPressed(k ebiten.Key) bool
	// GamepadPressed reports false when no gamepad is connected.
	GamepadPressed(b ebiten.StandardGamepadButton) bool
	// LeftStick returns the left analog stick axes; ok is false when no
	// gamepad is connected.
	LeftStick() (x, y float64, ok bool)
}

// Sink receives button transitions.
type Sink interface {
	ApplyKeyTransition(id emucore.ButtonID, pressed bool)
}

// Poller converts device state into (button, pressed) transitions. A button
// is pressed when any source bound to it is active. Only changes since the
// previous poll are emitted.
type Poller struct {
	mapping       KeyMap
	disableAnalog bool
	last          [emucore.NumButtons]bool
}

// NewPoller creates a poller for mapping. When disableAnalog is true the
// left stick does not drive the d-pad.
func NewPoller(mapping KeyMap, disableAnalog bool) *Poller {
	return &Poller{mapping: mapping, disableAnalog: disableAnalog}
}

// Poll reads src and sends each transition to sink. Returns the number of
// transitions sent.
func (p *Poller) Poll(src Source, sink Sink) int {
	var cur [emucore.NumButtons]bool

	for id, key := range p.mapping.Keys {
		if src.KeyPressed(key) {
			cur[id] = true
		}
	}
	for id, padBtn := range p.mapping.Gamepad {
		if src.GamepadPressed(padBtn) {
			cur[id] = true
		}
	}
	if !p.disableAnalog {
		p.pollAnalogStick(&cur, src)
	}

	n := 0
	for _, id := range emucore.AllButtons {
		if cur[id] != p.last[id] {
			sink.ApplyKeyTransition(id, cur[id])
			n++
		}
	}
	p.last = cur
	return n
}

// Forget drops the remembered state so the next poll re-emits every held
// button. Used after the sink was released externally.
func (p *Poller) Forget() {
	p.last = [emucore.NumButtons]bool{}
}

// pollAnalogStick sets the buttons the d-pad is mapped to from the left
// stick, so the stick follows any d-pad remapping.
func (p *Poller) pollAnalogStick(cur *[emucore.NumButtons]bool, src Source) {
	axisX, axisY, ok := src.LeftStick()
	if !ok {
		return
	}

	for id, padBtn := range p.mapping.Gamepad {
		switch padBtn {
		case ebiten.StandardGamepadButtonLeftLeft:
			if axisX < -analogDeadzone {
				cur[id] = true
			}
		case ebiten.StandardGamepadButtonLeftRight:
			if axisX > analogDeadzone {
				cur[id] = true
			}
		case ebiten.StandardGamepadButtonLeftTop:
			if axisY < -analogDeadzone {
				cur[id] = true
			}
		case ebiten.StandardGamepadButtonLeftBottom:
			if axisY > analogDeadzone {
				cur[id] = true
			}
		}
	}
}

// EbitenSource reads the live ebiten keyboard and the first connected
// standard-layout gamepad. Must only be used from ebiten's Update.
type EbitenSource struct {
	gamepadID  ebiten.GamepadID
	hasGamepad bool
	ids        []ebiten.GamepadID
}

// Refresh selects the gamepad to read. Call once per Update before Poll.
func (s *EbitenSource) Refresh() {
	s.ids = ebiten.AppendGamepadIDs(s.ids[:0])
	s.hasGamepad = false
	for _, id := range s.ids {
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			s.gamepadID = id
			s.hasGamepad = true
			return
		}
	}
}

// KeyPressed implements Source.
func (s *EbitenSource) KeyPressed(k ebiten.Key) bool {
	return ebiten.IsKeyPressed(k)
}

// GamepadPressed implements Source.
func (s *EbitenSource) GamepadPressed(b ebiten.StandardGamepadButton) bool {
	if !s.hasGamepad {
		return false
	}
	return ebiten.IsStandardGamepadButtonPressed(s.gamepadID, b)
}

// LeftStick implements Source.
func (s *EbitenSource) LeftStick() (float64, float64, bool) {
	if !s.hasGamepad {
		return 0, 0, false
	}
	x := ebiten.StandardGamepadAxisValue(s.gamepadID, ebiten.StandardGamepadAxisLeftStickHorizontal)
	y := ebiten.StandardGamepadAxisValue(s.gamepadID, ebiten.StandardGamepadAxisLeftStickVertical)
	return x, y, true
}
