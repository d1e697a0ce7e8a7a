package emucore

import "strings"

// NumControllers is the number of controller ports presented to a core.
const NumControllers = 2

// ButtonID identifies one button of the standard controller. The value is
// also the bit position used by ControllerState.Bits.
type ButtonID int

const (
	ButtonA ButtonID = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonL
	ButtonR
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight

	// NumButtons is the number of ButtonID values.
	NumButtons = 12
)

var buttonNames = [NumButtons]string{
	"A", "B", "X", "Y", "L", "R", "Select", "Start", "Up", "Down", "Left", "Right",
}

// AllButtons lists every ButtonID in bit order.
var AllButtons = [NumButtons]ButtonID{
	ButtonA, ButtonB, ButtonX, ButtonY, ButtonL, ButtonR,
	ButtonSelect, ButtonStart, ButtonUp, ButtonDown, ButtonLeft, ButtonRight,
}

// Valid reports whether b is one of the defined buttons.
func (b ButtonID) Valid() bool {
	return b >= 0 && b < NumButtons
}

// String returns the display name of the button.
func (b ButtonID) String() string {
	if !b.Valid() {
		return "Unknown"
	}
	return buttonNames[b]
}

// ParseButton converts a button name (case-insensitive) to a ButtonID.
func ParseButton(name string) (ButtonID, bool) {
	for i, n := range buttonNames {
		if strings.EqualFold(n, name) {
			return ButtonID(i), true
		}
	}
	return 0, false
}

// ControllerState is the state of one standard controller. It is a plain
// value: a copy is an immutable snapshot.
type ControllerState struct {
	A, B, X, Y bool
	L, R       bool
	Select     bool
	Start      bool
	Up, Down   bool
	Left       bool
	Right      bool
}

// field returns a pointer to the bool backing id, or nil for an unknown id.
func (c *ControllerState) field(id ButtonID) *bool {
	switch id {
	case ButtonA:
		return &c.A
	case ButtonB:
		return &c.B
	case ButtonX:
		return &c.X
	case ButtonY:
		return &c.Y
	case ButtonL:
		return &c.L
	case ButtonR:
		return &c.R
	case ButtonSelect:
		return &c.Select
	case ButtonStart:
		return &c.Start
	case ButtonUp:
		return &c.Up
	case ButtonDown:
		return &c.Down
	case ButtonLeft:
		return &c.Left
	case ButtonRight:
		return &c.Right
	}
	return nil
}

// Set updates a single button. Unknown ids are ignored.
func (c *ControllerState) Set(id ButtonID, pressed bool) {
	if f := c.field(id); f != nil {
		*f = pressed
	}
}

// Pressed reports whether the button is held.
func (c ControllerState) Pressed(id ButtonID) bool {
	if f := c.field(id); f != nil {
		return *f
	}
	return false
}

// Bits returns the state as a bitmask with bit n set when ButtonID n is held.
func (c ControllerState) Bits() uint32 {
	var bits uint32
	for _, id := range AllButtons {
		if c.Pressed(id) {
			bits |= 1 << uint(id)
		}
	}
	return bits
}

// Input is everything a core receives for one frame.
type Input struct {
	Controllers [NumControllers]ControllerState
	Reset       bool
}
