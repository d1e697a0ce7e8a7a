package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	emucore "github.com/user-none/snesfront/api"
)

// KeyMap maps controller buttons to ebiten input types.
type KeyMap struct {
	Keys    map[emucore.ButtonID]ebiten.Key                   // button -> keyboard key
	Gamepad map[emucore.ButtonID]ebiten.StandardGamepadButton // button -> gamepad button
}

// keyNameMap maps short key name strings to ebiten.Key values.
var keyNameMap = map[string]ebiten.Key{
	"A":          ebiten.KeyA,
	"B":          ebiten.KeyB,
	"C":          ebiten.KeyC,
	"D":          ebiten.KeyD,
	"E":          ebiten.KeyE,
	"F":          ebiten.KeyF,
	"G":          ebiten.KeyG,
	"H":          ebiten.KeyH,
	"I":          ebiten.KeyI,
	"J":          ebiten.KeyJ,
	"K":          ebiten.KeyK,
	"L":          ebiten.KeyL,
	"M":          ebiten.KeyM,
	"N":          ebiten.KeyN,
	"O":          ebiten.KeyO,
	"P":          ebiten.KeyP,
	"Q":          ebiten.KeyQ,
	"R":          ebiten.KeyR,
	"S":          ebiten.KeyS,
	"T":          ebiten.KeyT,
	"U":          ebiten.KeyU,
	"V":          ebiten.KeyV,
	"W":          ebiten.KeyW,
	"X":          ebiten.KeyX,
	"Y":          ebiten.KeyY,
	"Z":          ebiten.KeyZ,
	"0":          ebiten.Key0,
	"1":          ebiten.Key1,
	"2":          ebiten.Key2,
	"3":          ebiten.Key3,
	"4":          ebiten.Key4,
	"5":          ebiten.Key5,
	"6":          ebiten.Key6,
	"7":          ebiten.Key7,
	"8":          ebiten.Key8,
	"9":          ebiten.Key9,
	"Enter":      ebiten.KeyEnter,
	"Backspace":  ebiten.KeyBackspace,
	"Space":      ebiten.KeySpace,
	"Semicolon":  ebiten.KeySemicolon,
	"Comma":      ebiten.KeyComma,
	"Period":     ebiten.KeyPeriod,
	"Slash":      ebiten.KeySlash,
	"Tab":        ebiten.KeyTab,
	"Escape":     ebiten.KeyEscape,
	"Shift":      ebiten.KeyShift,
	"ArrowUp":    ebiten.KeyArrowUp,
	"ArrowDown":  ebiten.KeyArrowDown,
	"ArrowLeft":  ebiten.KeyArrowLeft,
	"ArrowRight": ebiten.KeyArrowRight,
	"[":          ebiten.KeyLeftBracket,
	"]":          ebiten.KeyRightBracket,
	"-":          ebiten.KeyMinus,
	"=":          ebiten.KeyEqual,
	"'":          ebiten.KeyApostrophe,
	"F1":         ebiten.KeyF1,
	"F2":         ebiten.KeyF2,
	"F3":         ebiten.KeyF3,
	"F4":         ebiten.KeyF4,
	"F5":         ebiten.KeyF5,
	"F6":         ebiten.KeyF6,
	"F7":         ebiten.KeyF7,
	"F8":         ebiten.KeyF8,
	"F9":         ebiten.KeyF9,
	"F10":        ebiten.KeyF10,
	"F11":        ebiten.KeyF11,
	"F12":        ebiten.KeyF12,
}

// padNameMap maps gamepad button name strings to ebiten StandardGamepadButton values.
var padNameMap = map[string]ebiten.StandardGamepadButton{
	"A":         ebiten.StandardGamepadButtonRightBottom,
	"B":         ebiten.StandardGamepadButtonRightRight,
	"X":         ebiten.StandardGamepadButtonRightLeft,
	"Y":         ebiten.StandardGamepadButtonRightTop,
	"L1":        ebiten.StandardGamepadButtonFrontTopLeft,
	"R1":        ebiten.StandardGamepadButtonFrontTopRight,
	"L2":        ebiten.StandardGamepadButtonFrontBottomLeft,
	"R2":        ebiten.StandardGamepadButtonFrontBottomRight,
	"Start":     ebiten.StandardGamepadButtonCenterRight,
	"Select":    ebiten.StandardGamepadButtonCenterLeft,
	"DpadUp":    ebiten.StandardGamepadButtonLeftTop,
	"DpadDown":  ebiten.StandardGamepadButtonLeftBottom,
	"DpadLeft":  ebiten.StandardGamepadButtonLeftLeft,
	"DpadRight": ebiten.StandardGamepadButtonLeftRight,
	"L3":        ebiten.StandardGamepadButtonLeftStick,
	"R3":        ebiten.StandardGamepadButtonRightStick,
}

// reservedKeys are keyboard keys used by the front-end itself. These cannot
// be assigned as button bindings.
var reservedKeys = map[ebiten.Key]bool{
	ebiten.KeyEscape:  true, // Quit
	ebiten.KeyTab:     true, // Diagnostics overlay
	ebiten.KeyP:       true, // Pause
	ebiten.KeyF11:     true, // Fullscreen
	ebiten.KeyF12:     true, // Screenshot
	ebiten.KeyShift:   true,
	ebiten.KeyControl: true,
	ebiten.KeyAlt:     true,
	ebiten.KeyMeta:    true,
}

// Reverse lookup maps (built from keyNameMap/padNameMap at init).
var keyToName map[ebiten.Key]string
var padToName map[ebiten.StandardGamepadButton]string

func init() {
	keyToName = make(map[ebiten.Key]string, len(keyNameMap))
	for name, key := range keyNameMap {
		keyToName[key] = name
	}
	padToName = make(map[ebiten.StandardGamepadButton]string, len(padNameMap))
	for name, btn := range padNameMap {
		padToName[btn] = name
	}
}

// KeyToName converts an ebiten.Key to its name string.
func KeyToName(k ebiten.Key) (string, bool) {
	name, ok := keyToName[k]
	return name, ok
}

// PadToName converts an ebiten.StandardGamepadButton to its name string.
func PadToName(b ebiten.StandardGamepadButton) (string, bool) {
	name, ok := padToName[b]
	return name, ok
}

// IsReservedKey returns true if the key is reserved for front-end functions.
func IsReservedKey(k ebiten.Key) bool {
	return reservedKeys[k]
}

// ParseKey converts a key name string to an ebiten.Key.
// Returns the key and true if the name is valid, or 0 and false otherwise.
func ParseKey(name string) (ebiten.Key, bool) {
	k, ok := keyNameMap[name]
	return k, ok
}

// ParsePad converts a gamepad button name string to an ebiten.StandardGamepadButton.
// Returns the button and true if the name is valid, or 0 and false otherwise.
func ParsePad(name string) (ebiten.StandardGamepadButton, bool) {
	b, ok := padNameMap[name]
	return b, ok
}

// BuildDefaultMapping creates a KeyMap from the given button definitions.
// Keys that conflict with reserved keys are skipped.
func BuildDefaultMapping(buttons []emucore.Button) KeyMap {
	return BuildMappingFromConfig(buttons, nil, nil)
}

// BuildMappingFromConfig creates a KeyMap using config overrides with the
// button defaults as fallback. Overrides are keyed by button name
// (ButtonID.String()). An override naming an unknown or reserved key leaves
// the button unbound on that device.
func BuildMappingFromConfig(buttons []emucore.Button, kbOverrides, padOverrides map[string]string) KeyMap {
	m := KeyMap{
		Keys:    make(map[emucore.ButtonID]ebiten.Key),
		Gamepad: make(map[emucore.ButtonID]ebiten.StandardGamepadButton),
	}

	for _, btn := range buttons {
		if !btn.ID.Valid() {
			continue
		}
		name := btn.ID.String()

		// Keyboard
		if override, ok := kbOverrides[name]; ok {
			if k, ok := ParseKey(override); ok && !reservedKeys[k] {
				m.Keys[btn.ID] = k
			}
		} else if btn.DefaultKey != "" {
			if k, ok := ParseKey(btn.DefaultKey); ok && !reservedKeys[k] {
				m.Keys[btn.ID] = k
			}
		}

		// Controller
		if override, ok := padOverrides[name]; ok {
			if b, ok := ParsePad(override); ok {
				m.Gamepad[btn.ID] = b
			}
		} else if btn.DefaultPad != "" {
			if b, ok := ParsePad(btn.DefaultPad); ok {
				m.Gamepad[btn.ID] = b
			}
		}
	}

	return m
}

// ValidateOverrides returns a description of every override that names an
// unknown button, an unknown key or pad button, or a reserved key.
func ValidateOverrides(kbOverrides, padOverrides map[string]string) []string {
	var problems []string
	for btn, key := range kbOverrides {
		if _, ok := emucore.ParseButton(btn); !ok {
			problems = append(problems, "unknown button "+btn+" in keyboard bindings")
			continue
		}
		k, ok := ParseKey(key)
		if !ok {
			problems = append(problems, "unknown key "+key+" bound to "+btn)
		} else if reservedKeys[k] {
			problems = append(problems, "reserved key "+key+" bound to "+btn)
		}
	}
	for btn, pad := range padOverrides {
		if _, ok := emucore.ParseButton(btn); !ok {
			problems = append(problems, "unknown button "+btn+" in controller bindings")
			continue
		}
		if _, ok := ParsePad(pad); !ok {
			problems = append(problems, "unknown controller button "+pad+" bound to "+btn)
		}
	}
	return problems
}
