package keyboard

import "github.com/ayusman/airtype/internal/hand"

// Press animation rates per frame.
const (
	pressAnimRise  = 0.2
	pressAnimDecay = 0.15
)

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether p lies strictly inside the rectangle.
func (r Rect) Contains(p hand.Point) bool {
	return r.X < p.X && p.X < r.X+r.W && r.Y < p.Y && p.Y < r.Y+r.H
}

// Key is one key of the virtual keyboard with its per-slot hover and press
// state.
type Key struct {
	Rect
	Token string

	hovered   [hand.NumSlots]bool
	pressed   [hand.NumSlots]bool
	pressAnim float64
}

func newKey(x, y, w, h float64, token string) *Key {
	return &Key{Rect: Rect{X: x, Y: y, W: w, H: h}, Token: token}
}

// track updates the key for one slot and reports whether the slot pressed
// it this frame after not pressing it on the previous one.
func (k *Key) track(slot hand.Slot, state hand.State) bool {
	wasPressed := k.pressed[slot]

	k.hovered[slot] = state.Cursor != nil && k.Contains(*state.Cursor)
	k.pressed[slot] = k.hovered[slot] && state.Clicking

	return !wasPressed && k.pressed[slot]
}

// animate advances the press animation by one frame.
func (k *Key) animate() {
	if k.Pressed() {
		k.pressAnim = min(1.0, k.pressAnim+pressAnimRise)
	} else {
		k.pressAnim = max(0.0, k.pressAnim-pressAnimDecay)
	}
}

// Hovered reports whether any slot hovers the key.
func (k *Key) Hovered() bool {
	return k.hovered[hand.Left] || k.hovered[hand.Right]
}

// Pressed reports whether any slot presses the key.
func (k *Key) Pressed() bool {
	return k.pressed[hand.Left] || k.pressed[hand.Right]
}

// hoveredBy reports whether the given slot hovers the key.
func (k *Key) hoveredBy(slot hand.Slot) bool {
	return k.hovered[slot]
}

// pressedBy reports whether the given slot presses the key.
func (k *Key) pressedBy(slot hand.Slot) bool {
	return k.pressed[slot]
}

// PressAnim returns the press animation level in [0,1].
func (k *Key) PressAnim() float64 {
	return k.pressAnim
}

// Label returns the text a renderer should draw on the key.
func Label(token string) string {
	switch token {
	case TokenBackspace:
		return "BS"
	case TokenSpace:
		return "SPACE"
	case TokenShift:
		return "⇧"
	case TokenEnter:
		return "↵"
	default:
		return token
	}
}

// KeyState is a render snapshot of a key.
type KeyState struct {
	Rect
	Token     string  `json:"token"`
	Label     string  `json:"label"`
	Hovered   bool    `json:"hovered"`
	Pressed   bool    `json:"pressed"`
	PressAnim float64 `json:"press_anim"`
}

// State returns the render snapshot of the key.
func (k *Key) State() KeyState {
	return KeyState{
		Rect:      k.Rect,
		Token:     k.Token,
		Label:     Label(k.Token),
		Hovered:   k.Hovered(),
		Pressed:   k.Pressed(),
		PressAnim: k.pressAnim,
	}
}
