// Package keyboard implements the dual-cursor virtual keyboard: hit testing,
// per-hand debounce, same-key arbitration and the typed text buffer.
package keyboard

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/ayusman/airtype/internal/hand"
)

// ErrNoLayouts is returned by New when no layout is supplied.
var ErrNoLayouts = errors.New("no keyboard layouts configured")

var shiftMap = map[rune]rune{
	'1': '!', '2': '@', '3': '#', '4': '$', '5': '%',
	'6': '^', '7': '&', '8': '*', '9': '(', '0': ')',
	'-': '_', '=': '+', '[': '{', ']': '}',
	';': ':', '\'': '"', ',': '<', '.': '>', '/': '?',
}

// Commit is one key activation.
type Commit struct {
	Slot  hand.Slot `json:"slot"`
	Token string    `json:"token"`
	// Char is the text effect: the appended character, "\n" for enter,
	// TokenBackspace for a backspace that removed a rune, or empty when
	// the buffer did not change.
	Char string `json:"char,omitempty"`
}

// Result holds the commits of one Update, in the order they were applied.
type Result struct {
	Commits []Commit
}

// First returns the first character produced this frame.
func (r Result) First() (string, bool) {
	for _, c := range r.Commits {
		if c.Char != "" {
			return c.Char, true
		}
	}
	return "", false
}

// Chars returns every character produced this frame in commit order.
func (r Result) Chars() []string {
	var chars []string
	for _, c := range r.Commits {
		if c.Char != "" {
			chars = append(chars, c.Char)
		}
	}
	return chars
}

// Zone is a half of the key block used by smart zones.
type Zone string

const (
	ZoneNone  Zone = ""
	ZoneLeft  Zone = "left"
	ZoneRight Zone = "right"
)

// Keyboard is the virtual keyboard state machine. It is not safe for
// concurrent use.
type Keyboard struct {
	layouts  map[string]Layout
	order    []string
	geometry Geometry

	layout string
	keys   []*Key

	text          []rune
	shift         bool
	lastCommitted [hand.NumSlots]string
}

// New builds a keyboard from the given layouts, starting on the named one.
func New(layouts []Layout, geometry Geometry, initial string) (*Keyboard, error) {
	if len(layouts) == 0 {
		return nil, ErrNoLayouts
	}

	kb := &Keyboard{
		layouts:  make(map[string]Layout, len(layouts)),
		geometry: geometry,
	}
	for _, l := range layouts {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if _, dup := kb.layouts[l.Name]; dup {
			return nil, fmt.Errorf("duplicate layout %s", l.Name)
		}
		kb.layouts[l.Name] = l.normalized()
		kb.order = append(kb.order, l.Name)
	}

	if initial == "" {
		initial = kb.order[0]
	}
	if !kb.ChangeLayout(initial) {
		return nil, fmt.Errorf("unknown layout %s", initial)
	}
	return kb, nil
}

// Update hit-tests both cursors against every key, then applies commits
// slot by slot: every commit of the left hand lands before any of the
// right hand's.
func (kb *Keyboard) Update(left, right hand.State) Result {
	states := [hand.NumSlots]hand.State{left, right}
	newly := make([][hand.NumSlots]bool, len(kb.keys))

	for i, key := range kb.keys {
		for _, slot := range hand.Slots {
			newly[i][slot] = key.track(slot, states[slot])
		}
		key.animate()
	}

	var res Result
	for _, slot := range hand.Slots {
		clicking := states[slot].Clicking
		for i, key := range kb.keys {
			if !newly[i][slot] {
				continue
			}
			if key.Token == kb.lastCommitted[slot] && clicking {
				continue
			}
			if slot == hand.Right && key.Token == kb.lastCommitted[hand.Left] && states[hand.Left].Clicking {
				// Left already committed this key.
				kb.lastCommitted[slot] = key.Token
				continue
			}
			res.Commits = append(res.Commits, Commit{
				Slot:  slot,
				Token: key.Token,
				Char:  kb.press(key.Token),
			})
			kb.lastCommitted[slot] = key.Token
		}
	}

	for _, slot := range hand.Slots {
		if !states[slot].Clicking {
			kb.lastCommitted[slot] = ""
		}
	}
	return res
}

func (kb *Keyboard) press(token string) string {
	switch token {
	case TokenShift:
		kb.shift = !kb.shift
		return ""
	case TokenEnter:
		kb.text = append(kb.text, '\n')
		return "\n"
	case TokenBackspace:
		if len(kb.text) == 0 {
			return ""
		}
		kb.text = kb.text[:len(kb.text)-1]
		return TokenBackspace
	case TokenSpace:
		kb.shift = false
		kb.text = append(kb.text, ' ')
		return " "
	}

	char := kb.printable(token)
	kb.text = append(kb.text, []rune(char)...)
	return char
}

// printable resolves a character token against the shift state. Letters
// are shown upper case on the keycaps but commit lower case unless shifted.
// Any printable commit consumes an armed shift.
func (kb *Keyboard) printable(token string) string {
	shifted := kb.shift
	kb.shift = false

	r, size := utf8.DecodeRuneInString(token)
	if size != len(token) {
		return token
	}
	if !shifted {
		return string(unicode.ToLower(r))
	}

	if unicode.IsLetter(r) {
		return string(unicode.ToUpper(r))
	}
	if shifted, ok := shiftMap[r]; ok {
		return string(shifted)
	}
	return token
}

// ChangeLayout rebuilds the keys from the named layout. Text, shift and
// debounce state are kept. Unknown names leave the keyboard unchanged.
func (kb *Keyboard) ChangeLayout(name string) bool {
	layout, ok := kb.layouts[name]
	if !ok {
		return false
	}
	kb.layout = name
	kb.keys = BuildKeys(layout, kb.geometry)
	return true
}

// NextLayout switches to the layout after the current one, wrapping around,
// and returns its name.
func (kb *Keyboard) NextLayout() string {
	for i, name := range kb.order {
		if name == kb.layout {
			next := kb.order[(i+1)%len(kb.order)]
			kb.ChangeLayout(next)
			return next
		}
	}
	return kb.layout
}

// LayoutName returns the active layout name.
func (kb *Keyboard) LayoutName() string {
	return kb.layout
}

// Layouts returns the known layout names in configuration order.
func (kb *Keyboard) Layouts() []string {
	return append([]string(nil), kb.order...)
}

// Keys returns the live keys in layout order.
func (kb *Keyboard) Keys() []*Key {
	return kb.keys
}

// KeyStates returns render snapshots of every key.
func (kb *Keyboard) KeyStates() []KeyState {
	states := make([]KeyState, len(kb.keys))
	for i, k := range kb.keys {
		states[i] = k.State()
	}
	return states
}

// Text returns the typed text.
func (kb *Keyboard) Text() string {
	return string(kb.text)
}

// SetText replaces the typed text.
func (kb *Keyboard) SetText(text string) {
	kb.text = []rune(text)
}

// ClearText empties the typed text.
func (kb *Keyboard) ClearText() {
	kb.text = kb.text[:0]
}

// ShiftActive reports whether the one-shot shift is armed.
func (kb *Keyboard) ShiftActive() bool {
	return kb.shift
}

// Bounds returns the rectangle enclosing every key.
func (kb *Keyboard) Bounds() Rect {
	if len(kb.keys) == 0 {
		return Rect{}
	}
	minX, minY := kb.keys[0].X, kb.keys[0].Y
	maxX, maxY := minX+kb.keys[0].W, minY+kb.keys[0].H
	for _, k := range kb.keys[1:] {
		minX = min(minX, k.X)
		minY = min(minY, k.Y)
		maxX = max(maxX, k.X+k.W)
		maxY = max(maxY, k.Y+k.H)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Zone reports which half of the key block p falls in.
func (kb *Keyboard) Zone(p hand.Point) Zone {
	b := kb.Bounds()
	if !b.Contains(p) {
		return ZoneNone
	}
	if p.X < b.X+b.W/2 {
		return ZoneLeft
	}
	return ZoneRight
}
