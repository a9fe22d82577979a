package keyboard

import (
	"fmt"
	"sort"
)

// Named key tokens. Every other token is a single printable character.
const (
	TokenBackspace = "BACKSPACE"
	TokenSpace     = "SPACE"
	TokenShift     = "SHIFT"
	TokenEnter     = "ENTER"
)

// Built-in layout names.
const (
	LayoutQWERTY = "QWERTY"
	LayoutAZERTY = "AZERTY"
)

// Layout is a named, ordered table of key rows.
type Layout struct {
	Name string
	Rows [][]string
}

// DefaultLayouts returns the built-in QWERTY and AZERTY tables.
func DefaultLayouts() []Layout {
	return []Layout{
		{
			Name: LayoutQWERTY,
			Rows: [][]string{
				{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "-", "=", TokenBackspace},
				{"Q", "W", "E", "R", "T", "Y", "U", "I", "O", "P", "[", "]"},
				{"A", "S", "D", "F", "G", "H", "J", "K", "L", ";", "'", TokenEnter},
				{TokenShift, "Z", "X", "C", "V", "B", "N", "M", ",", ".", "/", TokenShift},
				{TokenSpace},
			},
		},
		{
			Name: LayoutAZERTY,
			Rows: [][]string{
				{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "-", "=", TokenBackspace},
				{"A", "Z", "E", "R", "T", "Y", "U", "I", "O", "P", "[", "]"},
				{"Q", "S", "D", "F", "G", "H", "J", "K", "L", "M", "'", TokenEnter},
				{TokenShift, "W", "X", "C", "V", "B", "N", ",", ";", ".", "/", TokenShift},
				{TokenSpace},
			},
		},
	}
}

// NormalizeToken maps alternate spellings onto the named tokens.
// "<-" and "BS" mean backspace; a single space means SPACE.
func NormalizeToken(token string) string {
	switch token {
	case "<-", "BS", "backspace", "Backspace":
		return TokenBackspace
	case " ", "space", "Space":
		return TokenSpace
	case "shift", "Shift":
		return TokenShift
	case "enter", "Enter", "\n":
		return TokenEnter
	}
	return token
}

// Validate checks the layout has a name, at least one key and only
// non-empty tokens.
func (l Layout) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("layout name is required")
	}
	keys := 0
	for i, row := range l.Rows {
		for j, token := range row {
			if token == "" {
				return fmt.Errorf("layout %s: empty token at row %d, column %d", l.Name, i, j)
			}
			keys++
		}
	}
	if keys == 0 {
		return fmt.Errorf("layout %s has no keys", l.Name)
	}
	return nil
}

// normalized returns a copy of the layout with canonical tokens.
func (l Layout) normalized() Layout {
	rows := make([][]string, len(l.Rows))
	for i, row := range l.Rows {
		rows[i] = make([]string, len(row))
		for j, token := range row {
			rows[i][j] = NormalizeToken(token)
		}
	}
	return Layout{Name: l.Name, Rows: rows}
}

// LayoutsFromTable converts a name to rows table, as found in configuration
// files, into layouts sorted by name.
func LayoutsFromTable(table map[string][][]string) []Layout {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	layouts := make([]Layout, 0, len(names))
	for _, name := range names {
		layouts = append(layouts, Layout{Name: name, Rows: table[name]})
	}
	return layouts
}

// Geometry describes where keys are placed, in pixels.
type Geometry struct {
	OriginX        float64
	OriginY        float64
	RowSpacing     float64
	Gap            float64
	KeyWidth       float64
	KeyHeight      float64
	SpaceWidth     float64
	BackspaceWidth float64
	ShiftWidth     float64
	EnterWidth     float64
}

// DefaultGeometry returns the placement used for a 1280x720 frame.
func DefaultGeometry() Geometry {
	return Geometry{
		OriginX:        40,
		OriginY:        180,
		RowSpacing:     85,
		Gap:            10,
		KeyWidth:       75,
		KeyHeight:      75,
		SpaceWidth:     500,
		BackspaceWidth: 110,
		ShiftWidth:     120,
		EnterWidth:     120,
	}
}

// Width returns the width of a key carrying token.
func (g Geometry) Width(token string) float64 {
	switch token {
	case TokenSpace:
		return g.SpaceWidth
	case TokenBackspace:
		return g.BackspaceWidth
	case TokenShift:
		return g.ShiftWidth
	case TokenEnter:
		return g.EnterWidth
	default:
		return g.KeyWidth
	}
}

// BuildKeys places every key of the layout. Keys in a row run left to right
// from OriginX separated by exactly Gap pixels; row i sits at
// i*RowSpacing + OriginY.
func BuildKeys(layout Layout, g Geometry) []*Key {
	var keys []*Key
	for i, row := range layout.Rows {
		x := g.OriginX
		y := float64(i)*g.RowSpacing + g.OriginY
		for _, token := range row {
			w := g.Width(token)
			keys = append(keys, newKey(x, y, w, g.KeyHeight, token))
			x += w + g.Gap
		}
	}
	return keys
}
