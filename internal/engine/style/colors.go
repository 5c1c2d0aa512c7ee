package style

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Colors are the natural render colors of a style.
type Colors struct {
	Foreground tcell.Color
	Background tcell.Color
	Underline  bool
}

// Style converts the colors into a terminal style.
func (c Colors) Style() tcell.Style {
	st := tcell.StyleDefault.Foreground(c.Foreground).Background(c.Background)
	if c.Underline {
		st = st.Underline(true)
	}
	return st
}

// ParseColor parses a "#rrggbb" color. An empty string yields the default
// color.
func ParseColor(s string) (tcell.Color, error) {
	if s == "" {
		return tcell.ColorDefault, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b)), nil
}

// Tint blends c towards white by amount (0 keeps c, 1 yields white).
// Non RGB colors are returned unchanged.
func Tint(c tcell.Color, amount float64) tcell.Color {
	r, g, b := c.RGB()
	if r < 0 {
		return c
	}
	base := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	white := colorful.Color{R: 1, G: 1, B: 1}
	out := base.BlendRgb(white, amount).Clamped()
	nr, ng, nb := out.RGB255()
	return tcell.NewRGBColor(int32(nr), int32(ng), int32(nb))
}
