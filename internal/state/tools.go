package state

import "image/color"

const (
	MinLineWidth     = 1
	MaxLineWidth     = 20
	DefaultLineWidth = 5
	DefaultColor     = "white"
)

// Tools holds the colour/width/eraser configuration applied to new segments.
type Tools struct {
	StrokeColor  Swatch
	LineWidth    int
	EraserActive bool
}

func NewTools() Tools {
	s, _ := LookupSwatch(DefaultColor)
	return Tools{StrokeColor: s, LineWidth: DefaultLineWidth}
}

// SetLineWidth clamps n into [MinLineWidth, MaxLineWidth] and returns the stored value.
func (t *Tools) SetLineWidth(n int) int {
	switch {
	case n < MinLineWidth:
		n = MinLineWidth
	case n > MaxLineWidth:
		n = MaxLineWidth
	}
	t.LineWidth = n
	return n
}

// SelectColor also switches the eraser off.
func (t *Tools) SelectColor(s Swatch) {
	t.StrokeColor = s
	t.EraserActive = false
}

func (t *Tools) ToggleEraser() bool {
	t.EraserActive = !t.EraserActive
	return t.EraserActive
}

// PaintColor resolves the colour the next segment is painted with. The stored
// StrokeColor is left alone while the eraser overrides it.
func (t Tools) PaintColor() color.Color {
	if t.EraserActive {
		return Background
	}
	return t.StrokeColor.Color
}
