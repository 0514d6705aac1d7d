package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"
)

func TestNewToolsDefaults(t *testing.T) {
	tools := NewTools()
	assert.Equal(t, "white", tools.StrokeColor.Name)
	assert.Equal(t, DefaultLineWidth, tools.LineWidth)
	assert.False(t, tools.EraserActive)
}

func TestSetLineWidthClamps(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{12, 12},
		{20, 20},
		{21, 20},
		{500, 20},
	}
	for _, tt := range tests {
		tools := NewTools()
		got := tools.SetLineWidth(tt.in)
		assert.Equal(t, tt.want, got, "SetLineWidth(%d)", tt.in)
		assert.Equal(t, tt.want, tools.LineWidth)
	}
}

func TestSelectColorTurnsEraserOff(t *testing.T) {
	tools := NewTools()
	tools.ToggleEraser()
	require.True(t, tools.EraserActive)

	red, ok := LookupSwatch("red")
	require.True(t, ok)
	tools.SelectColor(red)

	assert.False(t, tools.EraserActive)
	assert.Equal(t, colornames.Red, tools.PaintColor())
}

func TestToggleEraserTwiceRestoresColor(t *testing.T) {
	tools := NewTools()
	blue, _ := LookupSwatch("blue")
	tools.SelectColor(blue)

	assert.True(t, tools.ToggleEraser())
	assert.Equal(t, Background, tools.PaintColor())
	assert.Equal(t, "blue", tools.StrokeColor.Name, "eraser must not touch the stored colour")

	assert.False(t, tools.ToggleEraser())
	assert.Equal(t, colornames.Blue, tools.PaintColor())
}

func TestPaletteHasNineUniqueColors(t *testing.T) {
	require.Len(t, Palette, 9)
	seen := map[string]bool{}
	for _, s := range Palette {
		assert.False(t, seen[s.Name], "duplicate swatch %s", s.Name)
		seen[s.Name] = true
	}
	_, ok := LookupSwatch("magenta")
	assert.False(t, ok)
}

func TestPointerStroke(t *testing.T) {
	var p Pointer
	tools := NewTools()

	_, ok := p.Move(Point{1, 1}, tools)
	assert.False(t, ok, "move while idle paints nothing")

	dot := p.Down(Point{10, 10}, tools)
	assert.Equal(t, Drawing, p.State())
	assert.Equal(t, dot.From, dot.To)

	seg, ok := p.Move(Point{20, 10}, tools)
	require.True(t, ok)
	assert.Equal(t, Point{10, 10}, seg.From)
	assert.Equal(t, Point{20, 10}, seg.To)
	assert.Equal(t, DefaultLineWidth, seg.Width)

	tools.SetLineWidth(9)
	tools.ToggleEraser()
	seg, ok = p.Move(Point{30, 15}, tools)
	require.True(t, ok)
	assert.Equal(t, Point{20, 10}, seg.From)
	assert.Equal(t, 9, seg.Width)
	assert.Equal(t, Background, seg.Color)

	assert.True(t, p.Up())
	assert.Equal(t, Idle, p.State())
}

func TestPointerUpWithoutDown(t *testing.T) {
	var p Pointer
	assert.False(t, p.Up())
	assert.False(t, p.Up())
	assert.Equal(t, Idle, p.State())
	assert.Equal(t, "idle", p.State().String())
}

func TestResultEmpty(t *testing.T) {
	assert.True(t, Result{}.Empty())
	assert.False(t, Result{Text: "x=5"}.Empty())
}
