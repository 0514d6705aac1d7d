package state

import (
	"image/color"

	"golang.org/x/image/colornames"
)

type Point struct{ X, Y float32 }

// Background is the surface fill, rgba(17, 17, 17, 0.99). The eraser paints with it.
var Background = color.NRGBA{R: 17, G: 17, B: 17, A: 252}

// Swatch is one entry of the fixed colour palette.
type Swatch struct {
	Name  string
	Color color.Color
}

// Palette lists the selectable stroke colours in display order.
var Palette = []Swatch{
	{"red", colornames.Red},
	{"green", colornames.Green},
	{"blue", colornames.Blue},
	{"yellow", colornames.Yellow},
	{"orange", colornames.Orange},
	{"purple", colornames.Purple},
	{"black", colornames.Black},
	{"white", colornames.White},
	{"brown", colornames.Brown},
}

// LookupSwatch returns the palette entry with the given name.
func LookupSwatch(name string) (Swatch, bool) {
	for _, s := range Palette {
		if s.Name == name {
			return s, true
		}
	}
	return Swatch{}, false
}

// Result is the text shown in the answer panel after a submission.
type Result struct {
	Text    string
	IsError bool
}

// Empty reports whether there is nothing to show.
func (r Result) Empty() bool { return r.Text == "" }

// Flags are the view-level switches the overlay binds to.
type Flags struct {
	Loading   bool
	ModalOpen bool
}
