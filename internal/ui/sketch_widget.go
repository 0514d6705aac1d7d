package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"mathsketch/internal/sketch"
	"mathsketch/internal/state"
	"mathsketch/internal/surface"
)

// SketchWidget shows the surface and feeds mouse input into the view.
type SketchWidget struct {
	widget.BaseWidget
	view    *sketch.View
	surface *surface.Surface
	raster  *canvas.Raster
}

var _ fyne.Widget = (*SketchWidget)(nil)
var _ fyne.Draggable = (*SketchWidget)(nil)
var _ desktop.Mouseable = (*SketchWidget)(nil)
var _ desktop.Hoverable = (*SketchWidget)(nil)

func NewSketchWidget(v *sketch.View, s *surface.Surface) *SketchWidget {
	w := &SketchWidget{view: v, surface: s}
	w.raster = canvas.NewRaster(func(int, int) image.Image {
		return s.Image()
	})
	w.ExtendBaseWidget(w)
	return w
}

// Resize recreates the surface for the new size, which clears it.
func (w *SketchWidget) Resize(size fyne.Size) {
	if size == w.Size() {
		return
	}
	w.BaseWidget.Resize(size)
	w.view.Resize(int(size.Width), int(size.Height))
	w.raster.Refresh()
}

// local converts an event to surface coordinates by subtracting the widget's
// on-screen origin from the absolute pointer position.
func (w *SketchWidget) local(e *fyne.PointEvent) state.Point {
	var origin fyne.Position
	if app := fyne.CurrentApp(); app != nil {
		origin = app.Driver().AbsolutePositionForObject(w)
	}
	return state.Point{X: e.AbsolutePosition.X - origin.X, Y: e.AbsolutePosition.Y - origin.Y}
}

func (w *SketchWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.view.PointerDown(w.local(&e.PointEvent))
	w.raster.Refresh()
}

func (w *SketchWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		w.view.PointerUp()
	}
}

func (w *SketchWidget) Dragged(e *fyne.DragEvent) {
	w.move(&e.PointEvent)
}

func (w *SketchWidget) MouseMoved(e *desktop.MouseEvent) {
	w.move(&e.PointEvent)
}

func (w *SketchWidget) move(e *fyne.PointEvent) {
	if w.view.PointerState() != state.Drawing {
		return
	}
	w.view.PointerMove(w.local(e))
	w.raster.Refresh()
}

func (w *SketchWidget) DragEnd() { w.view.PointerUp() }

func (w *SketchWidget) MouseIn(*desktop.MouseEvent) {}
func (w *SketchWidget) MouseOut()                   {}

func (w *SketchWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(w.raster)
}

// MinSize keeps the canvas usable when the window is shrunk.
func (w *SketchWidget) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}
