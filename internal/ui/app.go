package ui

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"mathsketch/internal/export"
	"mathsketch/internal/sketch"
	"mathsketch/internal/speech"
	"mathsketch/internal/surface"
)

const detailsText = `Draw a mathematical expression on the canvas and press Calculate.
The sketch is sent to the analysis service; the answer is shown and read aloud.

Pick a colour on the left, change the thickness at the top,
use the eraser to fix mistakes and Reset All to start over.`

// Window is the assembled drawing window.
type Window struct {
	fyne.Window
	Sketch  *SketchWidget
	Overlay *Overlay
}

// NewWindow builds the drawing window for v on a. The view's and the
// announcer's change hooks are taken over to keep the controls in sync.
func NewWindow(a fyne.App, v *sketch.View, s *surface.Surface, announcer *speech.Announcer) *Window {
	w := a.NewWindow("MathSketch")
	w.Resize(fyne.NewSize(1024, 768))

	board := NewSketchWidget(v, s)
	overlay := NewOverlay(v)

	refresh := func() {
		fyne.Do(func() {
			board.raster.Refresh()
			overlay.Refresh()
		})
	}
	v.OnChange = refresh
	announcer.OnStateChange = func(speech.State) { refresh() }

	overlay.OnDetails = func() {
		d := dialog.NewInformation("Details", detailsText, w)
		d.SetOnClosed(func() { v.SetDetailsOpen(false) })
		d.Show()
	}
	overlay.OnExport = func() { exportDialog(w, v, s) }

	w.SetContent(container.NewStack(board, overlay.Content()))
	w.SetOnClosed(v.Close)
	return &Window{Window: w, Sketch: board, Overlay: overlay}
}

func exportDialog(w fyne.Window, v *sketch.View, s *surface.Surface) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if writer == nil {
			return // cancelled
		}
		path := writer.URI().Path()
		if err := writer.Close(); err != nil {
			log.Printf("[EXPORT] Error closing writer: %v", err)
		}

		sketchPNG, err := s.ExportRaster()
		if err == nil {
			err = export.ExportPDF(path, sketchPNG, v.Result().Text)
		}
		if err != nil {
			log.Printf("[EXPORT] %s: %v", path, err)
			dialog.ShowError(err, w)
			return
		}
		log.Printf("[EXPORT] Wrote %s", path)
	}, w)
	d.SetFileName("mathsketch.pdf")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	d.Show()
}

// RunApp opens the window and blocks until it is closed.
func RunApp(v *sketch.View, s *surface.Surface, announcer *speech.Announcer) {
	myApp := app.NewWithID("io.mathsketch.app")
	NewWindow(myApp, v, s, announcer).ShowAndRun()
}
