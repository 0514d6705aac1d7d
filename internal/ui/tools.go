package ui

import (
	"context"
	"fmt"
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"mathsketch/internal/sketch"
	"mathsketch/internal/state"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Swatch   state.Swatch
	OnTapped func(state.Swatch)

	ring *canvas.Circle
}

func newColorSwatch(s state.Swatch, tapped func(state.Swatch)) *colorSwatch {
	sw := &colorSwatch{Swatch: s, OnTapped: tapped}
	sw.ring = canvas.NewCircle(color.Transparent)
	sw.ring.StrokeColor = color.White
	sw.ExtendBaseWidget(sw)
	return sw
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	dot := canvas.NewCircle(s.Swatch.Color)
	size := canvas.NewRectangle(color.Transparent)
	size.SetMinSize(fyne.NewSize(32, 32))
	return widget.NewSimpleRenderer(container.NewStack(size, dot, s.ring))
}

// SetSelected draws the white ring around the active colour.
func (s *colorSwatch) SetSelected(on bool) {
	var width float32
	if on {
		width = 2
	}
	if s.ring.StrokeWidth == width {
		return
	}
	s.ring.StrokeWidth = width
	s.ring.Refresh()
}

func (s *colorSwatch) Selected() bool { return s.ring.StrokeWidth > 0 }

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Swatch)
	}
}

// Overlay holds the controls drawn over the sketch. Refresh re-reads the view.
type Overlay struct {
	view *sketch.View

	// OnDetails and OnExport are wired by the window.
	OnDetails func()
	OnExport  func()

	swatches    []*colorSwatch
	slider      *widget.Slider
	thickness   *widget.Label
	eraser      *widget.Button
	reset       *widget.Button
	calculate   *widget.Button
	details     *widget.Button
	export      *widget.Button
	answer      *widget.Label
	answerPanel fyne.CanvasObject
	stopVoice   *widget.Button
	loading     fyne.CanvasObject

	content fyne.CanvasObject
}

func NewOverlay(v *sketch.View) *Overlay {
	o := &Overlay{view: v}

	// --- Color Palette ---
	for _, s := range state.Palette {
		o.swatches = append(o.swatches, newColorSwatch(s, func(s state.Swatch) {
			o.view.SelectColor(s)
			o.Refresh()
		}))
	}
	palette := container.NewVBox()
	for _, s := range o.swatches {
		palette.Add(s)
	}

	o.eraser = widget.NewButtonWithIcon("", theme.ContentClearIcon(), func() {
		o.view.ToggleEraser()
		o.Refresh()
	})

	// --- Stroke Width Slider ---
	o.slider = widget.NewSlider(state.MinLineWidth, state.MaxLineWidth)
	o.slider.Step = 1
	o.slider.SetValue(float64(v.Tools().LineWidth))
	o.thickness = widget.NewLabel("")
	o.slider.OnChanged = func(val float64) {
		o.view.SetLineWidth(int(val))
		o.Refresh()
	}
	sliderBox := container.NewVBox(
		container.New(layout.NewGridWrapLayout(fyne.NewSize(280, 35)), o.slider),
		o.thickness,
	)

	o.reset = widget.NewButton("Reset All", func() { o.view.Reset() })
	o.reset.Importance = widget.DangerImportance
	o.calculate = widget.NewButton("Calculate", o.Calculate)
	o.calculate.Importance = widget.HighImportance
	o.details = widget.NewButton("Details", func() {
		o.view.SetDetailsOpen(true)
		if o.OnDetails != nil {
			o.OnDetails()
		}
	})
	o.details.Importance = widget.WarningImportance
	o.export = widget.NewButtonWithIcon("Export PDF", theme.DocumentSaveIcon(), func() {
		if o.OnExport != nil {
			o.OnExport()
		}
	})

	o.answer = widget.NewLabel("")
	o.answer.Wrapping = fyne.TextWrapWord
	answerBg := canvas.NewRectangle(color.NRGBA{A: 204})
	answerBg.CornerRadius = 8
	answerBox := container.NewGridWrap(fyne.NewSize(640, 200), container.NewStack(answerBg, container.NewPadded(container.NewVScroll(o.answer))))
	o.answerPanel = container.NewCenter(answerBox)

	o.stopVoice = widget.NewButtonWithIcon("Stop AI Voice", theme.MediaPauseIcon(), func() {
		o.view.StopSpeech()
		o.Refresh()
	})
	o.stopVoice.Importance = widget.DangerImportance
	spinner := widget.NewActivity()
	spinner.Start()
	o.loading = container.NewHBox(spinner, widget.NewLabel("Processing your drawing..."))

	top := container.NewHBox(
		o.details,
		layout.NewSpacer(),
		sliderBox,
		layout.NewSpacer(),
		o.export,
		o.reset,
		o.calculate,
	)
	left := container.NewVBox(layout.NewSpacer(), o.eraser, palette, layout.NewSpacer())
	bottom := container.NewCenter(container.NewVBox(o.stopVoice, o.loading))
	o.content = container.NewBorder(top, bottom, left, nil, o.answerPanel)

	o.Refresh()
	return o
}

// Content is the control layer to stack over the sketch.
func (o *Overlay) Content() fyne.CanvasObject { return o.content }

// Calculate submits the sketch in the background. The button stays disabled
// until the answer is in.
func (o *Overlay) Calculate() {
	if o.view.Flags().Loading {
		return
	}
	go func() {
		if err := o.view.Submit(context.Background()); err != nil {
			log.Printf("[SUBMIT] Calculate: %v", err)
		}
	}()
}

// Refresh syncs every control with the view. Call it on the UI goroutine.
func (o *Overlay) Refresh() {
	tools := o.view.Tools()
	for _, s := range o.swatches {
		s.SetSelected(!tools.EraserActive && s.Swatch.Name == tools.StrokeColor.Name)
	}
	if tools.EraserActive {
		o.eraser.Importance = widget.HighImportance
	} else {
		o.eraser.Importance = widget.MediumImportance
	}
	o.eraser.Refresh()

	if int(o.slider.Value) != tools.LineWidth {
		o.slider.SetValue(float64(tools.LineWidth))
	}
	o.thickness.SetText(fmt.Sprintf("Thickness: %dpx", tools.LineWidth))

	flags := o.view.Flags()
	if flags.Loading {
		o.calculate.SetText("Calculating...")
		o.calculate.Disable()
		o.loading.Show()
	} else {
		o.calculate.SetText("Calculate")
		o.calculate.Enable()
		o.loading.Hide()
	}

	if r := o.view.Result(); r.Empty() {
		o.answerPanel.Hide()
	} else {
		o.answer.SetText(r.Text)
		o.answerPanel.Show()
	}

	if o.view.Speaking() {
		o.stopVoice.Show()
	} else {
		o.stopVoice.Hide()
	}
}
