// Package sketch is the drawing view: it routes pointer input into the
// surface, applies tool changes and runs the submit/announce flow.
package sketch

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"mathsketch/internal/analysis"
	"mathsketch/internal/speech"
	"mathsketch/internal/state"
)

// ConnectFailedText is shown when the request could not complete.
const ConnectFailedText = "Failed to connect to server"

var (
	ErrBusy   = errors.New("submission already in flight")
	ErrClosed = errors.New("view closed")
)

// Canvas is the raster the view paints into.
type Canvas interface {
	Initialize(w, h int)
	PaintSegment(from, to state.Point, c color.Color, width int)
	Clear()
	Clamp(p state.Point) state.Point
	DataURL() (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (string, error)
}

type Announcer interface {
	Announce(text string)
	Stop()
	State() speech.State
	Close()
}

// Submission is one finished Calculate round, handed to OnResult.
type Submission struct {
	ID     string
	Result state.Result
	At     time.Time
}

// View owns all drawing state. Pointer handlers may run on the UI goroutine
// while Submit runs on another; the mutex is never held while calling out.
type View struct {
	canvas   Canvas
	analyzer Analyzer
	speaker  Announcer
	prompt   string

	// OnChange fires after any state the overlay shows has changed.
	OnChange func()
	// OnResult receives every finished submission.
	OnResult func(Submission)

	mu      sync.Mutex
	tools   state.Tools
	pointer state.Pointer
	result  state.Result
	flags   state.Flags
	closed  bool
}

type Option func(*View)

// WithPrompt overrides the instruction sent along with the image.
func WithPrompt(p string) Option { return func(v *View) { v.prompt = p } }

func New(canvas Canvas, analyzer Analyzer, speaker Announcer, opts ...Option) *View {
	v := &View{
		canvas:   canvas,
		analyzer: analyzer,
		speaker:  speaker,
		prompt:   analysis.DefaultPrompt,
		tools:    state.NewTools(),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

func (v *View) changed() {
	if v.OnChange != nil {
		v.OnChange()
	}
}

func (v *View) Tools() state.Tools {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tools
}

func (v *View) Result() state.Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

func (v *View) Flags() state.Flags {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.flags
}

func (v *View) PointerState() state.PointerState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pointer.State()
}

func (v *View) Speaking() bool { return v.speaker.State() == speech.Speaking }

// PointerDown starts a stroke at p (surface-local) and leaves a dot.
func (v *View) PointerDown(p state.Point) {
	v.mu.Lock()
	seg := v.pointer.Down(v.canvas.Clamp(p), v.tools)
	v.canvas.PaintSegment(seg.From, seg.To, seg.Color, seg.Width)
	v.mu.Unlock()
	v.changed()
}

// PointerMove extends the open stroke; it does nothing while Idle.
func (v *View) PointerMove(p state.Point) {
	v.mu.Lock()
	seg, ok := v.pointer.Move(v.canvas.Clamp(p), v.tools)
	if ok {
		v.canvas.PaintSegment(seg.From, seg.To, seg.Color, seg.Width)
	}
	v.mu.Unlock()
	if ok {
		v.changed()
	}
}

func (v *View) PointerUp() {
	v.mu.Lock()
	v.pointer.Up()
	v.mu.Unlock()
}

// SetLineWidth clamps n into [1,20] and returns the stored width.
func (v *View) SetLineWidth(n int) int {
	v.mu.Lock()
	n = v.tools.SetLineWidth(n)
	v.mu.Unlock()
	v.changed()
	return n
}

func (v *View) SelectColor(s state.Swatch) {
	v.mu.Lock()
	v.tools.SelectColor(s)
	v.mu.Unlock()
	v.changed()
}

func (v *View) ToggleEraser() bool {
	v.mu.Lock()
	on := v.tools.ToggleEraser()
	v.mu.Unlock()
	v.changed()
	return on
}

// Reset clears the surface and the answer and silences speech.
func (v *View) Reset() {
	v.mu.Lock()
	v.canvas.Clear()
	v.result = state.Result{}
	v.mu.Unlock()
	v.speaker.Stop()
	v.changed()
}

// Resize recreates the surface for the new viewport. An open stroke is ended
// and everything is reset; strokes are not preserved.
func (v *View) Resize(w, h int) {
	v.mu.Lock()
	v.canvas.Initialize(w, h)
	v.pointer.Up()
	v.mu.Unlock()
	v.Reset()
}

func (v *View) SetDetailsOpen(open bool) {
	v.mu.Lock()
	v.flags.ModalOpen = open
	v.mu.Unlock()
	v.changed()
}

func (v *View) StopSpeech() { v.speaker.Stop() }

// Submit exports the surface, sends it for analysis and shows and speaks the
// answer. It blocks until the service replies and returns ErrBusy while
// another submission is in flight. The loading flag is cleared exactly once
// on every path.
func (v *View) Submit(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.flags.Loading {
		v.mu.Unlock()
		return ErrBusy
	}
	image, err := v.canvas.DataURL()
	if err != nil {
		v.mu.Unlock()
		return fmt.Errorf("export surface: %w", err)
	}
	v.flags.Loading = true
	v.result = state.Result{}
	prompt := v.prompt
	v.mu.Unlock()
	v.changed()

	id := uuid.NewString()
	text, err := v.analyzer.Analyze(ctx, analysis.Request{ID: id, Image: image, Prompt: prompt})
	result := interpret(text, err)

	v.mu.Lock()
	v.flags.Loading = false
	if v.closed {
		v.mu.Unlock()
		log.Printf("[SUBMIT] %s: view closed, dropping result", id)
		return nil
	}
	if !result.IsError {
		v.canvas.Clear()
	}
	v.result = result
	v.mu.Unlock()

	v.speaker.Announce(result.Text)
	if v.OnResult != nil {
		v.OnResult(Submission{ID: id, Result: result, At: time.Now()})
	}
	v.changed()
	return nil
}

func interpret(text string, err error) state.Result {
	if err == nil {
		return state.Result{Text: text}
	}
	var apiErr *analysis.APIError
	if errors.As(err, &apiErr) {
		return state.Result{Text: "Error: " + apiErr.Message, IsError: true}
	}
	log.Printf("[SUBMIT] Transport failure: %v", err)
	return state.Result{Text: ConnectFailedText, IsError: true}
}

// Close tears the view down. Speech stops and a submission still in flight
// will not touch the view when it returns.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.speaker.Close()
}
