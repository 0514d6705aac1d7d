package state

import "image/color"

// PointerState is the capture state of the primary button.
type PointerState int

const (
	Idle PointerState = iota
	Drawing
)

func (s PointerState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	}
	return "unknown"
}

// Segment is one line piece to rasterize.
type Segment struct {
	From, To Point
	Color    color.Color
	Width    int
}

// Pointer turns down/move/up events into segments. Colour and width are
// sampled from the Tools passed with each event, so a change mid-stroke only
// affects the segments after it.
type Pointer struct {
	state PointerState
	last  Point
}

func (p *Pointer) State() PointerState { return p.state }

// Down starts a stroke and returns the zero-length segment that leaves a dot.
// A down while already drawing restarts the stroke at the new point.
func (p *Pointer) Down(at Point, t Tools) Segment {
	p.state = Drawing
	p.last = at
	return Segment{From: at, To: at, Color: t.PaintColor(), Width: t.LineWidth}
}

// Move returns the segment from the last point to at. ok is false while Idle.
func (p *Pointer) Move(at Point, t Tools) (seg Segment, ok bool) {
	if p.state != Drawing {
		return Segment{}, false
	}
	seg = Segment{From: p.last, To: at, Color: t.PaintColor(), Width: t.LineWidth}
	p.last = at
	return seg, true
}

// Up ends the stroke without painting. It reports whether a stroke was open.
func (p *Pointer) Up() bool {
	if p.state != Drawing {
		return false
	}
	p.state = Idle
	return true
}
