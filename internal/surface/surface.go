// Package surface is the raster the user paints on.
package surface

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/vector"

	"mathsketch/internal/state"
)

// arcSteps is the number of polygon edges used for each round cap.
const arcSteps = 16

// Surface is an RGBA raster with a persistent background fill. It is safe to
// read from the render goroutine while the view paints into it.
type Surface struct {
	mu         sync.RWMutex
	img        *image.RGBA
	background color.Color
	ras        *vector.Rasterizer
}

func New(background color.Color) *Surface {
	return &Surface{
		img:        image.NewRGBA(image.Rect(0, 0, 0, 0)),
		background: background,
		ras:        &vector.Rasterizer{},
	}
}

// Initialize replaces the raster with a w x h one filled with the background.
// Prior content is dropped.
func (s *Surface) Initialize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	s.fillLocked()
}

// Clear refills the whole raster with the background.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fillLocked()
}

func (s *Surface) fillLocked() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
}

func (s *Surface) Size() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clamp moves p inside the raster bounds.
func (s *Surface) Clamp(p state.Point) state.Point {
	w, h := s.Size()
	return state.Point{X: clamp(p.X, float32(w)), Y: clamp(p.Y, float32(h))}
}

func clamp(v, limit float32) float32 {
	if v < 0 || limit <= 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}

// PaintSegment draws a line from -> to with round caps. The stroke is a
// capsule: two half discs joined by the offset edges, so consecutive segments
// of a stroke overlap into round joins. A zero-length segment paints a dot.
func (s *Surface) PaintSegment(from, to state.Point, col color.Color, width int) {
	if width < 1 {
		width = 1
	}
	r := float64(width) / 2

	s.mu.Lock()
	defer s.mu.Unlock()

	bounds := image.Rect(
		int(math.Floor(math.Min(float64(from.X), float64(to.X))-r)),
		int(math.Floor(math.Min(float64(from.Y), float64(to.Y))-r)),
		int(math.Ceil(math.Max(float64(from.X), float64(to.X))+r))+1,
		int(math.Ceil(math.Max(float64(from.Y), float64(to.Y))+r))+1,
	).Intersect(s.img.Bounds())
	if bounds.Empty() {
		return
	}

	// The rasterizer only covers the segment's bounding box; its origin is bounds.Min.
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	s.ras.Reset(bounds.Dx(), bounds.Dy())

	dx, dy := float64(to.X-from.X), float64(to.Y-from.Y)
	if dx == 0 && dy == 0 {
		dx = 1
	}
	// Angle of the left normal; the cap around `to` sweeps from it through
	// the direction of travel, the cap around `from` continues back to it.
	a0 := math.Atan2(dx, -dy)
	caps := []struct {
		cx, cy float64
		start  float64
	}{
		{float64(to.X), float64(to.Y), a0},
		{float64(from.X), float64(from.Y), a0 - math.Pi},
	}
	first := true
	for _, c := range caps {
		for i := 0; i <= arcSteps; i++ {
			a := c.start - math.Pi*float64(i)/arcSteps
			x := float32(c.cx + r*math.Cos(a) - ox)
			y := float32(c.cy + r*math.Sin(a) - oy)
			if first {
				s.ras.MoveTo(x, y)
				first = false
				continue
			}
			s.ras.LineTo(x, y)
		}
	}
	s.ras.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	s.ras.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	blend(s.img, bounds.Min, mask, col)
}

// blend replaces dst with c where mask is opaque and interpolates on the
// anti-aliased edge. Unlike draw.Over this restores the background colour
// exactly, which the eraser relies on.
func blend(dst *image.RGBA, at image.Point, mask *image.Alpha, c color.Color) {
	cr, cg, cb, ca := c.RGBA()
	src := [4]uint32{cr, cg, cb, ca}
	mb := mask.Bounds()
	for y := mb.Min.Y; y < mb.Max.Y; y++ {
		for x := mb.Min.X; x < mb.Max.X; x++ {
			m := uint32(mask.Pix[mask.PixOffset(x, y)]) * 0x101
			if m == 0 {
				continue
			}
			i := dst.PixOffset(at.X+x, at.Y+y)
			for k := 0; k < 4; k++ {
				d := uint32(dst.Pix[i+k]) * 0x101
				dst.Pix[i+k] = uint8(((d*(0xffff-m) + src[k]*m) / 0xffff) >> 8)
			}
		}
	}
}

// Image returns a copy of the current content for display.
func (s *Surface) Image() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// ExportRaster encodes the current content as PNG.
func (s *Surface) ExportRaster() ([]byte, error) {
	img := s.Image()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode surface: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL returns the PNG export as a data: URL.
func (s *Surface) DataURL() (string, error) {
	data, err := s.ExportRaster()
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}
