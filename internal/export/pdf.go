// Package export writes the sketch and its answer to a PDF page.
package export

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageW, pageH = 297.0, 210.0 // A4 landscape, mm
	margin       = 10.0
	imageAreaH   = 150.0
)

// ExportPDF lays out the PNG sketch scaled to fit the top of an A4 landscape
// page with the answer text below it.
func ExportPDF(path string, sketch []byte, answer string) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(sketch))
	if err != nil {
		return fmt.Errorf("read sketch: %w", err)
	}

	p := gofpdf.New("L", "mm", "A4", "")
	p.SetTitle("MathSketch", true)
	p.AddPage()

	if cfg.Width > 0 && cfg.Height > 0 {
		w, h := fit(float64(cfg.Width), float64(cfg.Height), pageW-2*margin, imageAreaH)
		p.RegisterImageOptionsReader("sketch", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(sketch))
		p.ImageOptions("sketch", (pageW-w)/2, margin, w, h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	if answer != "" {
		tr := p.UnicodeTranslatorFromDescriptor("")
		p.SetFont("Helvetica", "", 12)
		p.SetXY(margin, margin+imageAreaH+5)
		p.MultiCell(pageW-2*margin, 6, tr(answer), "", "L", false)
	}
	return p.OutputFileAndClose(path)
}

// fit scales w x h to fit inside maxW x maxH keeping the aspect ratio.
func fit(w, h, maxW, maxH float64) (float64, float64) {
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}
