// Package certificate renders completion certificates and issues them to
// users who finished a course.
package certificate

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fogleman/gg"
)

const (
	width  = 1600
	height = 1130
)

type Data struct {
	StudentName   string
	CourseTitle   string
	CertificateNo string
	IssuedAt      time.Time
}

// Renderer draws certificates as PNG. Without a font file the built-in
// bitmap face is scaled up.
type Renderer struct {
	fontPath string
}

func NewRenderer(fontPath string) *Renderer {
	return &Renderer{fontPath: fontPath}
}

func (r *Renderer) Render(d Data) ([]byte, error) {
	dc := gg.NewContext(width, height)

	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB255(11, 31, 58)
	dc.SetLineWidth(18)
	dc.DrawRectangle(40, 40, width-80, height-80)
	dc.Stroke()
	dc.SetRGB255(215, 181, 109)
	dc.SetLineWidth(4)
	dc.DrawRectangle(70, 70, width-140, height-140)
	dc.Stroke()

	lines := []struct {
		text string
		y    float64
		size float64
	}{
		{"CERTIFICATE OF COMPLETION", 230, 64},
		{"This certifies that", 380, 32},
		{d.StudentName, 480, 72},
		{"has successfully completed", 590, 32},
		{d.CourseTitle, 690, 56},
		{fmt.Sprintf("Issued %s", d.IssuedAt.Format("January 2, 2006")), 860, 28},
		{fmt.Sprintf("Certificate No. %s", d.CertificateNo), 920, 24},
	}
	dc.SetRGB255(11, 31, 58)
	for _, l := range lines {
		if err := r.drawCentered(dc, l.text, l.y, l.size); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawCentered(dc *gg.Context, text string, y, size float64) error {
	if r.fontPath != "" {
		if err := dc.LoadFontFace(r.fontPath, size); err != nil {
			return fmt.Errorf("load font: %w", err)
		}
		dc.DrawStringAnchored(text, width/2, y, 0.5, 0.5)
		return nil
	}
	// basicfont is 13px high
	scale := size / 13
	dc.Push()
	dc.ScaleAbout(scale, scale, width/2, y)
	dc.DrawStringAnchored(text, width/2, y, 0.5, 0.5)
	dc.Pop()
	return nil
}
