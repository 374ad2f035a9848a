package raster

import (
	"image"
	"image/color"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/oakwood-commons/tilemenu/pkg/widget"
)

// RenderText rasterizes message with the backend's face scaled so one line is
// pointSize pixels tall. When maxWidth is non-zero the text is wrapped at word
// boundaries to fit.
func (b *Backend) RenderText(message string, pointSize int, c color.RGBA, maxWidth uint32) (widget.Texture, error) {
	metrics := b.face.Metrics()
	lineHeight := metrics.Height.Ceil()
	if lineHeight <= 0 {
		lineHeight = 1
	}
	scale := 1.0
	if pointSize > 0 {
		scale = float64(pointSize) / float64(lineHeight)
	}

	limit := 0
	if maxWidth > 0 {
		limit = int(float64(maxWidth) / scale)
	}
	lines := wrap(b.face, message, limit)

	width := 1
	for _, line := range lines {
		if w := font.MeasureString(b.face, line).Ceil(); w > width {
			width = w
		}
	}
	src := image.NewRGBA(image.Rect(0, 0, width, lineHeight*len(lines)))
	d := &font.Drawer{Dst: src, Src: image.NewUniform(c), Face: b.face}
	for i, line := range lines {
		d.Dot = fixed.P(0, i*lineHeight+metrics.Ascent.Ceil())
		d.DrawString(line)
	}
	if scale == 1 {
		return &Texture{img: src}, nil
	}

	sb := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0,
		int(math.Ceil(float64(sb.Dx())*scale)),
		int(math.Ceil(float64(sb.Dy())*scale))))
	b.scaler.Scale(dst, dst.Bounds(), src, sb, xdraw.Src, nil)
	return &Texture{img: dst}, nil
}

// wrap splits text into lines no wider than limit pixels. A single word wider
// than limit gets a line of its own. limit <= 0 disables wrapping.
func wrap(face font.Face, text string, limit int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	if limit <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(face, candidate).Ceil() <= limit {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
