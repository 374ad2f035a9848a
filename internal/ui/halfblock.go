package ui

import (
	"image"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	xdraw "golang.org/x/image/draw"
)

const upperHalf = "▀"

// HalfBlocks renders img as rows lines of cols terminal cells. Each cell
// prints an upper half block whose foreground is the upper pixel and whose
// background is the lower one, so the image is first scaled to cols×2*rows.
func HalfBlocks(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 || img.Bounds().Empty() {
		return ""
	}
	small := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	cells := make(map[[2]color.RGBA]string)
	var b strings.Builder
	for y := 0; y < rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			pair := [2]color.RGBA{small.RGBAAt(x, 2*y), small.RGBAAt(x, 2*y+1)}
			cell, ok := cells[pair]
			if !ok {
				cell = lipgloss.NewStyle().Foreground(pair[0]).Background(pair[1]).Render(upperHalf)
				cells[pair] = cell
			}
			b.WriteString(cell)
		}
	}
	return b.String()
}
