// Package export renders diagrams out of the application: PNG images,
// plain-text grids, and the system clipboard.
package export

import (
	"fmt"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/travisdwitt/erdling/internal/canvas"
	"github.com/travisdwitt/erdling/internal/geometry"
)

const pngPadding = 40.0

// PNG renders the scene to a PNG file at 1:1 scene scale. The image
// covers the content bounds plus padding in the scene's theme colors.
func PNG(scene *canvas.Scene, filename string) error {
	bounds := scene.ContentBounds()
	if bounds.IsEmpty() {
		return fmt.Errorf("nothing to export")
	}

	width := int(bounds.W + 2*pngPadding)
	height := int(bounds.H + 2*pngPadding)

	dc := gg.NewContext(width, height)
	dc.SetHexColor(scene.Theme().Background())
	dc.Clear()

	face, err := monoFace()
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	offset := geometry.Point{X: pngPadding - bounds.X, Y: pngPadding - bounds.Y}

	// Draw connections first (so they appear behind shapes)
	for _, conn := range scene.Connections() {
		drawConnectionPNG(dc, scene.Theme(), conn, offset)
	}
	for _, sh := range scene.Shapes() {
		drawShapePNG(dc, sh, offset)
	}

	return dc.SavePNG(filename)
}

func monoFace() (font.Face, error) {
	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	return truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12.0,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func drawShapePNG(dc *gg.Context, s *canvas.Shape, offset geometry.Point) {
	x := s.X + offset.X
	y := s.Y + offset.Y

	if s.Fill != "" {
		dc.SetHexColor(s.Fill)
		dc.DrawRectangle(x, y, s.W, s.H)
		dc.Fill()
	}

	dc.SetLineWidth(s.BorderWidth)
	dc.SetHexColor(s.BorderColor)
	dc.DrawRectangle(x, y, s.W, s.H)
	dc.Stroke()

	dc.SetHexColor(s.TextColor)
	dc.DrawString(s.Title, x+5, y+canvas.TitleHeight-10)

	if len(s.Rows) > 0 {
		dc.SetLineWidth(1.0)
		dc.SetHexColor(s.SeparatorColor)
		dc.DrawLine(x, y+canvas.TitleHeight, x+s.W, y+canvas.TitleHeight)
		dc.Stroke()
	}

	dc.SetHexColor(s.TextColor)
	for i, row := range s.Rows {
		rowY := y + canvas.TitleHeight + float64(i)*canvas.RowHeight
		dc.DrawString(row, x+10, rowY+canvas.RowHeight-6)
	}
}

func drawConnectionPNG(dc *gg.Context, theme canvas.Theme, c *canvas.Connection, offset geometry.Point) {
	src, dst := c.Endpoints()

	dc.SetLineWidth(2.0)
	dc.SetHexColor(theme.Connection())
	dc.DrawLine(src.X+offset.X, src.Y+offset.Y, dst.X+offset.X, dst.Y+offset.Y)
	dc.Stroke()
}
