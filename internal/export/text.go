package export

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/travisdwitt/erdling/internal/canvas"
	"github.com/travisdwitt/erdling/internal/geometry"
	"github.com/travisdwitt/erdling/internal/render"
)

// Text renders the diagram as a plain-text character grid at zoom 1,
// covering the content bounds plus one cell of margin. Selection state
// is never part of an export.
func Text(scene *canvas.Scene) (string, error) {
	bounds := scene.ContentBounds()
	if bounds.IsEmpty() {
		return "", fmt.Errorf("nothing to export")
	}

	tr := render.Transform{
		Zoom: 1.0,
		Scroll: geometry.Point{
			X: bounds.X - render.CellWidth,
			Y: bounds.Y - render.CellHeight,
		},
	}
	w := int(math.Ceil(bounds.W/render.CellWidth)) + 3
	h := int(math.Ceil(bounds.H/render.CellHeight)) + 3

	g := render.NewGrid(w, h)
	render.DrawScene(g, scene, tr, render.Options{})

	var b strings.Builder
	for _, line := range g.Lines() {
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// TextFile writes the text render to a file.
func TextFile(scene *canvas.Scene, filename string) error {
	content, err := Text(scene)
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(content)
	return err
}
