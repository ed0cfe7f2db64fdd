// Package render draws a curling sheet and its stones to a PNG using
// fogleman/gg, adapted from the teacher's canvas drawing in
// internal/streaming (stream.go's drawBackground/drawGrid/drawPlayer
// style) onto the house-and-hog-line geometry of package vector2.
package render

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"curling/match"
	"curling/stone"
	"curling/team"
	"curling/vector2"
)

// Sheet draws the playing surface for one end (house, tee line, hog
// line, centre line) plus every occupied stone slot, and returns the
// resulting context so the caller can save it or encode it further.
func Sheet(state *match.State, widthPx, heightPx int) *gg.Context {
	dc := gg.NewContext(widthPx, heightPx)

	// vector2's Y axis runs from the hack (0) to the backboard; the top
	// of the image is the far end of the sheet.
	scale := float64(widthPx) / 2 / float64(vector2.HouseRadius*2.2)
	toPx := func(p vector2.Vector2) (float64, float64) {
		x := float64(widthPx)/2 + float64(p.X)*scale
		y := float64(heightPx) - float64(p.Y)*scale
		return x, y
	}

	drawBackground(dc, widthPx, heightPx)
	drawHouse(dc, toPx, scale)
	drawLines(dc, toPx, widthPx)
	drawStones(dc, state, toPx, scale)

	return dc
}

func drawBackground(dc *gg.Context, w, h int) {
	dc.SetColor(color.RGBA{235, 240, 248, 255})
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()
}

func drawHouse(dc *gg.Context, toPx func(vector2.Vector2) (float64, float64), scale float64) {
	cx, cy := toPx(vector2.Vector2{X: 0, Y: vector2.TeeY})

	rings := []struct {
		radius float32
		fill   color.Color
	}{
		{vector2.HouseRadius, color.RGBA{180, 30, 40, 255}},
		{vector2.HouseRadius * 2.0 / 3.0, color.White},
		{vector2.HouseRadius / 3.0, color.RGBA{60, 90, 200, 255}},
	}
	for _, ring := range rings {
		dc.SetColor(ring.fill)
		dc.DrawCircle(cx, cy, float64(ring.radius)*scale)
		dc.Fill()
	}

	dc.SetColor(color.Black)
	dc.DrawCircle(cx, cy, 1.5)
	dc.Fill()
}

func drawLines(dc *gg.Context, toPx func(vector2.Vector2) (float64, float64), widthPx int) {
	dc.SetColor(color.RGBA{40, 40, 40, 255})
	dc.SetLineWidth(1.5)

	for _, y := range []float32{vector2.HogY, vector2.TeeY, vector2.BackY} {
		_, yPx := toPx(vector2.Vector2{X: 0, Y: y})
		dc.DrawLine(0, yPx, float64(widthPx), yPx)
		dc.Stroke()
	}

	x0, y0 := toPx(vector2.Vector2{X: 0, Y: vector2.HackY})
	x1, y1 := toPx(vector2.Vector2{X: 0, Y: vector2.BackboardY})
	dc.DrawLine(x0, y0, x1, y1)
	dc.Stroke()
}

func drawStones(dc *gg.Context, state *match.State, toPx func(vector2.Vector2) (float64, float64), scale float64) {
	firstTeam := state.FirstTeam()

	for i := 0; i < stone.SlotCount; i++ {
		k := state.Stones[i]
		if k == nil {
			continue
		}
		x, y := toPx(k.Position)
		r := float64(vector2.StoneRadius) * scale

		fill := color.RGBA{200, 40, 40, 255}
		if team.SlotTeam(i, firstTeam) == team.Team1 {
			fill = color.RGBA{40, 60, 200, 255}
		}

		dc.SetColor(fill)
		dc.DrawCircle(x, y, r)
		dc.Fill()

		dc.SetColor(color.Black)
		dc.SetLineWidth(1)
		dc.DrawCircle(x, y, r)
		dc.Stroke()

		handleX := x + r*math.Cos(float64(k.Angle))
		handleY := y - r*math.Sin(float64(k.Angle))
		dc.DrawLine(x, y, handleX, handleY)
		dc.Stroke()
	}
}

// Save writes dc to path as a PNG.
func Save(dc *gg.Context, path string) error {
	return dc.SavePNG(path)
}
