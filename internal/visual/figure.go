package visual

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/anthonynsimon/bild/transform"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Default figure size.
const (
	DefaultWidth  = 16 * vg.Inch
	DefaultHeight = 8 * vg.Inch
)

// panelPixels is the size image panels are upscaled to before plotting, so
// the rasterizer does not smooth small planes.
const panelPixels = 256

var (
	trainColor = color.RGBA{B: 255, A: 255}
	testColor  = color.RGBA{R: 255, A: 255}
)

// RenderFigure draws s on a fresh 2x4 grid: the four planes on the top
// row, the cost and classification error curves at the start of the
// bottom row.
func RenderFigure(s *Snapshot, width, height vg.Length) (*vgimg.Canvas, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      4,
		PadX:      4 * vg.Millimeter,
		PadY:      4 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}

	for i, p := range s.panels() {
		pl := planePlot(p.title, p.vol.Plane())
		pl.Draw(tiles.At(dc, i, 0))
	}

	cost, err := curvePlot("cost energy", s.Train.Iters, s.Train.Costs, s.Test.Iters, s.Test.Costs, true)
	if err != nil {
		return nil, err
	}
	cost.Title.Text = fmt.Sprintf("iteration %d, eta %.4g", s.Iter, s.Eta)
	cost.Draw(tiles.At(dc, 0, 1))

	cls, err := curvePlot("classification error", s.Train.Iters, s.Train.ClsErrs, s.Test.Iters, s.Test.ClsErrs, false)
	if err != nil {
		return nil, err
	}
	cls.Draw(tiles.At(dc, 1, 1))

	return img, nil
}

// WritePNG renders s and encodes the figure as PNG.
func WritePNG(w io.Writer, s *Snapshot, width, height vg.Length) error {
	img, err := RenderFigure(s, width, height)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode figure: %w", err)
	}
	return nil
}

func planePlot(title string, p Plane) *plot.Plot {
	pl := plot.New()
	pl.Title.Text = title
	pl.HideAxes()

	scale := panelPixels / max(p.Rows, p.Cols)
	if scale < 1 {
		scale = 1
	}
	scaled := transform.Resize(grayImage(p), p.Cols*scale, p.Rows*scale, transform.NearestNeighbor)
	pl.Add(plotter.NewImage(scaled, 0, 0, float64(p.Cols), float64(p.Rows)))
	return pl
}

// grayImage maps the plane's value range linearly onto black..white.
// Non-finite values are drawn black.
func grayImage(p Plane) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, p.Cols, p.Rows))
	vals := finiteValues(p.Data)
	if len(vals) == 0 {
		return img
	}

	lo, hi := floats.Min(vals), floats.Max(vals)
	span := hi - lo
	for r := 0; r < p.Rows; r++ {
		for c := 0; c < p.Cols; c++ {
			v := p.At(r, c)
			var g uint8
			if span > 0 && v >= lo && v <= hi {
				g = uint8((v - lo) / span * 255)
			}
			img.SetGray(c, r, color.Gray{Y: g})
		}
	}
	return img
}

func curvePlot(ylabel string, trainIters []int, train []float64, testIters []int, test []float64, legend bool) (*plot.Plot, error) {
	pl := plot.New()
	pl.X.Label.Text = "iteration"
	pl.Y.Label.Text = ylabel

	series := []struct {
		name  string
		iters []int
		vals  []float64
		color color.Color
	}{
		{"train", trainIters, train, trainColor},
		{"test", testIters, test, testColor},
	}
	for _, sr := range series {
		iters, vals := finite(sr.iters, sr.vals)
		if len(vals) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(vals))
		for i := range vals {
			xys[i].X = float64(iters[i])
			xys[i].Y = vals[i]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("%s %s curve: %w", sr.name, ylabel, err)
		}
		line.LineStyle.Color = sr.color
		line.LineStyle.Width = vg.Points(1)
		pl.Add(line)
		if legend {
			pl.Legend.Add(sr.name, line)
		}
	}
	return pl, nil
}
