package diagram

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Series is a curve sampled along a member, e.g. bending moment vs position.
type Series struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
	Color  color.Color
}

var (
	MomentColor = color.RGBA{R: 37, G: 99, B: 235, A: 255}
	ShearColor  = color.RGBA{R: 220, G: 38, B: 38, A: 255}
)

const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 3 * vg.Inch
)

func (s Series) validate() error {
	if len(s.X) == 0 {
		return errors.New("series has no points")
	}
	if len(s.X) != len(s.Y) {
		return fmt.Errorf("series length mismatch: %d x values, %d y values", len(s.X), len(s.Y))
	}
	return nil
}

func (s Series) plot() (*plot.Plot, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(s.X))
	for i := range s.X {
		pts[i] = plotter.XY{X: s.X[i], Y: s.Y[i]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	c := s.Color
	if c == nil {
		c = color.Black
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = c
	p.Add(line)

	// Zero reference line along the member axis.
	axis, err := plotter.NewLine(plotter.XYs{{X: s.X[0], Y: 0}, {X: s.X[len(s.X)-1], Y: 0}})
	if err != nil {
		return nil, err
	}
	axis.LineStyle.Width = vg.Points(1)
	axis.LineStyle.Color = color.Gray{Y: 128}
	axis.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(axis)

	return p, nil
}

// WritePNG renders the series as a PNG line chart.
func WritePNG(s Series, w io.Writer, width, height vg.Length) error {
	p, err := s.plot()
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
