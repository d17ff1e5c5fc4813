package diagram

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// ASCII renders the series as a terminal chart. Points are plotted by
// index, so the caption carries the x range.
func ASCII(s Series, height int) (string, error) {
	if err := s.validate(); err != nil {
		return "", err
	}
	if height <= 0 {
		height = 10
	}
	caption := fmt.Sprintf("%s, %s from %.2f to %.2f", s.Title, s.XLabel, s.X[0], s.X[len(s.X)-1])
	return asciigraph.Plot(s.Y,
		asciigraph.Height(height),
		asciigraph.Width(len(s.Y)*3),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	), nil
}
