package diagram

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Series {
	return Series{
		Title:  "Bending Moment Diagram",
		XLabel: "Position (m)",
		YLabel: "kN·m",
		X:      []float64{0, 1, 2, 3, 4},
		Y:      []float64{0, 7.5, 10, 7.5, 0},
		Color:  MomentColor,
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(sample(), &buf, DefaultWidth, DefaultHeight))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestWritePNGRejectsBadSeries(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WritePNG(Series{}, &buf, DefaultWidth, DefaultHeight))

	s := sample()
	s.Y = s.Y[:2]
	assert.Error(t, WritePNG(s, &buf, DefaultWidth, DefaultHeight))
	assert.Zero(t, buf.Len())
}

func TestASCII(t *testing.T) {
	out, err := ASCII(sample(), 8)
	require.NoError(t, err)
	assert.Contains(t, out, "Bending Moment Diagram")
	assert.Contains(t, out, "from 0.00 to 4.00")
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 8)
}

func TestASCIIFlatSeries(t *testing.T) {
	s := sample()
	s.Y = []float64{0, 0, 0, 0, 0}
	out, err := ASCII(s, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
