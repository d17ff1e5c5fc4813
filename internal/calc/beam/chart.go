package beam

import "CiviAI/internal/diagram"

func (r Result) positions() []float64 {
	xs := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		xs[i] = s.PositionM
	}
	return xs
}

// MomentSeries returns the bending moment diagram of r for charting.
func (r Result) MomentSeries() diagram.Series {
	ys := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		ys[i] = s.BendingMomentKNM
	}
	return diagram.Series{
		Title:  "Bending Moment Diagram",
		XLabel: "Position (m)",
		YLabel: "Bending moment (kN·m)",
		X:      r.positions(),
		Y:      ys,
		Color:  diagram.MomentColor,
	}
}

// ShearSeries returns the shear force diagram of r for charting.
func (r Result) ShearSeries() diagram.Series {
	ys := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		ys[i] = s.ShearForceKN
	}
	return diagram.Series{
		Title:  "Shear Force Diagram",
		XLabel: "Position (m)",
		YLabel: "Shear force (kN)",
		X:      r.positions(),
		Y:      ys,
		Color:  diagram.ShearColor,
	}
}
