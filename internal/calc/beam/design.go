package beam

import (
	"fmt"
	"math"
)

// DepthStep is the increment the required depth is rounded up to.
const DepthStep = 25.0

type DesignInput struct {
	Support              Support `json:"support"`
	Load                 Load    `json:"load"`
	SpanM                float64 `json:"span_m"`
	LoadMagnitude        float64 `json:"load_magnitude"`
	WidthMM              float64 `json:"width_mm"`
	AllowableStressMPa   float64 `json:"allowable_stress_mpa,omitempty"`
	ModulusGPa           float64 `json:"modulus_gpa,omitempty"`
	DeflectionLimitRatio float64 `json:"deflection_limit_ratio,omitempty"`
}

type DesignResult struct {
	RequiredDepthMM      float64 `json:"required_depth_mm"`
	DepthForStressMM     float64 `json:"depth_for_stress_mm"`
	DepthForDeflectionMM float64 `json:"depth_for_deflection_mm"`
	Governs              string  `json:"governs"` // "stress" or "deflection"
	AllowableStressMPa   float64 `json:"allowable_stress_mpa"`
	OKStress             bool    `json:"ok_stress"`
	Analysis             Result  `json:"analysis"`
	Notes                string  `json:"notes"`
}

// Design sizes the depth of a rectangular section of the given width so
// that both the bending stress and the span/ratio deflection limit hold,
// then analyses the beam with that depth.
func Design(in DesignInput) (DesignResult, error) {
	base := Input{
		Support:              in.Support,
		Load:                 in.Load,
		SpanM:                in.SpanM,
		LoadMagnitude:        in.LoadMagnitude,
		ModulusGPa:           in.ModulusGPa,
		DeflectionLimitRatio: in.DeflectionLimitRatio,
		AllowableStressMPa:   in.AllowableStressMPa,
	}
	if err := validate(base); err != nil {
		return DesignResult{}, err
	}
	if in.LoadMagnitude <= 0 {
		return DesignResult{}, fmt.Errorf("%w: load magnitude must be positive to size a section", ErrInvalidInput)
	}
	if !finite(in.WidthMM) || in.WidthMM <= 0 {
		return DesignResult{}, fmt.Errorf("%w: width must be a positive number", ErrInvalidInput)
	}
	f, err := caseFor(in.Support, in.Load)
	if err != nil {
		return DesignResult{}, err
	}

	fb := in.AllowableStressMPa
	if fb <= 0 {
		fb = defaultAllowableStressMPa
	}
	e := in.ModulusGPa
	if e <= 0 {
		e = defaultModulusGPa
	}
	ratio := in.DeflectionLimitRatio
	if ratio <= 0 {
		ratio = defaultDeflectionLimitRatio
	}

	b := in.WidthMM
	M := f.maxMoment(in.SpanM, in.LoadMagnitude) * 1e6 // N·mm
	dStress := math.Sqrt(6 * M / (fb * b))

	Lmm := in.SpanM * 1000.0
	q := in.LoadMagnitude
	if in.Load == Point {
		q *= 1000.0
	}
	// f.deflCoef·q·L^p / (E·b·d³/12) <= L/ratio
	dDefl := math.Cbrt(12 * f.deflCoef * q * math.Pow(Lmm, f.deflPower) * ratio / (e * 1000.0 * b * Lmm))

	governs, d := "stress", dStress
	if dDefl > dStress {
		governs, d = "deflection", dDefl
	}
	depth := math.Ceil(d/DepthStep) * DepthStep
	if !finite(depth) {
		return DesignResult{}, fmt.Errorf("%w: span %v with load %v overflows the section sizing", ErrInvalidInput, in.SpanM, in.LoadMagnitude)
	}

	base.WidthMM = b
	base.DepthMM = depth
	res, err := Analyze(base)
	if err != nil {
		return DesignResult{}, err
	}
	return DesignResult{
		RequiredDepthMM:      depth,
		DepthForStressMM:     dStress,
		DepthForDeflectionMM: dDefl,
		Governs:              governs,
		AllowableStressMPa:   fb,
		OKStress:             res.Section.OKStress,
		Analysis:             res,
		Notes:                fmt.Sprintf("Auto-sized rectangular section, depth rounded up to %g mm.", DepthStep),
	}, nil
}
