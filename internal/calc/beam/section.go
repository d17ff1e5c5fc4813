package beam

import "math"

const (
	// IS 456 short-term modulus for M25 concrete, 5000·√fck MPa.
	defaultModulusGPa           = 25.0
	defaultDeflectionLimitRatio = 250.0
	// Allowable bending stress for plain rectangular concrete sections when
	// none is given.
	defaultAllowableStressMPa = 14.0
)

// SectionCheck evaluates the rectangular cross-section given by width and
// depth against the analysed extrema. Unlike Result.MaxDeflection it uses
// the real flexural rigidity of the section.
type SectionCheck struct {
	ModulusGPa           float64 `json:"modulus_gpa"`
	InertiaMM4           float64 `json:"inertia_mm4"`
	SectionModulusMM3    float64 `json:"section_modulus_mm3"`
	BendingStressMPa     float64 `json:"bending_stress_mpa"`
	AverageShearMPa      float64 `json:"average_shear_mpa"`
	DeflectionMM         float64 `json:"deflection_mm"`
	DeflectionLimitMM    float64 `json:"deflection_limit_mm"`
	DeflectionLimitRatio float64 `json:"deflection_limit_ratio"`
	AllowableStressMPa   float64 `json:"allowable_stress_mpa"`
	OKStress             bool    `json:"ok_stress"`
	OKDeflection         bool    `json:"ok_deflection"`
}

func checkSection(in Input, f formulas, maxMomentKNM float64) SectionCheck {
	e := in.ModulusGPa
	if e <= 0 {
		e = defaultModulusGPa
	}
	ratio := in.DeflectionLimitRatio
	if ratio <= 0 {
		ratio = defaultDeflectionLimitRatio
	}
	fb := in.AllowableStressMPa
	if fb <= 0 {
		fb = defaultAllowableStressMPa
	}

	b := in.WidthMM
	d := in.DepthMM
	I := b * math.Pow(d, 3) / 12.0
	W := b * d * d / 6.0

	Lmm := in.SpanM * 1000.0
	EMPa := e * 1000.0
	// 1 kN/m = 1 N/mm; point loads go from kN to N.
	q := in.LoadMagnitude
	if in.Load == Point {
		q *= 1000.0
	}
	defl := f.deflCoef * q * math.Pow(Lmm, f.deflPower) / (EMPa * I)
	limit := Lmm / ratio
	stress := maxMomentKNM * 1e6 / W

	return SectionCheck{
		ModulusGPa:           e,
		InertiaMM4:           I,
		SectionModulusMM3:    W,
		BendingStressMPa:     stress,
		AverageShearMPa:      f.maxShear(in.SpanM, in.LoadMagnitude) * 1000.0 / (b * d),
		DeflectionMM:         defl,
		DeflectionLimitMM:    limit,
		DeflectionLimitRatio: ratio,
		AllowableStressMPa:   fb,
		OKStress:             stress <= fb,
		OKDeflection:         defl <= limit,
	}
}
