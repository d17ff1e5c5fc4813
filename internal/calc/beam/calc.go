package beam

import (
	"errors"
	"fmt"
	"math"
)

type Support string

const (
	SimplySupported Support = "simply-supported"
	Cantilever      Support = "cantilever"
)

type Load string

const (
	UDL   Load = "udl"
	Point Load = "point"
)

// SampleIntervals is the number of equal steps the span is divided into.
// Results always carry SampleIntervals+1 samples, both supports included.
const SampleIntervals = 20

// NominalFlexuralRigidity is the fixed EI used for MaxDeflection. It is a
// placeholder, not derived from the section, so the deflection is indicative only.
const NominalFlexuralRigidity = 200000 * 10000

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrUnsupportedConfiguration = errors.New("unsupported beam configuration")
)

type Input struct {
	Support       Support `json:"support"`
	Load          Load    `json:"load"`
	SpanM         float64 `json:"span_m"`
	LoadMagnitude float64 `json:"load_magnitude"` // kN/m for udl, kN for point
	WidthMM       float64 `json:"width_mm,omitempty"`
	DepthMM       float64 `json:"depth_mm,omitempty"`

	// Section check parameters, only read when width and depth are set.
	ModulusGPa           float64 `json:"modulus_gpa,omitempty"`
	DeflectionLimitRatio float64 `json:"deflection_limit_ratio,omitempty"`
	AllowableStressMPa   float64 `json:"allowable_stress_mpa,omitempty"`
}

type Sample struct {
	PositionM        float64 `json:"position_m"`
	BendingMomentKNM float64 `json:"bending_moment_knm"`
	ShearForceKN     float64 `json:"shear_force_kn"`
}

type Result struct {
	Support          Support       `json:"support"`
	Load             Load          `json:"load"`
	SpanM            float64       `json:"span_m"`
	LoadMagnitude    float64       `json:"load_magnitude"`
	WidthMM          float64       `json:"width_mm,omitempty"`
	DepthMM          float64       `json:"depth_mm,omitempty"`
	MaxBendingMoment float64       `json:"max_bending_moment_knm"`
	MaxShearForce    float64       `json:"max_shear_force_kn"`
	MaxDeflection    float64       `json:"max_deflection_m"`
	Samples          []Sample      `json:"samples"`
	Section          *SectionCheck `json:"section,omitempty"`
	Notes            string        `json:"notes"`
}

// formulas holds the closed-form solution for one support/load case.
// x is measured from the left support (simply supported) or from the
// free end (cantilever). left reports whether the sample lies on the
// loaded side of midspan, decided by sample index so that the midspan
// sample never flips sign through rounding.
type formulas struct {
	maxMoment func(L, q float64) float64
	maxShear  func(L, q float64) float64
	deflCoef  float64 // δ = deflCoef·q·L^deflPower / EI
	deflPower float64
	moment    func(L, q, x float64, left bool) float64
	shear     func(L, q, x float64, left bool) float64
}

func caseFor(s Support, l Load) (formulas, error) {
	switch s {
	case SimplySupported:
		switch l {
		case UDL:
			return formulas{
				maxMoment: func(L, w float64) float64 { return w * L * L / 8 },
				maxShear:  func(L, w float64) float64 { return w * L / 2 },
				deflCoef:  5.0 / 384.0,
				deflPower: 4,
				moment:    func(L, w, x float64, _ bool) float64 { return w * x * (L - x) / 2 },
				shear:     func(L, w, x float64, _ bool) float64 { return w * (L/2 - x) },
			}, nil
		case Point:
			return formulas{
				maxMoment: func(L, p float64) float64 { return p * L / 4 },
				maxShear:  func(_, p float64) float64 { return p / 2 },
				deflCoef:  1.0 / 48.0,
				deflPower: 3,
				moment: func(L, p, x float64, left bool) float64 {
					if left {
						return p * x / 2
					}
					return p * (L - x) / 2
				},
				shear: func(_, p, _ float64, left bool) float64 {
					if left {
						return p / 2
					}
					return -p / 2
				},
			}, nil
		}
	case Cantilever:
		switch l {
		case UDL:
			return formulas{
				maxMoment: func(L, w float64) float64 { return w * L * L / 2 },
				maxShear:  func(L, w float64) float64 { return w * L },
				deflCoef:  1.0 / 8.0,
				deflPower: 4,
				moment:    func(L, w, x float64, _ bool) float64 { return w * (L - x) * (L - x) / 2 },
				shear:     func(L, w, x float64, _ bool) float64 { return w * (L - x) },
			}, nil
		case Point:
			return formulas{
				maxMoment: func(L, p float64) float64 { return p * L },
				maxShear:  func(_, p float64) float64 { return p },
				deflCoef:  1.0 / 3.0,
				deflPower: 3,
				moment:    func(L, p, x float64, _ bool) float64 { return p * (L - x) },
				shear:     func(_, p, _ float64, _ bool) float64 { return p },
			}, nil
		}
	}
	return formulas{}, fmt.Errorf("%w: support %q with load %q", ErrUnsupportedConfiguration, s, l)
}

func describe(s Support, l Load) string {
	switch {
	case s == SimplySupported && l == UDL:
		return "Simply supported beam, uniformly distributed load"
	case s == SimplySupported && l == Point:
		return "Simply supported beam, point load at midspan"
	case s == Cantilever && l == UDL:
		return "Cantilever, uniformly distributed load"
	default:
		return "Cantilever, point load at free end"
	}
}

func validate(in Input) error {
	if math.IsNaN(in.SpanM) || math.IsInf(in.SpanM, 0) || in.SpanM <= 0 {
		return fmt.Errorf("%w: span must be a positive number, got %v", ErrInvalidInput, in.SpanM)
	}
	if math.IsNaN(in.LoadMagnitude) || math.IsInf(in.LoadMagnitude, 0) {
		return fmt.Errorf("%w: load magnitude must be a finite number, got %v", ErrInvalidInput, in.LoadMagnitude)
	}
	if in.LoadMagnitude < 0 {
		return fmt.Errorf("%w: load magnitude must not be negative, got %v", ErrInvalidInput, in.LoadMagnitude)
	}
	if !finite(in.WidthMM, in.DepthMM) || in.WidthMM < 0 || in.DepthMM < 0 {
		return fmt.Errorf("%w: section dimensions must be finite and not negative", ErrInvalidInput)
	}
	return nil
}

// Analyze computes the extrema and the sampled bending moment and shear
// force curves for a beam configuration. It has no side effects.
func Analyze(in Input) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}
	f, err := caseFor(in.Support, in.Load)
	if err != nil {
		return Result{}, err
	}

	L := in.SpanM
	q := in.LoadMagnitude

	samples := make([]Sample, 0, SampleIntervals+1)
	for i := 0; i <= SampleIntervals; i++ {
		x := L * float64(i) / SampleIntervals
		if i == SampleIntervals {
			x = L
		}
		left := 2*i <= SampleIntervals
		samples = append(samples, Sample{
			PositionM:        x,
			BendingMomentKNM: f.moment(L, q, x, left),
			ShearForceKN:     f.shear(L, q, x, left),
		})
	}

	res := Result{
		Support:          in.Support,
		Load:             in.Load,
		SpanM:            L,
		LoadMagnitude:    q,
		WidthMM:          in.WidthMM,
		DepthMM:          in.DepthMM,
		MaxBendingMoment: f.maxMoment(L, q),
		MaxShearForce:    f.maxShear(L, q),
		MaxDeflection:    f.deflCoef * q * math.Pow(L, f.deflPower) / NominalFlexuralRigidity,
		Samples:          samples,
		Notes:            describe(in.Support, in.Load) + ". Deflection is approximate (nominal EI, not derived from the section).",
	}
	if in.WidthMM > 0 && in.DepthMM > 0 {
		sc := checkSection(in, f, res.MaxBendingMoment)
		res.Section = &sc
	}
	if !res.finite() {
		return Result{}, fmt.Errorf("%w: span %v with load %v overflows the analysis", ErrInvalidInput, L, q)
	}
	return res, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// finite reports whether every computed value is a finite number.
func (r Result) finite() bool {
	if !finite(r.MaxBendingMoment, r.MaxShearForce, r.MaxDeflection) {
		return false
	}
	for _, s := range r.Samples {
		if !finite(s.PositionM, s.BendingMomentKNM, s.ShearForceKN) {
			return false
		}
	}
	if sc := r.Section; sc != nil {
		return finite(sc.InertiaMM4, sc.SectionModulusMM3, sc.BendingStressMPa,
			sc.AverageShearMPa, sc.DeflectionMM, sc.DeflectionLimitMM)
	}
	return true
}
