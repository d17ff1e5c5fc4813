package material

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type StructureType string

const (
	Wall   StructureType = "wall"
	Column StructureType = "column"
	Beam   StructureType = "beam"
	Slab   StructureType = "slab"
)

type Grade string

const (
	M20 Grade = "M20"
	M25 Grade = "M25"
	M30 Grade = "M30"
)

// Bulk densities in kg/m³.
const (
	CementDensity    = 1440.0
	SandDensity      = 1600.0
	AggregateDensity = 1450.0
	SteelDensity     = 7850.0
)

var ErrInvalidInput = errors.New("invalid input")

// UnitCosts are prices per kg. Zero fields take the default price.
type UnitCosts struct {
	Cement    float64 `json:"cement"`
	Sand      float64 `json:"sand"`
	Aggregate float64 `json:"aggregate"`
	Steel     float64 `json:"steel"`
}

var DefaultCosts = UnitCosts{Cement: 6, Sand: 0.6, Aggregate: 0.5, Steel: 80}

// Input dimensions depend on the structure type:
// wall uses length (m), height (m) and thickness (mm);
// column and beam use length, width and height, all in mm;
// slab uses length (m), width (m) and thickness (mm).
type Input struct {
	StructureType   StructureType `json:"structure_type"`
	ConcreteGrade   Grade         `json:"concrete_grade"`
	Length          float64       `json:"length"`
	Width           float64       `json:"width"`
	Height          float64       `json:"height"`
	ThicknessMM     float64       `json:"thickness_mm"`
	SteelPercentage float64       `json:"steel_percentage"`
	Costs           UnitCosts     `json:"costs"`
}

type Quantities struct {
	Cement    float64 `json:"cement"`
	Sand      float64 `json:"sand"`
	Aggregate float64 `json:"aggregate"`
	Steel     float64 `json:"steel"`
}

type Result struct {
	StructureType StructureType `json:"structure_type"`
	ConcreteGrade Grade         `json:"concrete_grade"`
	MixRatio      string        `json:"mix_ratio"`
	VolumeM3      float64       `json:"volume_m3"`
	WeightsKG     Quantities    `json:"weights_kg"`
	Costs         Quantities    `json:"costs"`
	TotalCost     float64       `json:"total_cost"`
}

type mix struct{ cement, sand, aggregate float64 }

func (m mix) total() float64 { return m.cement + m.sand + m.aggregate }

func (m mix) String() string {
	return fmt.Sprintf("1:%g:%g", m.sand/m.cement, m.aggregate/m.cement)
}

var mixes = map[Grade]mix{
	M20: {1, 1.5, 3},
	M25: {1, 1, 2},
	M30: {1, 0.75, 1.5},
}

func Calculate(in Input) (Result, error) {
	in.StructureType = StructureType(strings.ToLower(strings.TrimSpace(string(in.StructureType))))
	in.ConcreteGrade = Grade(strings.ToUpper(strings.TrimSpace(string(in.ConcreteGrade))))
	if in.ConcreteGrade == "" {
		in.ConcreteGrade = M20
	}
	m, ok := mixes[in.ConcreteGrade]
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown concrete grade %q", ErrInvalidInput, in.ConcreteGrade)
	}
	vol, err := volume(in)
	if err != nil {
		return Result{}, err
	}
	if !nonNegative(in.SteelPercentage) || in.SteelPercentage > 100 {
		return Result{}, fmt.Errorf("%w: steel percentage must be between 0 and 100", ErrInvalidInput)
	}
	costs, err := unitCosts(in.Costs)
	if err != nil {
		return Result{}, err
	}

	w := Quantities{
		Cement:    m.cement / m.total() * vol * CementDensity,
		Sand:      m.sand / m.total() * vol * SandDensity,
		Aggregate: m.aggregate / m.total() * vol * AggregateDensity,
		Steel:     in.SteelPercentage / 100 * vol * SteelDensity,
	}
	c := Quantities{
		Cement:    w.Cement * costs.Cement,
		Sand:      w.Sand * costs.Sand,
		Aggregate: w.Aggregate * costs.Aggregate,
		Steel:     w.Steel * costs.Steel,
	}
	return Result{
		StructureType: in.StructureType,
		ConcreteGrade: in.ConcreteGrade,
		MixRatio:      m.String(),
		VolumeM3:      vol,
		WeightsKG:     w,
		Costs:         c,
		TotalCost:     c.Cement + c.Sand + c.Aggregate + c.Steel,
	}, nil
}

func volume(in Input) (float64, error) {
	switch in.StructureType {
	case Wall:
		if err := positive(dim{"length", in.Length}, dim{"height", in.Height}, dim{"thickness_mm", in.ThicknessMM}); err != nil {
			return 0, err
		}
		return in.Length * in.Height * in.ThicknessMM / 1000, nil
	case Column, Beam:
		if err := positive(dim{"length", in.Length}, dim{"width", in.Width}, dim{"height", in.Height}); err != nil {
			return 0, err
		}
		return in.Length * in.Width * in.Height / 1e9, nil
	case Slab:
		if err := positive(dim{"length", in.Length}, dim{"width", in.Width}, dim{"thickness_mm", in.ThicknessMM}); err != nil {
			return 0, err
		}
		return in.Length * in.Width * in.ThicknessMM / 1000, nil
	}
	return 0, fmt.Errorf("%w: unknown structure type %q", ErrInvalidInput, in.StructureType)
}

type dim struct {
	name  string
	value float64
}

func positive(dims ...dim) error {
	for _, d := range dims {
		if !nonNegative(d.value) || d.value == 0 {
			return fmt.Errorf("%w: %s must be a positive number", ErrInvalidInput, d.name)
		}
	}
	return nil
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func unitCosts(c UnitCosts) (UnitCosts, error) {
	for _, v := range []float64{c.Cement, c.Sand, c.Aggregate, c.Steel} {
		if !nonNegative(v) {
			return UnitCosts{}, fmt.Errorf("%w: unit costs must not be negative", ErrInvalidInput)
		}
	}
	if c.Cement == 0 {
		c.Cement = DefaultCosts.Cement
	}
	if c.Sand == 0 {
		c.Sand = DefaultCosts.Sand
	}
	if c.Aggregate == 0 {
		c.Aggregate = DefaultCosts.Aggregate
	}
	if c.Steel == 0 {
		c.Steel = DefaultCosts.Steel
	}
	return c, nil
}
