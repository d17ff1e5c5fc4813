package loads

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidInput = errors.New("invalid input")

// Input holds characteristic loads in kN (or kN/m, consistently).
// Lateral is the wind or earthquake load, whichever is considered.
type Input struct {
	DeadKN    float64 `json:"dead_kn"`
	ImposedKN float64 `json:"imposed_kn"`
	LateralKN float64 `json:"lateral_kn"`
}

type Combination struct {
	Name     string  `json:"name"`
	Dead     float64 `json:"dead_factor"`
	Imposed  float64 `json:"imposed_factor"`
	Lateral  float64 `json:"lateral_factor"`
	DesignKN float64 `json:"design_load_kn"`
}

type Result struct {
	Combinations []Combination `json:"combinations"`
	Governing    Combination   `json:"governing"`
	DesignLoadKN float64       `json:"design_load_kn"`
	Notes        string        `json:"notes"`
}

// IS 456 Table 18, limit state of collapse.
var limitStateCollapse = []Combination{
	{Name: "1.5(DL+LL)", Dead: 1.5, Imposed: 1.5},
	{Name: "1.5(DL+EL)", Dead: 1.5, Lateral: 1.5},
	{Name: "0.9DL+1.5EL", Dead: 0.9, Lateral: 1.5},
	{Name: "1.2(DL+LL+EL)", Dead: 1.2, Imposed: 1.2, Lateral: 1.2},
}

func Calculate(in Input) (Result, error) {
	if !finite(in.DeadKN) || in.DeadKN <= 0 {
		return Result{}, fmt.Errorf("%w: dead load must be positive", ErrInvalidInput)
	}
	if !finite(in.ImposedKN) || in.ImposedKN < 0 {
		return Result{}, fmt.Errorf("%w: imposed load must not be negative", ErrInvalidInput)
	}
	if !finite(in.LateralKN) || in.LateralKN < 0 {
		return Result{}, fmt.Errorf("%w: lateral load must not be negative", ErrInvalidInput)
	}

	res := Result{
		Combinations: make([]Combination, len(limitStateCollapse)),
		Notes:        "IS 456 Table 18 partial safety factors, limit state of collapse.",
	}
	for i, c := range limitStateCollapse {
		c.DesignKN = in.DeadKN*c.Dead + in.ImposedKN*c.Imposed + in.LateralKN*c.Lateral
		res.Combinations[i] = c
		if i == 0 || c.DesignKN > res.Governing.DesignKN {
			res.Governing = c
		}
	}
	res.DesignLoadKN = res.Governing.DesignKN
	return res, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
