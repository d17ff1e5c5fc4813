package soil

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type Type string

const (
	Sandy  Type = "sandy"
	Clayey Type = "clayey"
	Silty  Type = "silty"
)

const (
	// PlateSizeM is the side of the standard square test plate.
	PlateSizeM     = 0.3
	FactorOfSafety = 2.5
	// WaterTableFactor reduces the ultimate capacity when the water table
	// is at or near the footing.
	WaterTableFactor = 0.5
)

var ErrInvalidInput = errors.New("invalid input")

type Input struct {
	SoilType      Type    `json:"soil_type"`
	PlateLoadKPa  float64 `json:"plate_load_kpa"`
	FootingWidthM float64 `json:"footing_width_m"`
	WaterTable    bool    `json:"water_table"`
}

type Result struct {
	SoilType            Type     `json:"soil_type"`
	UltimateCapacityKPa float64  `json:"ultimate_capacity_kpa"`
	SafeCapacityKPa     float64  `json:"safe_capacity_kpa"`
	AllowableLoadKN     float64  `json:"allowable_load_kn"`
	FactorOfSafety      float64  `json:"factor_of_safety"`
	Recommendations     []string `json:"recommendations"`
	Notes               string   `json:"notes"`
}

// band holds the recommendations for capacities below limit. The last band
// of each soil type has no limit.
type band struct {
	limit float64
	recs  []string
}

var bands = map[Type][]band{
	Sandy: {
		{100, []string{"Consider soil improvement techniques like compaction", "Use wider footings to distribute the load"}},
		{200, []string{"Suitable for low to medium rise buildings", "Ensure proper drainage around the foundation"}},
		{math.Inf(1), []string{"Good bearing capacity for most structures", "Isolated footings are suitable for this soil"}},
	},
	Clayey: {
		{80, []string{"Consider pile foundations or soil stabilization", "Monitor for potential settlement issues"}},
		{150, []string{"Use raft foundation for better load distribution", "Ensure proper drainage to prevent soil swelling"}},
		{math.Inf(1), []string{"Suitable for most structures with proper design", "Monitor seasonal moisture variations"}},
	},
	Silty: {
		{90, []string{"Consider soil replacement or improvement", "Use wider footings with reinforcement"}},
		{180, []string{"Suitable for medium load structures", "Ensure proper compaction during construction"}},
		{math.Inf(1), []string{"Good bearing capacity for most structures", "Monitor for potential erosion issues"}},
	},
}

var waterTableRecs = []string{
	"Install proper drainage system to lower water table",
	"Consider waterproofing measures for the foundation",
}

// Calculate extrapolates a plate load test to a square footing of the given
// width and applies the factor of safety.
func Calculate(in Input) (Result, error) {
	in.SoilType = Type(strings.ToLower(strings.TrimSpace(string(in.SoilType))))
	soilBands, ok := bands[in.SoilType]
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown soil type %q", ErrInvalidInput, in.SoilType)
	}
	if !positive(in.PlateLoadKPa) {
		return Result{}, fmt.Errorf("%w: plate load must be a positive number", ErrInvalidInput)
	}
	if !positive(in.FootingWidthM) {
		return Result{}, fmt.Errorf("%w: footing width must be a positive number", ErrInvalidInput)
	}

	B := in.FootingWidthM
	ultimate := in.PlateLoadKPa * math.Pow((B+PlateSizeM)/(2*PlateSizeM), 2)
	if in.WaterTable {
		ultimate *= WaterTableFactor
	}
	safe := ultimate / FactorOfSafety

	var recs []string
	for _, b := range soilBands {
		if safe < b.limit {
			recs = append(recs, b.recs...)
			break
		}
	}
	notes := "Square footing assumed."
	if in.WaterTable {
		recs = append(recs, waterTableRecs...)
		notes += " Capacity halved for the water table."
	}

	return Result{
		SoilType:            in.SoilType,
		UltimateCapacityKPa: ultimate,
		SafeCapacityKPa:     safe,
		AllowableLoadKN:     safe * B * B,
		FactorOfSafety:      FactorOfSafety,
		Recommendations:     recs,
		Notes:               notes,
	}, nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
