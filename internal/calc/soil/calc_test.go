package soil

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	res, err := Calculate(Input{SoilType: Sandy, PlateLoadKPa: 150, FootingWidthM: 1.5})
	require.NoError(t, err)

	assert.InDelta(t, 1350, res.UltimateCapacityKPa, 1e-9)
	assert.InDelta(t, 540, res.SafeCapacityKPa, 1e-9)
	assert.InDelta(t, 1215, res.AllowableLoadKN, 1e-9)
	assert.Equal(t, FactorOfSafety, res.FactorOfSafety)
	assert.Equal(t, []string{
		"Good bearing capacity for most structures",
		"Isolated footings are suitable for this soil",
	}, res.Recommendations)
}

func TestCalculateWaterTable(t *testing.T) {
	dry, err := Calculate(Input{SoilType: Sandy, PlateLoadKPa: 150, FootingWidthM: 1.5})
	require.NoError(t, err)
	wet, err := Calculate(Input{SoilType: Sandy, PlateLoadKPa: 150, FootingWidthM: 1.5, WaterTable: true})
	require.NoError(t, err)

	assert.InDelta(t, dry.SafeCapacityKPa/2, wet.SafeCapacityKPa, 1e-9)
	require.Len(t, wet.Recommendations, 4)
	assert.Equal(t, waterTableRecs, wet.Recommendations[2:])
	assert.Contains(t, wet.Notes, "water table")
}

func TestCalculateBands(t *testing.T) {
	cases := []struct {
		name  string
		in    Input
		first string
	}{
		{"clayey weak", Input{SoilType: Clayey, PlateLoadKPa: 50, FootingWidthM: 0.3}, "Consider pile foundations or soil stabilization"},
		{"silty medium", Input{SoilType: Silty, PlateLoadKPa: 100, FootingWidthM: 0.9}, "Suitable for medium load structures"},
		{"sandy at boundary", Input{SoilType: Sandy, PlateLoadKPa: 250, FootingWidthM: 0.3}, "Suitable for low to medium rise buildings"},
		{"sandy weak", Input{SoilType: Sandy, PlateLoadKPa: 100, FootingWidthM: 0.3}, "Consider soil improvement techniques like compaction"},
		{"clayey strong", Input{SoilType: "Clayey", PlateLoadKPa: 400, FootingWidthM: 0.3}, "Suitable for most structures with proper design"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Calculate(tc.in)
			require.NoError(t, err)
			require.Len(t, res.Recommendations, 2)
			assert.Equal(t, tc.first, res.Recommendations[0])
		})
	}
}

func TestCalculateInvalid(t *testing.T) {
	cases := map[string]Input{
		"unknown soil":   {SoilType: "rocky", PlateLoadKPa: 100, FootingWidthM: 1},
		"zero load":      {SoilType: Sandy, PlateLoadKPa: 0, FootingWidthM: 1},
		"negative width": {SoilType: Sandy, PlateLoadKPa: 100, FootingWidthM: -1},
		"nan load":       {SoilType: Silty, PlateLoadKPa: math.NaN(), FootingWidthM: 1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Calculate(in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestHandlerCalc(t *testing.T) {
	body := `{"soil_type":"silty","plate_load_kpa":100,"footing_width_m":0.9,"water_table":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/tools/soil/calc", strings.NewReader(body))
	rec := httptest.NewRecorder()

	(&Handler{}).Calc(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.InDelta(t, 80, res.SafeCapacityKPa, 1e-9)
	assert.Len(t, res.Recommendations, 4)

	req = httptest.NewRequest(http.MethodPost, "/api/tools/soil/calc", strings.NewReader(`{"soil_type":"rocky"}`))
	rec = httptest.NewRecorder()
	(&Handler{}).Calc(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
