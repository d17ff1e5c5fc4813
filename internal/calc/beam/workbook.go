package beam

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SkippedRow reports a workbook row that could not be analysed.
// Row is 1-based, as shown in spreadsheet software.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Count   int          `json:"count"`
	Results []Result     `json:"results"`
	Skipped []SkippedRow `json:"skipped,omitempty"`
}

// ImportWorkbook reads beam configurations from the first sheet of an xlsx
// workbook. The first row is a header. Columns:
// support, load, span_m, load_magnitude, width_mm (optional), depth_mm (optional).
func ImportWorkbook(r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return ImportResult{}, fmt.Errorf("%w: sheet %q has no data rows", ErrInvalidInput, sheet)
	}

	out := ImportResult{Results: []Result{}}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		input, err := parseRow(row)
		if err != nil {
			out.Skipped = append(out.Skipped, SkippedRow{Row: i + 1, Reason: err.Error()})
			continue
		}
		res, err := Analyze(input)
		if err != nil {
			out.Skipped = append(out.Skipped, SkippedRow{Row: i + 1, Reason: err.Error()})
			continue
		}
		out.Results = append(out.Results, res)
	}
	out.Count = len(out.Results)
	return out, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string) (Input, error) {
	if len(row) < 4 {
		return Input{}, fmt.Errorf("expected at least 4 columns, got %d", len(row))
	}
	span, err := toFloat(row[2])
	if err != nil {
		return Input{}, fmt.Errorf("span_m: %w", err)
	}
	load, err := toFloat(row[3])
	if err != nil {
		return Input{}, fmt.Errorf("load_magnitude: %w", err)
	}
	in := Input{
		Support:       Support(strings.ToLower(strings.TrimSpace(row[0]))),
		Load:          Load(strings.ToLower(strings.TrimSpace(row[1]))),
		SpanM:         span,
		LoadMagnitude: load,
	}
	if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
		if in.WidthMM, err = toFloat(row[4]); err != nil {
			return Input{}, fmt.Errorf("width_mm: %w", err)
		}
	}
	if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
		if in.DepthMM, err = toFloat(row[5]); err != nil {
			return Input{}, fmt.Errorf("depth_mm: %w", err)
		}
	}
	return in, nil
}

func toFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

const (
	summarySheet = "Summary"
	samplesSheet = "Samples"
)

// ExportWorkbook writes the analysis summary and the sampled curves to an
// xlsx workbook.
func ExportWorkbook(res Result, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	summary := [][]interface{}{
		{"Support", string(res.Support)},
		{"Load", string(res.Load)},
		{"Span (m)", res.SpanM},
		{"Load magnitude", res.LoadMagnitude},
		{"Max bending moment (kN·m)", res.MaxBendingMoment},
		{"Max shear force (kN)", res.MaxShearForce},
		{"Max deflection (m, approx.)", res.MaxDeflection},
		{"Notes", res.Notes},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(samplesSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(samplesSheet, "A1", &[]interface{}{"Position (m)", "Bending moment (kN·m)", "Shear force (kN)"}); err != nil {
		return err
	}
	for i, s := range res.Samples {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(samplesSheet, cell, &[]interface{}{s.PositionM, s.BendingMomentKNM, s.ShearForceKN}); err != nil {
			return err
		}
	}

	return f.Write(w)
}
