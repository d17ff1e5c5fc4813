package beam

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestImportWorkbook(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"support", "load", "span_m", "load_magnitude", "width_mm", "depth_mm"},
		{"simply-supported", "udl", 6, 20},
		{" Cantilever ", "POINT", "2", "5", 200, 300},
		{},
		{"fixed", "udl", 3, 10},
		{"cantilever", "udl", "abc", 10},
	})

	res, err := ImportWorkbook(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	require.Len(t, res.Results, 2)
	assert.InDelta(t, 90, res.Results[0].MaxBendingMoment, eps)
	assert.Equal(t, Cantilever, res.Results[1].Support)
	assert.NotNil(t, res.Results[1].Section)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 5, res.Skipped[0].Row)
	assert.Contains(t, res.Skipped[0].Reason, "unsupported")
	assert.Equal(t, 6, res.Skipped[1].Row)
	assert.Contains(t, res.Skipped[1].Reason, "span_m")
}

func TestImportWorkbookHeaderOnly(t *testing.T) {
	buf := workbook(t, [][]interface{}{{"support", "load", "span_m", "load_magnitude"}})
	_, err := ImportWorkbook(buf)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestImportWorkbookNotXLSX(t *testing.T) {
	_, err := ImportWorkbook(strings.NewReader("support,load\nsimply-supported,udl\n"))
	assert.Error(t, err)
}

func TestExportWorkbook(t *testing.T) {
	res, err := Analyze(Input{Support: SimplySupported, Load: UDL, SpanM: 6, LoadMagnitude: 20})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportWorkbook(res, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, samplesSheet}, f.GetSheetList())

	support, err := f.GetCellValue(summarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "simply-supported", support)

	moment, err := f.GetCellValue(summarySheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "90", moment)

	rows, err := f.GetRows(samplesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, SampleIntervals+2)
	assert.Equal(t, "Position (m)", rows[0][0])
	assert.Equal(t, "6", rows[len(rows)-1][0])
}
