package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"CiviAI/internal/calc/beam"
	"CiviAI/internal/diagram"

	"github.com/phpdave11/gofpdf"
)

const (
	DefaultTitle = "Engineering Report"
	Footer       = "Generated by CiviAI - Civil Engineering Assistant"
)

var ErrInvalidInput = errors.New("invalid input")

// Input mirrors the report form. Section bodies accept light markdown:
// "#" headings and "-" or "*" bullets.
type Input struct {
	ProjectTitle string      `json:"projectTitle"`
	ProjectType  string      `json:"projectType"`
	ClientName   string      `json:"clientName,omitempty"`
	Location     string      `json:"location,omitempty"`
	Objective    string      `json:"objective"`
	Materials    string      `json:"materials"`
	Methodology  string      `json:"methodology"`
	Results      string      `json:"results"`
	Beam         *beam.Input `json:"beam,omitempty"`
}

var whitespace = regexp.MustCompile(`\s+`)

// Filename is the download name for a report titled title.
func Filename(title string) string {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return whitespace.ReplaceAllString(title, "-") + "-Report.pdf"
}

var headingColor = [3]int{51, 51, 102}

type writer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// Generate renders the report as an A4 PDF dated date. An attached beam is
// analysed and its diagrams are embedded; analysis errors are returned as is.
func Generate(in Input, date time.Time, out io.Writer) error {
	if strings.TrimSpace(in.ProjectType) == "" {
		return fmt.Errorf("%w: project type is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.ProjectTitle) == "" {
		in.ProjectTitle = DefaultTitle
	}
	var analysis *beam.Result
	if in.Beam != nil {
		res, err := beam.Analyze(*in.Beam)
		if err != nil {
			return err
		}
		analysis = &res
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(in.ProjectTitle, true)
	pdf.SetCreator("CiviAI", false)
	pdf.SetCreationDate(date)
	pdf.SetAutoPageBreak(true, 20)
	w := &writer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, 4, Footer, "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 4, "Date: "+date.Format("2006-01-02"), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(headingColor[0], headingColor[1], headingColor[2])
	pdf.MultiCell(0, 9, w.tr(in.ProjectTitle), "", "C", false)
	pdf.Ln(4)

	w.field("Project Type", in.ProjectType)
	if in.ClientName != "" {
		w.field("Client", in.ClientName)
	}
	if in.Location != "" {
		w.field("Location", in.Location)
	}

	w.section("Objective", in.Objective)
	w.section("Materials Used", in.Materials)
	w.section("Methodology", in.Methodology)
	w.section("Results & Findings", in.Results)

	if analysis != nil {
		if err := w.beam(*analysis); err != nil {
			return err
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return pdf.Output(out)
}

func (w *writer) field(label, value string) {
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.SetFont("Helvetica", "B", 11)
	w.pdf.CellFormat(32, 6, w.tr(label+":"), "", 0, "L", false, 0, "")
	w.pdf.SetFont("Helvetica", "", 11)
	w.pdf.MultiCell(0, 6, w.tr(value), "", "L", false)
}

func (w *writer) heading(text string, size float64) {
	w.pdf.Ln(4)
	w.pdf.SetFont("Helvetica", "B", size)
	w.pdf.SetTextColor(headingColor[0], headingColor[1], headingColor[2])
	w.pdf.MultiCell(0, size/2+1, w.tr(text), "", "L", false)
	w.pdf.SetTextColor(0, 0, 0)
}

func (w *writer) section(title, body string) {
	w.heading(title, 14)
	w.markdown(body)
}

func (w *writer) markdown(body string) {
	w.pdf.SetFont("Helvetica", "", 11)
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			w.pdf.Ln(3)
		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			w.heading(strings.TrimSpace(trimmed[level:]), 14-float64(min(level, 3)))
			w.pdf.SetFont("Helvetica", "", 11)
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			w.pdf.CellFormat(6, 6, "", "", 0, "L", false, 0, "")
			w.pdf.CellFormat(4, 6, w.tr("•"), "", 0, "L", false, 0, "")
			w.pdf.MultiCell(0, 6, w.tr(strings.TrimSpace(trimmed[2:])), "", "L", false)
		default:
			w.pdf.MultiCell(0, 6, w.tr(trimmed), "", "L", false)
		}
	}
}

func (w *writer) beam(res beam.Result) error {
	w.heading("Beam Analysis", 14)
	w.pdf.SetFont("Helvetica", "", 10)
	w.pdf.MultiCell(0, 5, w.tr(res.Notes), "", "L", false)
	w.pdf.Ln(2)

	rows := [][2]string{
		{"Support", string(res.Support)},
		{"Load", string(res.Load)},
		{"Span", fmt.Sprintf("%.3f m", res.SpanM)},
		{"Load magnitude", fmt.Sprintf("%.3f", res.LoadMagnitude)},
		{"Max bending moment", fmt.Sprintf("%.3f kN·m", res.MaxBendingMoment)},
		{"Max shear force", fmt.Sprintf("%.3f kN", res.MaxShearForce)},
		{"Max deflection (approx.)", fmt.Sprintf("%.6f m", res.MaxDeflection)},
	}
	if sc := res.Section; sc != nil {
		verdict := "within limit"
		if !sc.OKDeflection {
			verdict = "exceeds limit"
		}
		stressVerdict := "within limit"
		if !sc.OKStress {
			stressVerdict = "exceeds limit"
		}
		rows = append(rows,
			[2]string{"Bending stress", fmt.Sprintf("%.2f MPa (allowable %.2f MPa, %s)", sc.BendingStressMPa, sc.AllowableStressMPa, stressVerdict)},
			[2]string{"Average shear stress", fmt.Sprintf("%.2f MPa", sc.AverageShearMPa)},
			[2]string{"Section deflection", fmt.Sprintf("%.2f mm (L/%g = %.2f mm, %s)", sc.DeflectionMM, sc.DeflectionLimitRatio, sc.DeflectionLimitMM, verdict)},
		)
	}
	for _, row := range rows {
		w.pdf.SetFont("Helvetica", "B", 10)
		w.pdf.CellFormat(60, 6, w.tr(row[0]), "1", 0, "L", false, 0, "")
		w.pdf.SetFont("Helvetica", "", 10)
		w.pdf.CellFormat(0, 6, w.tr(row[1]), "1", 1, "L", false, 0, "")
	}

	for i, s := range []diagram.Series{res.MomentSeries(), res.ShearSeries()} {
		if err := w.chart(fmt.Sprintf("chart-%d", i), s); err != nil {
			return err
		}
	}

	w.heading("Sampled Values", 12)
	header := []string{"Position (m)", "Bending moment (kN·m)", "Shear force (kN)"}
	w.pdf.SetFont("Helvetica", "B", 9)
	w.pdf.SetFillColor(242, 242, 242)
	for i, h := range header {
		ln := 0
		if i == len(header)-1 {
			ln = 1
		}
		w.pdf.CellFormat(60, 6, w.tr(h), "1", ln, "C", true, 0, "")
	}
	w.pdf.SetFont("Helvetica", "", 9)
	for _, s := range res.Samples {
		w.pdf.CellFormat(60, 5, fmt.Sprintf("%.3f", s.PositionM), "1", 0, "R", false, 0, "")
		w.pdf.CellFormat(60, 5, fmt.Sprintf("%.3f", s.BendingMomentKNM), "1", 0, "R", false, 0, "")
		w.pdf.CellFormat(60, 5, fmt.Sprintf("%.3f", s.ShearForceKN), "1", 1, "R", false, 0, "")
	}
	return nil
}

func (w *writer) chart(name string, s diagram.Series) error {
	var buf bytes.Buffer
	if err := diagram.WritePNG(s, &buf, diagram.DefaultWidth, diagram.DefaultHeight); err != nil {
		return fmt.Errorf("render %s: %w", strings.ToLower(s.Title), err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	w.pdf.RegisterImageOptionsReader(name, opts, &buf)
	left, _, right, _ := w.pdf.GetMargins()
	pageW, _ := w.pdf.GetPageSize()
	w.pdf.Ln(4)
	w.pdf.ImageOptions(name, left, -1, pageW-left-right, 0, true, opts, 0, "")
	return nil
}
