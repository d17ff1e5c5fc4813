package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"CiviAI/internal/calc/beam"
	"CiviAI/internal/diagram"

	"github.com/spf13/cobra"
)

var (
	beamSupport   string
	beamLoad      string
	beamSpan      float64
	beamMagnitude float64
	beamWidth     float64
	beamDepth     float64
	beamStress    float64
	beamASCII     bool
	beamPNG       string
	beamXLSX      string
)

var beamCmd = &cobra.Command{
	Use:   "beam",
	Short: "Analyse a simply supported or cantilever beam",
	Long: `Compute the maximum bending moment, shear force and an indicative
deflection, plus 21 equally spaced samples along the span.

Examples:
  # 6 m simply supported beam with a 20 kN/m UDL
  civicalc beam --support simply-supported --load udl --span 6 --magnitude 20

  # Cantilever with a 10 kN tip load, terminal diagrams and a section check
  civicalc beam --support cantilever --load point --span 3 --magnitude 10 \
    --width 300 --depth 500 --ascii

  # Save the diagrams and an Excel workbook
  civicalc beam --span 6 --magnitude 20 --png beam --xlsx beam.xlsx`,
	RunE: runBeam,
}

func init() {
	rootCmd.AddCommand(beamCmd)

	beamCmd.Flags().StringVarP(&beamSupport, "support", "s", string(beam.SimplySupported), "Support type (simply-supported, cantilever)")
	beamCmd.Flags().StringVarP(&beamLoad, "load", "l", string(beam.UDL), "Load type (udl, point)")
	beamCmd.Flags().Float64VarP(&beamSpan, "span", "L", 0, "Span (m)")
	beamCmd.Flags().Float64VarP(&beamMagnitude, "magnitude", "w", 0, "Load magnitude (kN/m for udl, kN for point)")
	beamCmd.Flags().Float64Var(&beamWidth, "width", 0, "Section width (mm), enables the section check with --depth")
	beamCmd.Flags().Float64Var(&beamDepth, "depth", 0, "Section depth (mm)")
	beamCmd.Flags().Float64Var(&beamStress, "allowable-stress", 0, "Allowable bending stress for the section check (MPa, default 14)")
	beamCmd.Flags().BoolVar(&beamASCII, "ascii", false, "Draw the moment and shear diagrams in the terminal")
	beamCmd.Flags().StringVar(&beamPNG, "png", "", "Write <prefix>-moment.png and <prefix>-shear.png")
	beamCmd.Flags().StringVar(&beamXLSX, "xlsx", "", "Write the analysis to an Excel workbook")
	beamCmd.MarkFlagRequired("span")
	beamCmd.MarkFlagRequired("magnitude")
}

func runBeam(cmd *cobra.Command, args []string) error {
	in := beam.Input{
		Support:       beam.Support(beamSupport),
		Load:          beam.Load(beamLoad),
		SpanM:         beamSpan,
		LoadMagnitude: beamMagnitude,
		WidthMM:       beamWidth,
		DepthMM:       beamDepth,

		AllowableStressMPa: beamStress,
	}
	res, err := beam.Analyze(in)
	if err != nil {
		return err
	}
	cliLog.Debug().Str("support", beamSupport).Str("load", beamLoad).Float64("span", beamSpan).Msg("beam analysed")

	if beamPNG != "" {
		if err := writePNG(beamPNG+"-moment.png", res.MomentSeries()); err != nil {
			return err
		}
		if err := writePNG(beamPNG+"-shear.png", res.ShearSeries()); err != nil {
			return err
		}
	}
	if beamXLSX != "" {
		if err := writeFile(beamXLSX, func(w io.Writer) error { return beam.ExportWorkbook(res, w) }); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, res)
	}
	printBeam(out, res)
	if beamASCII {
		for _, s := range []diagram.Series{res.MomentSeries(), res.ShearSeries()} {
			chart, err := diagram.ASCII(s, 10)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, chart)
		}
	}
	return nil
}

func printBeam(out io.Writer, res beam.Result) {
	rule(out, "BEAM ANALYSIS")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Configuration:\t%s, %s\n", res.Support, res.Load)
	fmt.Fprintf(w, "  Span:\t%.2f m\n", res.SpanM)
	fmt.Fprintf(w, "  Load:\t%.2f\n", res.LoadMagnitude)
	fmt.Fprintf(w, "  Max bending moment:\t%.2f kN·m\n", res.MaxBendingMoment)
	fmt.Fprintf(w, "  Max shear force:\t%.2f kN\n", res.MaxShearForce)
	fmt.Fprintf(w, "  Max deflection:\t%.6f m\n", res.MaxDeflection)
	if s := res.Section; s != nil {
		fmt.Fprintf(w, "  Bending stress:\t%.2f MPa (allowable %.2f MPa)\n", s.BendingStressMPa, s.AllowableStressMPa)
		fmt.Fprintf(w, "  Section deflection:\t%.2f mm (limit %.2f mm)\n", s.DeflectionMM, s.DeflectionLimitMM)
		fmt.Fprintf(w, "  Stress check:\t%s\n", verdict(s.OKStress))
		fmt.Fprintf(w, "  Deflection check:\t%s\n", verdict(s.OKDeflection))
	}
	w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "x (m)\tM (kN·m)\tV (kN)\t\n")
	for _, s := range res.Samples {
		fmt.Fprintf(w, "%.2f\t%.2f\t%.2f\t\n", s.PositionM, s.BendingMomentKNM, s.ShearForceKN)
	}
	w.Flush()
	if res.Notes != "" {
		fmt.Fprintf(out, "\nNote: %s\n", res.Notes)
	}
}

func verdict(ok bool) string {
	if ok {
		return "OK"
	}
	return "EXCEEDS LIMIT"
}

func writePNG(path string, s diagram.Series) error {
	return writeFile(path, func(w io.Writer) error {
		return diagram.WritePNG(s, w, diagram.DefaultWidth, diagram.DefaultHeight)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	cliLog.Info().Str("path", path).Msg("file written")
	return nil
}
