package main

import (
	"fmt"
	"text/tabwriter"

	"CiviAI/internal/calc/loads"
	"CiviAI/internal/calc/material"
	"CiviAI/internal/calc/soil"

	"github.com/spf13/cobra"
)

var (
	matInput material.Input
	matType  string
	matGrade string

	soilInput soil.Input
	soilType  string

	loadsInput loads.Input
)

var materialCmd = &cobra.Command{
	Use:   "material",
	Short: "Estimate concrete and steel quantities and cost",
	Long: `Estimate the concrete volume, cement/sand/aggregate/steel weights and
their cost for a wall, column, beam or slab.

Dimensions:
  wall    --length (m) --height (m) --thickness (mm)
  column  --length --width --height (all mm)
  beam    --length --width --height (all mm)
  slab    --length (m) --width (m) --thickness (mm)

Example:
  civicalc material --type slab --length 5 --width 4 --thickness 150 --grade M25 --steel 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		matInput.StructureType = material.StructureType(matType)
		matInput.ConcreteGrade = material.Grade(matGrade)
		res, err := material.Calculate(matInput)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, res)
		}
		rule(out, "MATERIAL ESTIMATE")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Structure:\t%s (%s, mix %s)\n", res.StructureType, res.ConcreteGrade, res.MixRatio)
		fmt.Fprintf(w, "  Volume:\t%.3f m³\n", res.VolumeM3)
		fmt.Fprintf(w, "  \tWeight (kg)\tCost\n")
		fmt.Fprintf(w, "  Cement\t%.2f\t%.2f\n", res.WeightsKG.Cement, res.Costs.Cement)
		fmt.Fprintf(w, "  Sand\t%.2f\t%.2f\n", res.WeightsKG.Sand, res.Costs.Sand)
		fmt.Fprintf(w, "  Aggregate\t%.2f\t%.2f\n", res.WeightsKG.Aggregate, res.Costs.Aggregate)
		fmt.Fprintf(w, "  Steel\t%.2f\t%.2f\n", res.WeightsKG.Steel, res.Costs.Steel)
		fmt.Fprintf(w, "  Total cost:\t\t%.2f\n", res.TotalCost)
		return w.Flush()
	},
}

var soilCmd = &cobra.Command{
	Use:   "soil",
	Short: "Safe bearing capacity from a plate load test",
	Long: `Extrapolate a 0.3 m plate load test to a square footing and apply a
factor of safety of 2.5.

Example:
  civicalc soil --type sandy --plate-load 150 --footing-width 1.5 --water-table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		soilInput.SoilType = soil.Type(soilType)
		res, err := soil.Calculate(soilInput)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, res)
		}
		rule(out, "SOIL BEARING CAPACITY")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Soil:\t%s\n", res.SoilType)
		fmt.Fprintf(w, "  Ultimate capacity:\t%.2f kPa\n", res.UltimateCapacityKPa)
		fmt.Fprintf(w, "  Safe capacity:\t%.2f kPa\n", res.SafeCapacityKPa)
		fmt.Fprintf(w, "  Allowable load:\t%.2f kN\n", res.AllowableLoadKN)
		w.Flush()
		fmt.Fprintln(out, "\nRecommendations:")
		for _, r := range res.Recommendations {
			fmt.Fprintf(out, "  • %s\n", r)
		}
		fmt.Fprintf(out, "\nNote: %s\n", res.Notes)
		return nil
	},
}

var loadsCmd = &cobra.Command{
	Use:   "loads",
	Short: "IS 456 limit state load combinations",
	Long: `Factor dead, imposed and lateral (wind or earthquake) loads with the
IS 456 Table 18 partial safety factors and report the governing combination.

Example:
  civicalc loads --dead 50 --imposed 30 --lateral 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loads.Calculate(loadsInput)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, res)
		}
		rule(out, "LOAD COMBINATIONS (IS 456 TABLE 18)")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Combination\tDesign load (kN)\t\n")
		for _, c := range res.Combinations {
			marker := ""
			if c.Name == res.Governing.Name {
				marker = "← governs"
			}
			fmt.Fprintf(w, "  %s\t%.2f\t%s\n", c.Name, c.DesignKN, marker)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(materialCmd, soilCmd, loadsCmd)

	f := materialCmd.Flags()
	f.StringVarP(&matType, "type", "t", "", "Structure type (wall, column, beam, slab)")
	f.StringVarP(&matGrade, "grade", "g", string(material.M20), "Concrete grade (M20, M25, M30)")
	f.Float64Var(&matInput.Length, "length", 0, "Length")
	f.Float64Var(&matInput.Width, "width", 0, "Width")
	f.Float64Var(&matInput.Height, "height", 0, "Height")
	f.Float64Var(&matInput.ThicknessMM, "thickness", 0, "Thickness (mm)")
	f.Float64Var(&matInput.SteelPercentage, "steel", 0, "Steel percentage of the concrete volume")
	materialCmd.MarkFlagRequired("type")

	f = soilCmd.Flags()
	f.StringVarP(&soilType, "type", "t", "", "Soil type (sandy, clayey, silty)")
	f.Float64Var(&soilInput.PlateLoadKPa, "plate-load", 0, "Plate load test result (kPa)")
	f.Float64Var(&soilInput.FootingWidthM, "footing-width", 0, "Footing width (m)")
	f.BoolVar(&soilInput.WaterTable, "water-table", false, "Water table at or near the footing")
	soilCmd.MarkFlagRequired("type")

	f = loadsCmd.Flags()
	f.Float64VarP(&loadsInput.DeadKN, "dead", "d", 0, "Dead load (kN)")
	f.Float64VarP(&loadsInput.ImposedKN, "imposed", "l", 0, "Imposed load (kN)")
	f.Float64VarP(&loadsInput.LateralKN, "lateral", "e", 0, "Wind or earthquake load (kN)")
}
