package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hicognition/hicolink/internal/config"
	"github.com/hicognition/hicolink/internal/matrixops"
	"github.com/hicognition/hicolink/internal/pileup"
	"github.com/hicognition/hicolink/internal/tui/styles"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Summarize the values of a pileup file",
	Long: `Summarize the values of a pileup file: its shape, value range,
percentiles and the per-mil ranks a widget uses for its own value scale,
followed by the normalized column profile.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Bool("log2", false, "treat zeros as missing values")
	statsCmd.Flags().Float64Slice("percentiles", []float64{1, 5, 25, 50, 75, 95, 99}, "percentiles to report")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log2, _ := cmd.Flags().GetBool("log2")
	percentiles, _ := cmd.Flags().GetFloat64Slice("percentiles")

	loader, err := pileup.NewLoader(afero.NewOsFs(), "", "*", log2 || cfg.Data.Log2)
	if err != nil {
		return err
	}
	m, err := loader.Load(args[0])
	if err != nil {
		return err
	}
	return writeStats(cmd.OutOrStdout(), args[0], m, percentiles, cfg.ValueScale.LowerPerMil, cfg.ValueScale.UpperPerMil)
}

func writeStats(w io.Writer, name string, m matrixops.Matrix, percentiles []float64, lowerPerMil, upperPerMil float64) error {
	values := m.Dense()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("statistic", "value")

	t.Row("shape", fmt.Sprintf("%d x %d", m.Shape.Rows, m.Shape.Cols))
	if lo, ok := matrixops.MinArray(values); ok {
		hi, _ := matrixops.MaxArray(values)
		t.Row("min", formatValue(lo))
		t.Row("max", formatValue(hi))
	} else {
		t.Row("values", "none")
	}
	for _, p := range percentiles {
		if v, ok := matrixops.Percentile(values, p); ok {
			t.Row(fmt.Sprintf("p%s", strconv.FormatFloat(p, 'g', -1, 64)), formatValue(v))
		}
	}
	for _, p := range []float64{lowerPerMil, upperPerMil} {
		if v, ok := matrixops.PerMilRank(values, p); ok {
			t.Row(fmt.Sprintf("per-mil %s", strconv.FormatFloat(p, 'g', -1, 64)), formatValue(v))
		}
	}
	t.Row("center column", strconv.Itoa(matrixops.CenterColumnIndex(m.Shape)))

	fmt.Fprintln(w, styles.Header.Render(name))
	fmt.Fprintln(w, t.Render())

	if means, ok := matrixops.MeanAlongColumns(transpose(m)); ok {
		if profile, ok := matrixops.NormalizeLineProfile(means); ok {
			fmt.Fprintf(w, "column profile: %s\n", sparkline(profile))
		}
	}
	if maxima, ok := matrixops.MaxAlongRows(m); ok {
		if profile, ok := matrixops.NormalizeLineProfile(maxima); ok {
			fmt.Fprintf(w, "column maxima:  %s\n", sparkline(profile))
		}
	}
	return nil
}

// transpose swaps rows and columns so row means of the result are column
// means of m.
func transpose(m matrixops.Matrix) matrixops.Matrix {
	data := make([]float64, 0, m.Shape.Size())
	for c := 0; c < m.Shape.Cols; c++ {
		for r := 0; r < m.Shape.Rows; r++ {
			data = append(data, m.At(r, c))
		}
	}
	return matrixops.New(data, m.Shape.Cols, m.Shape.Rows)
}

func sparkline(profile []float64) string {
	var b strings.Builder
	for _, v := range profile {
		if matrixops.IsMissing(v) {
			b.WriteString("·")
			continue
		}
		b.WriteString(styles.Shade(v, 0, 1))
	}
	return b.String()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
