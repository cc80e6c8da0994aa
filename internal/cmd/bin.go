package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hicognition/hicolink/internal/config"
	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/matrixops"
	"github.com/hicognition/hicolink/internal/tui/styles"
)

var binCmd = &cobra.Command{
	Use:   "bin <points.json>",
	Short: "Bin 2-D points into a square grid",
	Long: `Bin 2-D points into a square grid the way a stackup overview is
drawn. The file holds either a list of [x, y] pairs or an object
{"points": [[x, y], ...], "overlay": [v, ...]} where overlay gives every
point a weight. Cells without points print as a dot.`,
	Args: cobra.ExactArgs(1),
	RunE: runBin,
}

func init() {
	binCmd.Flags().Int("size", 0, "grid size (default binning.size)")
	binCmd.Flags().String("aggregation", "", "sum or mean (default binning.aggregation)")
	binCmd.Flags().Bool("shade", false, "print shaded cells instead of numbers")
	rootCmd.AddCommand(binCmd)
}

// pointFile is the object form of a points file.
type pointFile struct {
	Points  [][2]float64 `json:"points"`
	Overlay []float64    `json:"overlay"`
}

func runBin(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	size, _ := cmd.Flags().GetInt("size")
	if size == 0 {
		size = cfg.Binning.Size
	}
	aggName, _ := cmd.Flags().GetString("aggregation")
	if aggName == "" {
		aggName = cfg.Binning.Aggregation
	}
	agg, err := matrixops.ParseAggregation(aggName)
	if err != nil {
		return errors.NewValidationError("invalid aggregation").WithField("aggregation").WithValue(aggName).WithCause(err)
	}
	shade, _ := cmd.Flags().GetBool("shade")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	pf, err := parsePoints(data)
	if err != nil {
		return errors.NewDataError("cannot decode points", err).WithPath(args[0])
	}

	flat := make([]float64, 0, 2*len(pf.Points))
	for _, p := range pf.Points {
		flat = append(flat, p[0], p[1])
	}
	grid, ok := matrixops.RectBin(size, flat, pf.Overlay, agg)
	if !ok {
		return errors.NewValidationError("points cannot be binned").
			WithField("points").WithValue(fmt.Sprintf("%d points, %d overlay values, size %d", len(pf.Points), len(pf.Overlay), size))
	}
	writeGrid(cmd.OutOrStdout(), grid, shade)
	return nil
}

func parsePoints(data []byte) (pointFile, error) {
	var pf pointFile
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err := json.Unmarshal(trimmed, &pf.Points)
		return pf, err
	}
	err := json.Unmarshal(trimmed, &pf)
	return pf, err
}

func writeGrid(w io.Writer, grid [][]float64, shade bool) {
	lo, hi := 0.0, 0.0
	if shade {
		var all []float64
		for _, row := range grid {
			all = append(all, row...)
		}
		lo, _ = matrixops.MinArray(all)
		hi, _ = matrixops.MaxArray(all)
	}

	for _, row := range grid {
		cells := make([]string, len(row))
		for i, v := range row {
			switch {
			case matrixops.IsMissing(v):
				cells[i] = "."
			case shade:
				cells[i] = styles.Shade(v, lo, hi)
			default:
				cells[i] = formatValue(v)
			}
		}
		sep := " "
		if shade {
			sep = ""
		}
		fmt.Fprintln(w, strings.Join(cells, sep))
	}
}
