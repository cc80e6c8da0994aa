package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/hicognition/hicolink/internal/event"
	"github.com/hicognition/hicolink/internal/link"
	"github.com/hicognition/hicolink/internal/matrixops"
	"github.com/hicognition/hicolink/internal/registry"
	"github.com/hicognition/hicolink/internal/session"
	"github.com/hicognition/hicolink/internal/tui/styles"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through the linking protocol on generated widgets",
	Long: `Walk through the linking protocol on three generated pileup widgets,
printing every widget's state after each step.

Use --colors to shrink the indicator palette and watch a share fail once
every color is taken.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().Int("colors", 0, "use only the first N palette colors (0 uses all)")
	rootCmd.AddCommand(demoCmd)
}

const demoCollection = "demo"

type demoStep struct {
	title string
	run   func(s *session.Session) error
}

var demoSteps = []demoStep{
	{"left picks a sort-order donor and clicks middle", func(s *session.Session) error {
		return share(s, event.ChannelSortOrder, "left", "middle")
	}},
	{"right takes the same sort order; middle now has two recipients", func(s *session.Session) error {
		return share(s, event.ChannelSortOrder, "right", "middle")
	}},
	{"middle switches to region sorting; its recipients follow", func(s *session.Session) error {
		return s.SetSortMode(demoCollection, "middle", link.ModeRegion)
	}},
	{"middle takes the value scale of right", func(s *session.Session) error {
		return share(s, event.ChannelValueScale, "middle", "right")
	}},
	{"left takes the value scale of middle, chaining right's scale through it", func(s *session.Session) error {
		return share(s, event.ChannelValueScale, "left", "middle")
	}},
	{"left starts a selection and the background is clicked", func(s *session.Session) error {
		if err := s.StartShare(event.ChannelValueScale, demoCollection, "left"); err != nil {
			return err
		}
		return s.ClickBackground()
	}},
	{"right stops using its sort-order donor", func(s *session.Session) error {
		return s.StopShare(event.ChannelSortOrder, demoCollection, "right")
	}},
	{"middle is deleted; left falls back to its own order", func(s *session.Session) error {
		return s.DeleteWidget(demoCollection, "middle")
	}},
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(false)
	if err != nil {
		return err
	}
	defer logger.Close()

	if n, _ := cmd.Flags().GetInt("colors"); n > 0 && n < len(cfg.Palette.Colors) {
		cfg.Palette.Colors = cfg.Palette.Colors[:n]
	}

	s, err := session.New(cfg, session.WithLogger(logger))
	if err != nil {
		return err
	}
	defer s.Close()

	if err := mountDemo(s); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printDemoState(out, "initial state", s)
	for i, step := range demoSteps {
		title := fmt.Sprintf("%d. %s", i+1, step.title)
		if err := step.run(s); err != nil {
			title += "\n   " + styles.WarningMsg.Render(err.Error())
		}
		printDemoState(out, title, s)
	}
	return nil
}

func share(s *session.Session, ch event.Channel, recipient, donor string) error {
	if err := s.StartShare(ch, demoCollection, recipient); err != nil {
		return err
	}
	return s.Click(demoCollection, donor)
}

// mountDemo adds three 8x9 widgets whose rows rank differently under every
// sort mode.
func mountDemo(s *session.Session) error {
	if _, err := s.CreateCollection(demoCollection, map[string]string{"source": "generated"}); err != nil {
		return err
	}
	const rows, cols = 8, 9
	gens := map[string]func(r, c int) float64{
		"left":   func(r, c int) float64 { return float64(r + c%3) },
		"middle": func(r, c int) float64 { return float64((rows-r)*(c+1)) / 4 },
		"right":  func(r, c int) float64 { return float64((r*5)%rows) + float64(c)/10 },
	}
	for _, id := range []string{"left", "middle", "right"} {
		data := make([]float64, 0, rows*cols)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				data = append(data, gens[id](r, c))
			}
		}
		rec := registry.Widget{CollectionID: demoCollection, ID: id, Type: "pileup", Dataset: id}
		if _, err := s.AddWidgetWithMatrix(rec, matrixops.New(data, rows, cols)); err != nil {
			return err
		}
	}
	return nil
}

func printDemoState(w io.Writer, title string, s *session.Session) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("widget", "sort order", "sort link", "value scale", "scale link", "first rows")

	for _, v := range s.Views() {
		rec := v.Record
		t.Row(
			rec.ID,
			sortLabelText(rec.SortOrder),
			linkLabelText(v.SortState, rec.SortOrder.Relationship),
			fmt.Sprintf("%.3g..%.3g %s", rec.ValueScale.Min, rec.ValueScale.Max, rec.ValueScale.Colormap),
			linkLabelText(v.ScaleState, rec.ValueScale.Relationship),
			firstRows(v),
		)
	}
	fmt.Fprintln(w, styles.Header.Render(title))
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w)
}

func sortLabelText(s registry.SortOrderState) string {
	dir := "desc"
	if s.Ascending {
		dir = "asc"
	}
	return s.SelectedOrder + " " + dir
}

func linkLabelText(state link.State, rel registry.Relationship) string {
	label := state.String()
	if rel.TargetID != "" {
		label += " <- " + rel.TargetID + " " + rel.TargetColor
	}
	if rel.RecipientCount > 0 {
		label += fmt.Sprintf(" donor x%d %s", rel.RecipientCount, rel.IndicatorColor)
	}
	return label
}

// firstRows names the original rows shown first, identified by their center
// column value.
func firstRows(v session.View) string {
	if !v.HasData() {
		return "-"
	}
	center := matrixops.CenterColumnIndex(v.Sorted.Shape)
	var out string
	for r := 0; r < min(4, v.Sorted.Shape.Rows); r++ {
		if r > 0 {
			out += " "
		}
		out += strconv.FormatFloat(v.Sorted.At(r, center), 'g', 3, 64)
	}
	return out
}
