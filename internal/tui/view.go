package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hicognition/hicolink/internal/link"
	"github.com/hicognition/hicolink/internal/notify"
	"github.com/hicognition/hicolink/internal/registry"
	"github.com/hicognition/hicolink/internal/session"
	"github.com/hicognition/hicolink/internal/tui/styles"
)

// Preview limits
const (
	tileWidth      = 36
	previewRows    = 6
	previewColumns = 16
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.Header.Render(fmt.Sprintf("hicolink  %d widgets", len(m.views))))
	b.WriteString("\n")

	if len(m.views) == 0 {
		b.WriteString(styles.Muted.Render("No widgets. Load a layout with --layout."))
		b.WriteString("\n")
	}

	start := 0
	for i := 1; i <= len(m.views); i++ {
		if i < len(m.views) && m.views[i].Record.CollectionID == m.views[start].Record.CollectionID {
			continue
		}
		b.WriteString(m.renderCollection(start, i))
		b.WriteString("\n")
		start = i
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	if m.renaming {
		b.WriteString(styles.SearchPrompt.Render(m.input.View()))
	} else {
		b.WriteString(styles.HelpBar.Render(m.help.View(m.keys)))
	}
	return b.String()
}

// renderCollection renders views[start:end], which share one collection, as
// rows of tiles that fit the terminal width.
func (m Model) renderCollection(start, end int) string {
	perRow := 1
	if m.width > 0 {
		perRow = max(1, m.width/(tileWidth+4))
	}

	var rows []string
	var row []string
	for i := start; i < end; i++ {
		row = append(row, renderTile(m.views[i], i == m.focus))
		if len(row) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	title := styles.CollectionTitle.Render("collection " + m.views[start].Record.CollectionID)
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, rows...)...)
}

func renderTile(v session.View, focused bool) string {
	rec := v.Record
	titleStyle := styles.TileTitle
	if focused {
		titleStyle = styles.TileFocused
	}

	inner := tileWidth - 2
	lines := []string{
		styles.Fit(titleStyle.Render(rec.ID)+" "+styles.Muted.Render(rec.Type), inner),
		styles.Muted.Render(styles.Fit(dataLabel(rec), inner)),
		"sort  " + sortLabel(rec.SortOrder) + " " + relationLabel(v.SortState, rec.SortOrder.Relationship),
		"scale " + scaleLabel(rec.ValueScale) + " " + relationLabel(v.ScaleState, rec.ValueScale.Relationship),
	}
	lines = append(lines, preview(v)...)

	return styles.TileBorder(borderColor(rec), focused).
		Width(tileWidth).
		Render(strings.Join(lines, "\n"))
}

func dataLabel(rec registry.Widget) string {
	switch {
	case rec.Dataset != "":
		return rec.Dataset
	case rec.File != "":
		return rec.File
	}
	return "no data"
}

func sortLabel(s registry.SortOrderState) string {
	arrow := "↓"
	if s.Ascending {
		arrow = "↑"
	}
	return s.SelectedOrder + " " + arrow
}

func scaleLabel(s registry.ValueScaleState) string {
	return fmt.Sprintf("%.3g..%.3g %s", s.Min, s.Max, s.Colormap)
}

// relationLabel shows where a link stands in the sharing protocol.
func relationLabel(state link.State, rel registry.Relationship) string {
	var parts []string
	switch state {
	case link.SelectingDonor:
		parts = append(parts, styles.Warning.Render("selecting"))
	case link.SelectableTarget:
		parts = append(parts, styles.Secondary.Render("pick me"))
	}
	if rel.TargetID != "" {
		parts = append(parts, styles.Badge(rel.TargetColor, "<- "+rel.TargetID))
	}
	if rel.RecipientCount > 0 {
		parts = append(parts, styles.Badge(rel.IndicatorColor, fmt.Sprintf("x%d", rel.RecipientCount)))
	}
	return strings.Join(parts, " ")
}

// borderColor prefers the sort-order indicator over the value-scale one. A
// donor's own color wins over the color of the donor it follows.
func borderColor(rec registry.Widget) string {
	for _, rel := range []registry.Relationship{rec.SortOrder.Relationship, rec.ValueScale.Relationship} {
		if rel.IndicatorColor != "" {
			return rel.IndicatorColor
		}
		if rel.TargetColor != "" {
			return rel.TargetColor
		}
	}
	return ""
}

// preview renders a sampled heatmap of the rows in displayed order, shaded
// against the widget's value scale.
func preview(v session.View) []string {
	if !v.HasData() {
		return nil
	}
	mat := v.Sorted
	rows := min(previewRows, mat.Shape.Rows)
	cols := min(previewColumns, mat.Shape.Cols)
	lo, hi := v.Record.ValueScale.Min, v.Record.ValueScale.Max

	lines := make([]string, 0, rows)
	for i := 0; i < rows; i++ {
		r := i * mat.Shape.Rows / rows
		var b strings.Builder
		for j := 0; j < cols; j++ {
			c := j * mat.Shape.Cols / cols
			val := mat.At(r, c)
			if math.IsNaN(val) {
				b.WriteString("·")
				continue
			}
			b.WriteString(styles.Shade(val, lo, hi))
		}
		lines = append(lines, b.String())
	}
	return lines
}

func (m Model) renderStatus() string {
	if !m.noticed {
		return styles.StatusBar.Render(fmt.Sprintf("%d widgets", len(m.views)))
	}
	msg := m.notice.Message
	switch m.notice.Level {
	case notify.LevelError:
		return styles.ErrorMsg.Render(msg)
	case notify.LevelWarning:
		return styles.WarningMsg.Render(msg)
	}
	return styles.StatusBar.Render(msg)
}
