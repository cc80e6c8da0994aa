// Package styles holds the lipgloss styles of the linking console.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray

	darkText  = lipgloss.Color("#111827")
	lightText = TextColor

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)

	// Header
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor).
		MarginBottom(1)

	CollectionTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(MutedColor)

	// Widget tiles
	Tile = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1).
		MarginRight(1)

	TileTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor)

	TileFocused = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	// Footer / status bar
	StatusBar = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Padding(0, 1)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningMsg = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	SearchPrompt = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)
)

// ContrastText picks a dark or light text color that stays readable on the
// hex background. Unparsable colors get light text.
func ContrastText(hex string) lipgloss.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return lightText
	}
	l, _, _ := c.Lab()
	if l > 0.6 {
		return darkText
	}
	return lightText
}

// Badge renders label on an indicator color.
func Badge(hex, label string) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(hex)).
		Foreground(ContrastText(hex)).
		Padding(0, 1).
		Render(label)
}

// TileBorder returns the tile style for a widget whose border shows the
// indicator color hex. An empty hex keeps the neutral border.
func TileBorder(hex string, focused bool) lipgloss.Style {
	s := Tile
	if hex != "" {
		s = s.BorderForeground(lipgloss.Color(hex))
	} else if focused {
		s = s.BorderForeground(PrimaryColor)
	}
	if focused {
		s = s.Border(lipgloss.ThickBorder())
	}
	return s
}

// Shades are the cells of a heatmap preview, from low to high.
var Shades = []string{" ", "░", "▒", "▓", "█"}

// Shade maps v within [lo, hi] onto Shades. Values outside the domain clamp;
// an empty domain maps everything to the middle shade.
func Shade(v, lo, hi float64) string {
	if hi <= lo {
		return Shades[len(Shades)/2]
	}
	f := (v - lo) / (hi - lo)
	switch {
	case f <= 0:
		return Shades[0]
	case f >= 1:
		return Shades[len(Shades)-1]
	}
	return Shades[int(f*float64(len(Shades)-1)+0.5)]
}

// Fit truncates s to maxWidth visual columns, ending it with "..." when cut.
// Escape sequences and wide characters are accounted for.
func Fit(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}
