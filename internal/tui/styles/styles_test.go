package styles

import "testing"

func TestContrastText(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"#FFFFFF", string(darkText)},
		{"#FBBF24", string(darkText)},
		{"#2E5E61", string(lightText)},
		{"#000000", string(lightText)},
		{"not-a-color", string(lightText)},
	}
	for _, tt := range tests {
		if got := string(ContrastText(tt.hex)); got != tt.want {
			t.Errorf("ContrastText(%q) = %s, want %s", tt.hex, got, tt.want)
		}
	}
}

func TestShade(t *testing.T) {
	tests := []struct {
		v, lo, hi float64
		want      string
	}{
		{0, 0, 4, " "},
		{-3, 0, 4, " "},
		{2, 0, 4, "▒"},
		{4, 0, 4, "█"},
		{9, 0, 4, "█"},
		{1, 1, 1, "▒"},
	}
	for _, tt := range tests {
		if got := Shade(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Shade(%v, %v, %v) = %q, want %q", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact width unchanged", "hello", 5, "hello"},
		{"long string truncated", "/data/pileups/ctcf.json", 12, "/data/pil..."},
		{"tiny width", "hello", 2, "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fit(tt.input, tt.width); got != tt.want {
				t.Errorf("Fit(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}
