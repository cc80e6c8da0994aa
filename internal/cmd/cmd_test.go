package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/hicognition/hicolink/internal/errors"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "hicolink" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "hicolink")
	}

	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, name := range []string{"tui", "demo", "stats", "bin", "config"} {
		if !cmdMap[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestStatsCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := writeFile(t, "a.json", `{"data": [1, 9, 1, 2, 8, 2, 3, 7, 3], "shape": [3, 3]}`)

	out, err := executeCommand(rootCmd, "stats", path)
	if err != nil {
		t.Fatalf("stats error = %v\n%s", err, out)
	}
	for _, want := range []string{"3 x 3", "min", "per-mil 990", "p50", "column profile"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestStatsCommandMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := executeCommand(rootCmd, "stats", filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("stats should fail for a missing file")
	}
}

func TestBinCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	tests := []struct {
		name string
		body string
		agg  string
		want string
	}{
		{
			name: "pair list counts points",
			body: `[[0, 0], [1, 1], [1, 1]]`,
			agg:  "sum",
			want: ". 2\n1 .\n",
		},
		{
			name: "overlay mean",
			body: `{"points": [[0, 0], [1, 1], [1, 1]], "overlay": [3, 4, 6]}`,
			agg:  "mean",
			want: ". 5\n3 .\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "points.json", tt.body)
			out, err := executeCommand(rootCmd, "bin", "--size", "2", "--aggregation", tt.agg, "--shade=false", path)
			if err != nil {
				t.Fatalf("bin error = %v\n%s", err, out)
			}
			if out != tt.want {
				t.Errorf("bin output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestBinCommandRejectsBadInput(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := writeFile(t, "points.json", `{"points": [[0, 0], [1, 1]], "overlay": [1]}`)
	_, err := executeCommand(rootCmd, "bin", "--size", "2", "--aggregation", "sum", path)
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("mismatched overlay error = %v, want ErrInvalidInput", err)
	}

	_, err = executeCommand(rootCmd, "bin", "--size", "2", "--aggregation", "median", path)
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("unknown aggregation error = %v, want ErrInvalidInput", err)
	}

	bad := writeFile(t, "bad.json", `{"points": [[0, 0]`)
	_, err = executeCommand(rootCmd, "bin", "--size", "2", "--aggregation", "sum", bad)
	if err == nil {
		t.Error("truncated JSON should fail")
	}
}

func TestDemoCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, err := executeCommand(rootCmd, "demo", "--colors", "0")
	if err != nil {
		t.Fatalf("demo error = %v\n%s", err, out)
	}
	for _, want := range []string{"initial state", "donor x2", "<- middle", "middle is deleted"} {
		if !strings.Contains(out, want) {
			t.Errorf("demo output missing %q", want)
		}
	}
	if strings.Contains(out, "no free indicator color") {
		t.Error("full palette should never run out")
	}
}

func TestDemoCommandExhaustsPalette(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, err := executeCommand(rootCmd, "demo", "--colors", "1")
	if err != nil {
		t.Fatalf("demo error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "no free indicator color") {
		t.Errorf("a one color palette should run out:\n%s", out)
	}
}

func TestConfigCommands(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, err := executeCommand(rootCmd, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "default_mode: center column") {
		t.Errorf("config show output missing sort mode:\n%s", out)
	}

	out, err = executeCommand(rootCmd, "config", "path")
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if !strings.Contains(out, "HICOLINK_") {
		t.Errorf("config path should mention the env prefix:\n%s", out)
	}

	if _, err := executeCommand(rootCmd, "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := executeCommand(rootCmd, "config", "init"); err == nil {
		t.Error("second config init should refuse to overwrite")
	}
}

func TestExecuteHintsOnInputErrors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := writeFile(t, "points.json", `[[0, 0], [1, 1]]`)

	run := func(args ...string) string {
		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetErr(buf)
		rootCmd.SetArgs(args)
		if err := Execute(); err == nil {
			t.Fatalf("Execute(%v) should fail", args)
		}
		return buf.String()
	}

	out := run("bin", "--size", "2", "--aggregation", "median", path)
	if !strings.Contains(out, "Run 'hicolink bin --help' for usage.") {
		t.Errorf("unknown aggregation output missing hint:\n%s", out)
	}

	out = run("stats", filepath.Join(t.TempDir(), "missing.json"))
	if strings.Contains(out, "--help") {
		t.Errorf("missing file is not an input error, got hint:\n%s", out)
	}
}
