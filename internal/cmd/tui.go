package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/session"
	"github.com/hicognition/hicolink/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive linking console",
	Long: `Open the interactive linking console.

Every widget of the layout is shown as a tile. Focus a tile with tab,
press s or v to pick a donor for its sort order or value scale, then focus
the donor and press enter. Press ? for every key.`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().String("layout", "", "layout file to mount")
	tuiCmd.Flags().String("snapshot", "", "file the w key and quitting write the snapshot to")
	tuiCmd.Flags().Bool("watch", false, "reload widgets when their pileup files change")
	_ = viper.BindPFlag("data.watch", tuiCmd.Flags().Lookup("watch"))
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(true)
	if err != nil {
		return err
	}
	defer logger.Close()

	bridge := tui.NewBridge()
	s, err := session.New(cfg,
		session.WithLogger(logger),
		session.WithNotifier(bridge),
		session.WithChangeHook(bridge.Changed))
	if err != nil {
		return err
	}
	defer s.Close()

	if layout, _ := cmd.Flags().GetString("layout"); layout != "" {
		if err := s.LoadLayout(layout); err != nil {
			return errors.Wrap(err, "failed to load layout")
		}
	}
	if cfg.Data.Watch {
		if err := s.Watch(); err != nil {
			return errors.Wrap(err, "failed to watch data directory")
		}
	}

	snapshot, _ := cmd.Flags().GetString("snapshot")
	opts := tui.Options{SnapshotPath: snapshot, AltScreen: true}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		opts.Width, opts.Height = w, h
	}

	app := tui.New(s, bridge, opts)
	if err := app.Run(); err != nil {
		return errors.Wrap(err, "TUI error")
	}

	if snapshot != "" {
		if err := s.WriteSnapshotFile(snapshot); err != nil {
			return errors.Wrapf(err, "failed to write snapshot to %s", snapshot)
		}
	}
	return nil
}
