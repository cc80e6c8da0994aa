// Package cmd implements the hicolink command line.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hicognition/hicolink/internal/config"
	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "hicolink",
	Short: "Link sort orders and value scales between pileup widgets",
	Long: `hicolink mounts pileup widgets, grouped in collections, and lets one
widget take the row sort order or the color value scale of another.
A donor keeps its recipients up to date until they stop sharing or the
donor is deleted.`,
	SilenceUsage: true,
}

// Execute runs the root command. Bad input gets a pointer to the command's
// help after cobra has printed the error.
func Execute() error {
	c, err := rootCmd.ExecuteC()
	if errors.IsSemanticError(err) {
		c.PrintErrf("Run '%s --help' for usage.\n", c.CommandPath())
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/hicolink/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding pileup files")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("data.dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("HICOLINK")
	// HICOLINK_SORTING_DEFAULT_MODE for sorting.default_mode
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// loadConfig returns the validated configuration and a logger built from it.
// Callers close the logger. An interactive command without a log directory
// gets a silent logger so nothing is written over the screen.
func loadConfig(interactive bool) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if interactive && cfg.Logging.Dir == "" {
		return cfg, logging.NopLogger(), nil
	}
	logger, err := logging.NewLogger(logging.Options{
		Dir:   cfg.Logging.Dir,
		Level: cfg.Logging.Level,
		Rotation: cfg.Logging.Rotation(),
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
