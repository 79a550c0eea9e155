package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/fioncat/otree/internal/config"
)

// configCmd prints the merged configuration, which doubles as a starting
// point for a user config file.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the merged configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

// loadConfig loads the config file and applies the flags the user set
// explicitly on top of it.
func loadConfig(flags *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	applyFlagOverrides(flags, &cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// logLevel picks the logger level before the full config is loaded: an
// explicit --debug wins, otherwise app.debug from the config file. A config
// that fails to load leaves debug off; runRoot reports the error.
func logLevel(flags *pflag.FlagSet) int8 {
	enabled := debug
	if !flags.Changed("debug") {
		if cfg, err := config.Load(configFile); err == nil {
			enabled = cfg.App.Debug
		}
	}
	// zap.DebugLevel (-1) lets V(1) lines through
	if enabled {
		return -1
	}
	return 0
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("debug") {
		cfg.App.Debug = debug
	}
	if flags.Changed("no-color") {
		cfg.UI.NoColor = noColor
	} else if os.Getenv("NO_COLOR") != "" {
		cfg.UI.NoColor = true
	}
	if flags.Changed("types") {
		cfg.UI.ShowTypes = showTypes
	}
	if flags.Changed("filter-mode") {
		cfg.Filter.Mode = filterMode
	}
	if flags.Changed("ignore-case") {
		cfg.Filter.IgnoreCase = ignoreCase
	}
	if flags.Changed("regex") {
		cfg.Filter.Regex = regexFilter
	}
	if flags.Changed("exclude") {
		cfg.Filter.Exclude = excludeFilter
	}
	if flags.Changed("live-reload") {
		cfg.LiveReload.Enabled = liveReload
	}
}
