// FILE: lixenwraith/goodconf/cmd/goodconf/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	envPrefix  string
	overrides  map[string]string
	verbose    bool

	logger zerolog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "goodconf",
	Short: "Demo of declarative configuration loading and documentation",
	Long: `goodconf declares a sample service configuration and shows how its
values are resolved from overrides, a config file, the environment and defaults.

Available subcommands:
  generate - Write a documented template in TOML, YAML or JSON
  docs     - Print Markdown reference documentation
  show     - Load and print the resolved configuration
  watch    - Load the configuration and report changes to the file
  sources  - Show which source supplied every value`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: search for demo.{toml,yaml,yml,json})")
	rootCmd.PersistentFlags().StringVar(&envPrefix, "env-prefix", "DEMO_", "Prefix of environment variables")
	rootCmd.PersistentFlags().StringToStringVar(&overrides, "set", nil, "Override a value, e.g. --set server.port=9090")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
