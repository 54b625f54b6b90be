package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/lixenwraith/goodconf"
	"github.com/spf13/cobra"
)

var (
	format     string
	outputPath string
	render     bool
)

// generateCmd writes a documented template
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a documented configuration template",
	Long: `Generate a configuration template from the schema. Values come from
--set overrides, then initial value generators, then defaults.

With --out the format follows the file extension.`,
	RunE: runGenerate,
}

// docsCmd prints Markdown documentation
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Print Markdown documentation of every field",
	RunE:  runDocs,
}

// showCmd loads and prints the resolved configuration
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Load and print the resolved configuration",
	RunE:  runShow,
}

// watchCmd reports changes to the loaded file
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Load the configuration and report changed values until interrupted",
	RunE:  runWatch,
}

func init() {
	generateCmd.Flags().StringVarP(&format, "format", "f", "toml", "Output format: toml, yaml or json")
	generateCmd.Flags().StringVarP(&outputPath, "out", "o", "", "Write to a file instead of stdout")
	docsCmd.Flags().BoolVar(&render, "render", false, "Render for the terminal")
	showCmd.Flags().StringVarP(&format, "format", "f", "toml", "Output format: toml, yaml or json")
}

// newSchema declares the demo schema without loading any values.
func newSchema() (*goodconf.Config, error) {
	cfg := goodconf.New()
	cfg.SetLogger(logger)
	if err := cfg.RegisterStruct("", &DemoConfig{}); err != nil {
		return nil, err
	}
	if err := cfg.SetInitial("secret", randomSecret); err != nil {
		return nil, err
	}
	return cfg, nil
}

// load builds the demo configuration from every source.
func load(target *DemoConfig) (*goodconf.Config, error) {
	cfg, err := goodconf.NewBuilder().
		WithTarget(target).
		WithLogger(logger).
		WithEnvPrefix(envPrefix).
		WithFileDiscovery(goodconf.DefaultDiscoveryOptions("demo")).
		WithFile(configFile).
		WithOverrides(overrideValues()).
		WithInitial("secret", randomSecret).
		Build()
	if err != nil {
		var verr *goodconf.ValidationError
		if errors.As(err, &verr) && len(verr.Missing()) > 0 {
			logger.Error().Strs("missing", verr.Missing()).Msg("required values not supplied")
		}
		return nil, err
	}
	if cfg.ConfigFile() == "" {
		logger.Warn().Msg("no config file found, using environment and defaults")
	}
	return cfg, nil
}

func overrideValues() map[string]any {
	values := make(map[string]any, len(overrides))
	for k, v := range overrides {
		values[k] = v
	}
	return values
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := newSchema()
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := cfg.WriteTemplate(outputPath, overrideValues()); err != nil {
			return err
		}
		logger.Info().Str("path", outputPath).Msg("template written")
		return nil
	}

	out, err := cfg.Generate(goodconf.Format(format), overrideValues())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runDocs(cmd *cobra.Command, args []string) error {
	cfg, err := newSchema()
	if err != nil {
		return err
	}

	md := cfg.GenerateMarkdown()
	if !render {
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	var demo DemoConfig
	cfg, err := load(&demo)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintln(cmd.ErrOrStderr(), cfg.Debug())
	}
	return cfg.Dump(cmd.OutOrStdout(), goodconf.Format(format))
}

func runWatch(cmd *cobra.Command, args []string) error {
	var demo DemoConfig
	cfg, err := load(&demo)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	changes, err := cfg.Watch(ctx, goodconf.DefaultWatchOptions())
	if err != nil {
		return err
	}
	logger.Info().Str("file", cfg.ConfigFile()).Msg("watching for changes, press Ctrl+C to stop")

	for path := range changes {
		value, _ := cfg.Get(path)
		logger.Info().
			Str("key", path).
			Interface("value", value).
			Str("source", string(cfg.GetSource(path))).
			Msg("configuration changed")
	}
	return nil
}
