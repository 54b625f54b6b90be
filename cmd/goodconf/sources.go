package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lixenwraith/goodconf"
	"github.com/spf13/cobra"
)

var (
	pathStyle    = lipgloss.NewStyle().Bold(true)
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))

	sourceColors = map[goodconf.Source]lipgloss.Color{
		goodconf.SourceOverride: lipgloss.Color("#C678DD"),
		goodconf.SourceFile:     lipgloss.Color("#8BC34A"),
		goodconf.SourceEnv:      lipgloss.Color("#61AFEF"),
		goodconf.SourceDefault:  lipgloss.Color("#7F848E"),
	}
)

// sourcesCmd shows which source supplied every value
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Show the source of every resolved value",
	RunE:  runSources,
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := newSchema()
	if err != nil {
		return err
	}
	cfg.SetLoadOptions(goodconf.LoadOptions{
		Sources:   goodconf.DefaultLoadOptions().Sources,
		EnvPrefix: envPrefix,
	})

	file, err := goodconf.FindConfigFile(goodconf.DefaultDiscoveryOptions("demo"))
	if configFile != "" {
		file = configFile
	} else if err != nil {
		logger.Warn().Err(err).Msg("config file discovery failed")
	}
	if err := cfg.Load(file, overrideValues()); err != nil {
		return err
	}

	fields := cfg.Fields()
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Path))
	}

	for _, f := range fields {
		path := pathStyle.Render(f.Path + strings.Repeat(" ", width-len(f.Path)))
		source := cfg.GetSource(f.Path)
		if source == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", path, missingStyle.Render("missing"))
			continue
		}
		value, err := cfg.String(f.Path)
		if err != nil {
			raw, _ := cfg.Get(f.Path)
			value = fmt.Sprint(raw)
		}
		tag := lipgloss.NewStyle().Foreground(sourceColors[source]).Render(fmt.Sprintf("%-8s", source))
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", path, tag, value)
	}
	return nil
}
