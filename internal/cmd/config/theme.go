package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/crewview/internal/tui/styles"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Inspect color themes",
	Long: `Inspect the built-in color themes of the workflow view.

Use 'theme list' to see all available themes.
Use 'theme info' to preview a theme's colors.
Use 'theme export' to dump a theme's palette as YAML.`,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available themes",
	RunE:  runThemeList,
}

var themeInfoCmd = &cobra.Command{
	Use:   "info <theme-name>",
	Short: "Show a theme's colors",
	Args:  cobra.ExactArgs(1),
	RunE:  runThemeInfo,
}

var themeExportCmd = &cobra.Command{
	Use:   "export <theme-name> [output-file]",
	Short: "Export a theme's palette to YAML",
	Long: `Export a theme's palette to YAML.

If no output file is specified, the YAML is printed to stdout.

Examples:
  crewview config theme export nord
  crewview config theme export dracula dracula.yaml`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runThemeExport,
}

func init() {
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeInfoCmd)
	themeCmd.AddCommand(themeExportCmd)
	configCmd.AddCommand(themeCmd)
}

// paletteEntry is one named color of a palette.
type paletteEntry struct {
	Name  string
	Color lipgloss.Color
}

func paletteEntries(p *styles.ColorPalette) []paletteEntry {
	return []paletteEntry{
		{"primary", p.Primary},
		{"secondary", p.Secondary},
		{"warning", p.Warning},
		{"error", p.Error},
		{"muted", p.Muted},
		{"surface", p.Surface},
		{"text", p.Text},
		{"border", p.Border},
		{"status_waiting", p.StatusWaiting},
		{"status_working", p.StatusWorking},
		{"status_completed", p.StatusCompleted},
	}
}

func lookupTheme(name string) (*styles.ColorPalette, error) {
	if !styles.IsValidTheme(name) {
		return nil, fmt.Errorf("unknown theme: %s\n\nRun 'crewview config theme list' to see available themes", name)
	}
	return styles.GetPalette(styles.ThemeName(name)), nil
}

func runThemeList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available themes:")
	for _, name := range styles.BuiltinThemes() {
		fmt.Fprintf(out, "  - %s\n", name)
	}
	return nil
}

func runThemeInfo(cmd *cobra.Command, args []string) error {
	p, err := lookupTheme(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Theme: %s\n\n", args[0])
	for _, e := range paletteEntries(p) {
		swatch := lipgloss.NewStyle().Background(e.Color).Render("   ")
		fmt.Fprintf(out, "  %-17s %s %s\n", e.Name, swatch, string(e.Color))
	}
	return nil
}

func runThemeExport(cmd *cobra.Command, args []string) error {
	p, err := lookupTheme(args[0])
	if err != nil {
		return err
	}

	colors := yaml.Node{Kind: yaml.MappingNode}
	for _, e := range paletteEntries(p) {
		colors.Content = append(colors.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: string(e.Color), Style: yaml.DoubleQuotedStyle},
		)
	}
	doc := yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "name"},
		{Kind: yaml.ScalarNode, Value: args[0]},
		{Kind: yaml.ScalarNode, Value: "colors"},
		&colors,
	}}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("exporting theme: %w", err)
	}

	if len(args) > 1 {
		if err := os.WriteFile(args[1], data, 0o644); err != nil {
			return fmt.Errorf("writing to %s: %w", args[1], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme exported to: %s\n", args[1])
		return nil
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
