package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge/transmute/internal/app"
	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/infra/config"
)

// newConfigCommand creates the config command.
func newConfigCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long:  `Inspect transmute configuration and the terminals it can drive.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newConfigShowCommand(c))
	cmd.AddCommand(newConfigTerminalsCommand(c))

	return cmd
}

// newConfigShowCommand creates the config show subcommand.
func newConfigShowCommand(c *app.Container) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective configuration and the file it was read from.

Config files are looked up in this order, first match wins:
` + candidateList() + `
A file that fails to parse or validate is ignored as a whole and the
built-in defaults are used instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireContainer(c); err != nil {
				return err
			}
			switch format {
			case config.FormatJSON, config.FormatTOML, config.FormatYAML:
			default:
				return fmt.Errorf("%w: unknown format %q (json, toml, yaml)", domain.ErrInvalidInput, format)
			}

			out, err := c.ShowConfigUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			if out.Source != "" {
				_, _ = fmt.Fprintf(stderr, "# Loaded from %s\n", out.Source)
			} else {
				_, _ = fmt.Fprintln(stderr, "# Using built-in defaults")
			}
			for _, w := range out.Warnings {
				_, _ = fmt.Fprintf(stderr, "Warning: %s\n", w)
			}

			return config.Encode(cmd.OutOrStdout(), out.Config, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", config.FormatJSON, "Output format: json, toml, yaml")

	return cmd
}

func newConfigTerminalsCommand(c *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "terminals",
		Short: "Show which terminal emulators are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireContainer(c); err != nil {
				return err
			}
			avail := c.TerminalAvailability(cmd.Context())

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(avail)
			}
			configured, configuredOK := "", false
			for _, a := range avail {
				mark := " "
				if c.AppConfig != nil && string(c.AppConfig.Terminal) == a.Name {
					mark = "*"
					configured, configuredOK = a.Name, a.Available
				}
				state := "not available"
				if a.Available {
					state = "available"
					if a.Version != "" {
						state += " (" + a.Version + ")"
					}
				}
				_, _ = fmt.Fprintf(w, "%s %-8s %s\n", mark, a.Name, state)
			}

			if configured != "" && !configuredOK {
				if suggested := c.SuggestedTerminal(cmd.Context()); suggested != "" {
					_, _ = fmt.Fprintf(w, "\n%s is not available here; set \"terminal\": %q to use %s.\n", configured, suggested, suggested)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func candidateList() string {
	var s string
	for i, p := range domain.ConfigCandidates("") {
		s += fmt.Sprintf("  %d. %s\n", i+1, p)
	}
	return s
}
