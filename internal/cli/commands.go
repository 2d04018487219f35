package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah/internal/api"
	"github.com/smokyabdulrahman/salah/internal/config"
	"github.com/smokyabdulrahman/salah/internal/display"
	"github.com/smokyabdulrahman/salah/internal/geo"
	"github.com/smokyabdulrahman/salah/internal/jamaat"
	"github.com/smokyabdulrahman/salah/internal/salah"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the config file values",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n  salah config set city \"Karachi, Pakistan\"\n  salah config set method Karachi\n  salah config set asr hanafi\n  salah config set time_format 12h\n  salah config set prayers Fajr,Dhuhr,Asr,Maghrib,Isha\n  salah config set jamaat \"Fajr:O:30|Jumuah:F:1,15,PM\"",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete the config file and restore all settings to defaults.",
		Args:  cobra.NoArgs,
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	})

	return cmd
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if FlagJSON {
		return writeJSON(w, cfg)
	}

	fmt.Fprintf(w, "  Configuration (%s)\n\n", path)

	defaults := config.Defaults()
	var pairs [][2]string
	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		shown := val
		if shown == "" {
			def, _ := defaults.Get(key)
			shown = "(not set)"
			if def != "" {
				shown = fmt.Sprintf("(default: %s)", def)
			}
		}
		// Add descriptive labels for method and jamaat.
		if key == "method" && val != "" {
			shown = formatMethodValue(val)
		}
		if key == "jamaat" && val != "" {
			shown = formatJamaatValue(val)
		}
		pairs = append(pairs, [2]string{key, shown})
	}
	fmt.Fprint(w, indent(display.KeyValue(pairs), "  "))
	return nil
}

// runConfigSet sets a config key to the given value.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	stored, _ := cfg.Get(key)
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, stored)
	return nil
}

// runConfigReset deletes the config file.
func runConfigReset(cmd *cobra.Command, args []string) error {
	if err := config.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

// runConfigPath prints the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// formatMethodValue adds the method description to the stored name.
func formatMethodValue(val string) string {
	if m, ok := salah.MethodByName(val); ok {
		return fmt.Sprintf("%s (%s)", m.Name, m.Description)
	}
	return val
}

// formatJamaatValue renders the stored rule line in readable form.
func formatJamaatValue(val string) string {
	rs := jamaat.ParseRuleSet(val)
	parts := make([]string, 0, len(jamaat.Prayers))
	for _, p := range jamaat.Prayers {
		if r, ok := rs[p]; ok {
			parts = append(parts, fmt.Sprintf("%s %s", p.DisplayName(), r))
		}
	}
	return strings.Join(parts, ", ")
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the built-in calculation methods with their twilight angles.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if FlagJSON {
				type methodJSON struct {
					Name        string  `json:"name"`
					Description string  `json:"description"`
					Fajr        float64 `json:"fajr_angle"`
					Isha        string  `json:"isha"`
					AlAdhanID   int     `json:"aladhan_id"`
				}
				var out []methodJSON
				for _, m := range salah.Methods() {
					id, _ := api.MethodID(m)
					out = append(out, methodJSON{m.Name, m.Description, m.Fajr, m.Isha.String(), id})
				}
				return writeJSON(w, out)
			}

			fmt.Fprintln(w, "Supported calculation methods:")
			fmt.Fprintln(w)
			tbl := display.NewTable("Name", "Fajr", "Isha", "Description")
			for _, m := range salah.Methods() {
				tbl.AddRow(m.Name, strconv.FormatFloat(m.Fajr, 'g', -1, 64)+"°", m.Isha.String(), m.Description)
			}
			fmt.Fprint(w, indent(tbl.Render(), "  "))
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Use --method <name> to select a calculation method (default MWL).")
			return nil
		},
	}
}

func newCitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List built-in cities",
		Long:  "Print the cities accepted by --city. Partial names such as \"karachi\" also match.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if FlagJSON {
				return writeJSON(w, geo.Cities())
			}

			tbl := display.NewTable("City", "Latitude", "Longitude", "Time zone")
			for _, label := range geo.Labels() {
				loc, _ := geo.Lookup(label)
				tbl.AddRow(label,
					strconv.FormatFloat(loc.Latitude, 'f', 4, 64),
					strconv.FormatFloat(loc.Longitude, 'f', 4, 64),
					loc.Timezone)
			}
			fmt.Fprint(w, indent(tbl.Render(), "  "))
			return nil
		},
	}
}
