package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah/internal/config"
	"github.com/smokyabdulrahman/salah/internal/display"
	"github.com/smokyabdulrahman/salah/internal/jamaat"
	"github.com/smokyabdulrahman/salah/internal/prayer"
)

func newJamaatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jamaat",
		Short: "Show or edit congregation rules",
		Long: "Display each prayer's jamaat rule and the resulting time for --date (default today).\n" +
			"Use the subcommands to change the rules stored in the config file.",
		Args: cobra.NoArgs,
		RunE: runJamaatShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show jamaat rules and times",
		Args:  cobra.NoArgs,
		RunE:  runJamaatShow,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <prayer> <rule>",
		Short: "Set one prayer's jamaat rule",
		Long: "Set the congregation rule for one prayer. A rule is either an offset after the\n" +
			"start time or a fixed clock time.\n\n" +
			"Examples:\n" +
			"  salah jamaat set fajr +20\n" +
			"  salah jamaat set isha 15m\n" +
			"  salah jamaat set jumuah \"1:30 PM\"\n" +
			"  salah jamaat set maghrib O:5\n" +
			"  salah jamaat set asr 16:15",
		Args: cobra.MinimumNArgs(2),
		RunE: runJamaatSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset [prayer]",
		Short: "Restore default jamaat rules",
		Long:  "Restore the default rule for one prayer, or for all prayers when none is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runJamaatReset,
	})

	return cmd
}

func runJamaatShow(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	day := s.day(0)
	rows := jamaatRows(s, day)

	if FlagJSON {
		return writeJSON(cmd.OutOrStdout(), struct {
			Date  string          `json:"date"`
			Rules string          `json:"rules"`
			Rows  []jamaatRowJSON `json:"prayers"`
		}{
			Date:  day.Date.Format("2006-01-02"),
			Rules: s.settings.Rules.Format(),
			Rows:  rows,
		})
	}

	printJamaatRich(cmd.OutOrStdout(), s, day, rows)
	return nil
}

type jamaatRowJSON struct {
	Prayer string `json:"prayer"`
	Rule   string `json:"rule"`
	Start  string `json:"start"`
	Jamaat string `json:"jamaat,omitempty"`
}

func jamaatRows(s *session, day prayer.Day) []jamaatRowJSON {
	starts := map[jamaat.Prayer]string{
		jamaat.Fajr:    s.clock(day.Start.Fajr),
		jamaat.Dhuhr:   s.clock(day.Start.Dhuhr),
		jamaat.Asr:     s.clock(day.Start.Asr),
		jamaat.Maghrib: s.clock(day.Start.Maghrib),
		jamaat.Isha:    s.clock(day.Start.Isha),
		jamaat.Jumuah:  s.clock(day.Start.Dhuhr),
	}

	rows := make([]jamaatRowJSON, 0, len(jamaat.Prayers))
	for _, p := range jamaat.Prayers {
		row := jamaatRowJSON{
			Prayer: p.DisplayName(),
			Rule:   s.settings.Rules.Rule(p).String(),
			Start:  starts[p],
		}
		if t := day.Jamaat.For(p); !t.IsZero() {
			row.Jamaat = s.clock(t)
		}
		rows = append(rows, row)
	}
	return rows
}

func printJamaatRich(w io.Writer, s *session, day prayer.Day, rows []jamaatRowJSON) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Jamaat Times"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.location.Label())
	fmt.Fprintf(w, "  %s\n", day.Date.Format("Monday, 02 January 2006"))
	fmt.Fprintln(w)

	tbl := display.NewTable("Prayer", "Rule", "Start", "Jamaat")
	for i, r := range rows {
		jt := r.Jamaat
		if jt == "" {
			jt = "Fridays only"
			tbl.DimRow(i)
		}
		tbl.AddRow(r.Prayer, r.Rule, r.Start, jt)
	}
	fmt.Fprint(w, indent(tbl.Render(), "  "))
	fmt.Fprintln(w)
}

func runJamaatSet(cmd *cobra.Command, args []string) error {
	p, err := jamaat.ParsePrayer(args[0])
	if err != nil {
		return err
	}
	rule := strings.Join(args[1:], " ")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.SetJamaatRule(args[0], rule); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s jamaat = %s\n", p.DisplayName(), cfg.RuleSet().Rule(p))
	return nil
}

func runJamaatReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	msg := "Jamaat rules reset to defaults."
	if len(args) == 0 {
		cfg.Jamaat = ""
	} else {
		p, err := jamaat.ParsePrayer(args[0])
		if err != nil {
			return err
		}
		cfg.Jamaat = cfg.RuleSet().With(p, jamaat.DefaultRule(p)).Format()
		msg = fmt.Sprintf("%s jamaat reset to %s.", p.DisplayName(), jamaat.DefaultRule(p))
	}

	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
