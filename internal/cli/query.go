package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah/internal/display"
	"github.com/smokyabdulrahman/salah/internal/prayer"
)

var flagQueryDays string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long: "Query one prayer's start and jamaat time for --date (default today), or across\n" +
			"multiple days with --days.\n\nValid prayer names: " + strings.Join(prayer.AllPrayerNames, ", ") + ", Jumuah",
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "", "Number of days to show (or 'week'/'month')")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	name, err := prayer.NormalizeName(args[0])
	if err != nil {
		return fmt.Errorf("unknown prayer %q; valid names: %s", args[0], strings.Join(prayer.AllPrayerNames, ", "))
	}

	days := 1
	if flagQueryDays != "" {
		if days, err = parseDays(flagQueryDays); err != nil {
			return fmt.Errorf("invalid --days value: %w", err)
		}
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	entries := make([]queryEntry, 0, days)
	for i := 0; i < days; i++ {
		d := s.day(i)
		prayers, err := d.Prayers([]string{name})
		if err != nil {
			return err
		}
		if len(prayers) == 0 {
			return fmt.Errorf("no timing found for %s", name)
		}
		entries = append(entries, queryEntry{day: d, prayer: prayers[0]})
	}

	if FlagJSON {
		return printQueryJSON(cmd.OutOrStdout(), s, name, entries)
	}

	w := cmd.OutOrStdout()
	if days == 1 {
		fmt.Fprintln(w, prayer.FormatOutput(entries[0].prayer, s.now, prayer.FormatNameAndJamaat, s.layout))
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold(fmt.Sprintf("%s Times: %d Days", name, days)))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.location.Label())
	fmt.Fprintln(w)

	tbl := display.NewTable("Date", "Prayer", "Start", "Jamaat")
	for i, e := range entries {
		tbl.AddRow(e.day.Date.Format("Mon 02 Jan"), e.prayer.Name, s.clock(e.prayer.Time), s.clock(e.prayer.Jamaat))
		if sameDay(e.day.Date, s.now) {
			tbl.SetHighlightRow(i)
		}
	}

	fmt.Fprint(w, indent(tbl.Render(), "  "))
	fmt.Fprintln(w)
	return nil
}

type queryEntry struct {
	day    prayer.Day
	prayer prayer.Prayer
}

type queryJSONOutput struct {
	Location locationJSON   `json:"location"`
	Prayer   string         `json:"prayer"`
	Days     []queryJSONDay `json:"days"`
}

type queryJSONDay struct {
	Date string `json:"date"`
	prayerJSON
}

func printQueryJSON(w io.Writer, s *session, name string, entries []queryEntry) error {
	out := queryJSONOutput{
		Location: s.locationJSON(),
		Prayer:   strings.ToLower(name),
	}
	for _, e := range entries {
		out.Days = append(out.Days, queryJSONDay{
			Date:       e.day.Date.Format("2006-01-02"),
			prayerJSON: s.prayerJSON(e.prayer),
		})
	}
	return writeJSON(w, out)
}
