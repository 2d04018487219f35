package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah/internal/display"
	"github.com/smokyabdulrahman/salah/internal/prayer"
)

var flagListJamaat bool

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days (default: 7), starting at --date or today.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, 7)
		},
	}
	cmd.Flags().BoolVar(&flagListJamaat, "jamaat", false, "Show jamaat times instead of start times")
	return cmd
}

func newWeekCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Long:  "Alias for 'list 7'. Display a grid of prayer times for 7 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 7)
		},
	}
	cmd.Flags().BoolVar(&flagListJamaat, "jamaat", false, "Show jamaat times instead of start times")
	return cmd
}

func newMonthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Long:  "Alias for 'list 30'. Display a grid of prayer times for 30 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 30)
		},
	}
	cmd.Flags().BoolVar(&flagListJamaat, "jamaat", false, "Show jamaat times instead of start times")
	return cmd
}

// parseDays accepts a positive integer or the words "week" and "month".
func parseDays(arg string) (int, error) {
	switch arg {
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid number of days: %q (must be a positive integer, 'week' or 'month')", arg)
	}
	return n, nil
}

// runList is the handler for the list, week and month subcommands.
func runList(cmd *cobra.Command, args []string, defaultDays int) error {
	days := defaultDays
	if len(args) > 0 {
		n, err := parseDays(args[0])
		if err != nil {
			return err
		}
		days = n
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	selected := s.cfg.PrayerList()
	schedule := make([]prayer.Day, days)
	for i := range schedule {
		schedule[i] = s.day(i)
	}

	if FlagJSON {
		return printListJSON(cmd.OutOrStdout(), s, schedule, selected)
	}

	w := cmd.OutOrStdout()
	title := fmt.Sprintf("Prayer Times: %d Days", days)
	if flagListJamaat {
		title = fmt.Sprintf("Jamaat Times: %d Days", days)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold(title))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.location.Label())
	fmt.Fprintln(w)

	tbl := display.NewTable(append([]string{"Date"}, selected...)...)
	for i, d := range schedule {
		prayers, err := s.prayers(d)
		if err != nil {
			return err
		}

		row := []string{d.Date.Format("Mon 02 Jan")}
		for _, p := range prayers {
			t := p.Time
			if flagListJamaat && p.HasJamaat() {
				t = p.Jamaat
			}
			row = append(row, s.clock(t))
		}
		tbl.AddRow(row...)

		if sameDay(d.Date, s.now) {
			tbl.SetHighlightRow(i)
		}
	}

	fmt.Fprint(w, indent(tbl.Render(), "  "))
	fmt.Fprintln(w)
	return nil
}

// listJSONOutput is the JSON structure for the list command.
type listJSONOutput struct {
	Location locationJSON  `json:"location"`
	Days     []listJSONDay `json:"days"`
}

type listJSONDay struct {
	Date    string       `json:"date"`
	Prayers []prayerJSON `json:"prayers"`
}

func printListJSON(w io.Writer, s *session, schedule []prayer.Day, selected []string) error {
	out := listJSONOutput{Location: s.locationJSON()}

	for _, d := range schedule {
		prayers, err := d.Prayers(selected)
		if err != nil {
			return err
		}

		day := listJSONDay{Date: d.Date.Format("2006-01-02")}
		for _, p := range prayers {
			day.Prayers = append(day.Prayers, s.prayerJSON(p))
		}
		out.Days = append(out.Days, day)
	}

	return writeJSON(w, out)
}
