package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah/internal/display"
	"github.com/smokyabdulrahman/salah/internal/prayer"
)

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's start and jamaat times",
		Long:  "Display the day's prayer start and congregation times with the next prayer highlighted.\nThis is also the default when salah runs without a subcommand.",
		Args:  cobra.NoArgs,
		RunE:  runToday,
	}
}

func runToday(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	day := s.day(0)
	prayers, err := s.prayers(day)
	if err != nil {
		return err
	}

	// Current and next only make sense on the current date.
	var current, next *prayer.Prayer
	if s.isToday() {
		current = prayer.CurrentPrayer(prayers, s.now)
		next = prayer.NextPrayer(prayers, s.now)
	}

	if FlagJSON {
		return printTodayJSON(cmd.OutOrStdout(), s, prayers, current, next)
	}

	printTodayRich(cmd.OutOrStdout(), s, prayers, current, next)
	return nil
}

// printTodayRich renders the colored terminal output for the day's schedule.
func printTodayRich(w io.Writer, s *session, prayers []prayer.Prayer, current, next *prayer.Prayer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Prayer Times"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s\n", s.location.Label())
	fmt.Fprintf(w, "  %s\n", s.zone)
	fmt.Fprintf(w, "  %s\n", s.date.Format("Monday, 02 January 2006"))
	fmt.Fprintf(w, "  %s\n", display.Gray(fmt.Sprintf("%s · asr %s", s.settings.Method.Description, s.settings.Asr)))
	fmt.Fprintln(w)

	tbl := display.NewTable("Prayer", "Start", "Jamaat")
	for i, p := range prayers {
		tbl.AddRow(p.Name, s.clock(p.Time), s.clock(p.Jamaat))

		switch {
		case next != nil && p.Name == next.Name:
			tbl.SetHighlightRow(i)
		case current != nil && !p.Time.After(current.Time):
			tbl.DimRow(i)
		}
	}
	fmt.Fprint(w, indent(tbl.Render(), "  "))

	if next != nil {
		remaining := prayer.FormatRemaining(prayer.TimeRemaining(*next, s.now))
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", display.Accent(fmt.Sprintf("%s in %s", next.Name, remaining)))
	}

	fmt.Fprintln(w)
}

// indent prefixes every non-empty line of text.
func indent(text, prefix string) string {
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			b.WriteString(prefix)
		}
		b.WriteString(l)
	}
	return b.String()
}

// todayJSON is the JSON output structure for the today command.
type todayJSON struct {
	Location locationJSON `json:"location"`
	Date     string       `json:"date"`
	Method   string       `json:"method"`
	Asr      string       `json:"asr"`
	Prayers  []prayerJSON `json:"prayers"`
	Current  string       `json:"current,omitempty"`
	Next     *nextJSON    `json:"next,omitempty"`
}

type locationJSON struct {
	Label     string  `json:"label"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type prayerJSON struct {
	Name   string `json:"name"`
	Time   string `json:"time"`
	Jamaat string `json:"jamaat,omitempty"`
}

type nextJSON struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Jamaat    string `json:"jamaat,omitempty"`
	Remaining string `json:"remaining"`
}

func (s *session) locationJSON() locationJSON {
	return locationJSON{
		Label:     s.location.Label(),
		Timezone:  s.zone.String(),
		Latitude:  s.location.Latitude,
		Longitude: s.location.Longitude,
	}
}

func (s *session) prayerJSON(p prayer.Prayer) prayerJSON {
	out := prayerJSON{Name: p.Name, Time: s.clock(p.Time)}
	if p.HasJamaat() {
		out.Jamaat = s.clock(p.Jamaat)
	}
	return out
}

// printTodayJSON renders structured JSON output.
func printTodayJSON(w io.Writer, s *session, prayers []prayer.Prayer, current, next *prayer.Prayer) error {
	out := todayJSON{
		Location: s.locationJSON(),
		Date:     s.date.Format("2006-01-02"),
		Method:   s.settings.Method.Name,
		Asr:      s.settings.Asr.String(),
	}

	for _, p := range prayers {
		out.Prayers = append(out.Prayers, s.prayerJSON(p))
	}

	if current != nil {
		out.Current = current.Name
	}

	if next != nil {
		pj := s.prayerJSON(*next)
		out.Next = &nextJSON{
			Prayer:    pj.Name,
			Time:      pj.Time,
			Jamaat:    pj.Jamaat,
			Remaining: prayer.FormatRemaining(prayer.TimeRemaining(*next, s.now)),
		}
	}

	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
