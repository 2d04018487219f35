package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah/internal/display"
	"github.com/smokyabdulrahman/salah/internal/reminder"
)

var (
	flagStartLead  int
	flagJamaatLead int
)

func newRemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "List the reminders still due today",
		Long: "Plan start and jamaat reminders for --date (default today) and list those that\n" +
			"have not fired yet. Lead times default to the start_lead and jamaat_lead config keys.",
		Args: cobra.NoArgs,
		RunE: runReminders,
	}

	cmd.Flags().IntVar(&flagStartLead, "start-lead", 0, "Minutes before each start time (overrides config)")
	cmd.Flags().IntVar(&flagJamaatLead, "jamaat-lead", 0, "Minutes before each jamaat (overrides config)")

	return cmd
}

func runReminders(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("start-lead") {
		s.cfg.StartLead = &flagStartLead
	}
	if cmd.Flags().Changed("jamaat-lead") {
		s.cfg.JamaatLead = &flagJamaatLead
	}

	day := s.day(0)
	planned := reminder.Plan(day.Start, day.Jamaat, s.cfg.ReminderPrefs(), s.now)

	if FlagJSON {
		if planned == nil {
			planned = []reminder.Reminder{}
		}
		return writeJSON(cmd.OutOrStdout(), planned)
	}

	w := cmd.OutOrStdout()
	if len(planned) == 0 {
		fmt.Fprintln(w, "No reminders left for", day.Date.Format("Mon 02 Jan 2006"))
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Reminders"))
	fmt.Fprintln(w)

	tbl := display.NewTable("Time", "Kind", "Title", "Message")
	for _, r := range planned {
		tbl.AddRow(s.clock(r.At), string(r.Kind), r.Title, r.Body)
	}
	fmt.Fprint(w, indent(tbl.Render(), "  "))
	fmt.Fprintln(w)
	return nil
}
