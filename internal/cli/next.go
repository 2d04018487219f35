package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah/internal/prayer"
)

var (
	flagFormat  string
	flagPrayers string
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long: "Display the next upcoming prayer time with a countdown. Output has no\n" +
			"trailing newline so it can be embedded in a status bar (tmux, polybar, ...).",
		Args: cobra.NoArgs,
		RunE: runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, name-and-jamaat, full, or a custom Go template")
	cmd.Flags().StringVar(&flagPrayers, "prayers", "", "Comma-separated list of prayers to track (overrides config)")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	// Priority: --prayers flag > config > defaults.
	selected := s.cfg.PrayerList()
	if cmd.Flags().Changed("prayers") && flagPrayers != "" {
		selected = nil
		for _, name := range strings.Split(flagPrayers, ",") {
			n, err := prayer.NormalizeName(name)
			if err != nil {
				return err
			}
			selected = append(selected, n)
		}
	}

	next, err := prayer.Upcoming(s.settings, s.now, selected)
	if err != nil {
		return fmt.Errorf("could not determine next prayer: %w", err)
	}

	if FlagJSON {
		pj := s.prayerJSON(next)
		return writeJSON(cmd.OutOrStdout(), nextJSON{
			Prayer:    pj.Name,
			Time:      pj.Time,
			Jamaat:    pj.Jamaat,
			Remaining: prayer.FormatRemaining(prayer.TimeRemaining(next, s.now)),
		})
	}

	fmt.Fprint(cmd.OutOrStdout(), prayer.FormatOutput(next, s.now, flagFormat, s.layout))
	return nil
}
