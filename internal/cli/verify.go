package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah/internal/api"
	"github.com/smokyabdulrahman/salah/internal/cache"
	"github.com/smokyabdulrahman/salah/internal/display"
)

var (
	flagTolerance time.Duration
	flagCacheDir  string
	flagNoCache   bool
)

// newAPIClient is replaced in tests to point at a local server.
var newAPIClient = api.NewClient

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Cross-check computed times against the Al Adhan API",
		Long: "Fetch reference timings for --date (default today) from api.aladhan.com and compare\n" +
			"them with the offline calculation. Exits non-zero when any time differs by more\n" +
			"than --tolerance. Responses are cached on disk per date and settings.",
		Args: cobra.NoArgs,
		RunE: runVerify,
	}

	cmd.Flags().DurationVar(&flagTolerance, "tolerance", 2*time.Minute, "Largest accepted difference per prayer")
	cmd.Flags().StringVar(&flagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/salah/)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Always fetch from the API")

	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	q := api.Query{
		Date:      s.date,
		Latitude:  s.location.Latitude,
		Longitude: s.location.Longitude,
		Timezone:  s.zone.String(),
		Method:    s.settings.Method,
		Asr:       s.settings.Asr,
	}
	if q.Timezone == "Local" {
		q.Timezone = ""
	}

	resp, err := fetchReference(cmd, q)
	if err != nil {
		return err
	}

	reference, err := resp.Data.Timings.Parse(s.date, s.zone)
	if err != nil {
		return fmt.Errorf("reference timings: %w", err)
	}

	diffs := api.Compare(s.day(0).Start, reference)
	failed := 0
	for _, d := range diffs {
		if !d.Within(flagTolerance) {
			failed++
		}
	}

	if FlagJSON {
		type diffJSON struct {
			Prayer    string `json:"prayer"`
			Local     string `json:"local"`
			Reference string `json:"reference"`
			DeltaSec  int    `json:"delta_seconds"`
			OK        bool   `json:"ok"`
		}
		out := struct {
			Date  string     `json:"date"`
			Hijri string     `json:"hijri,omitempty"`
			Diffs []diffJSON `json:"diffs"`
		}{Date: s.date.Format("2006-01-02"), Hijri: resp.Data.Date.Hijri.Format()}
		for _, d := range diffs {
			out.Diffs = append(out.Diffs, diffJSON{
				Prayer:    d.Name,
				Local:     s.clock(d.Local),
				Reference: s.clock(d.Reference),
				DeltaSec:  int(d.Delta.Seconds()),
				OK:        d.Within(flagTolerance),
			})
		}
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		printVerifyRich(cmd.OutOrStdout(), s, resp, diffs)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d times differ from the reference by more than %s", failed, len(diffs), flagTolerance)
	}
	return nil
}

// fetchReference returns the reference response for q, using the cache when available.
func fetchReference(cmd *cobra.Command, q api.Query) (*api.Response, error) {
	var c *cache.Cache
	if !flagNoCache {
		var err error
		if c, err = cache.New(flagCacheDir); err != nil {
			log.Warn().Err(err).Msg("cache disabled")
			c = nil
		}
	}

	if c != nil {
		if resp := c.Load(q); resp != nil {
			log.Debug().Str("dir", c.Dir()).Msg("reference loaded from cache")
			return resp, nil
		}
	}

	resp, err := newAPIClient().FetchTimings(cmd.Context(), q)
	if err != nil {
		return nil, fmt.Errorf("fetch reference timings: %w", err)
	}

	// Write to cache (best-effort).
	if c != nil {
		if err := c.Save(q, resp); err != nil {
			log.Warn().Err(err).Msg("could not cache reference timings")
		}
	}

	return resp, nil
}

func printVerifyRich(w io.Writer, s *session, resp *api.Response, diffs []api.Diff) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Verify against Al Adhan"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.location.Label())
	fmt.Fprintf(w, "  %s\n", s.date.Format("Monday, 02 January 2006"))
	if h := resp.Data.Date.Hijri.Format(); h != "" {
		fmt.Fprintf(w, "  %s\n", h)
	}
	fmt.Fprintf(w, "  %s\n", display.Gray(fmt.Sprintf("%s · asr %s · tolerance %s", s.settings.Method.Name, s.settings.Asr, flagTolerance)))
	fmt.Fprintln(w)

	tbl := display.NewTable("Prayer", "Local", "Reference", "Delta", "")
	for _, d := range diffs {
		status := display.Green("ok")
		if !d.Within(flagTolerance) {
			status = display.Red("off")
		}
		tbl.AddRow(d.Name, s.clock(d.Local), s.clock(d.Reference), formatDelta(d.Delta), status)
	}
	fmt.Fprint(w, indent(tbl.Render(), "  "))
	fmt.Fprintln(w)
}

func formatDelta(d time.Duration) string {
	if d == 0 {
		return "0m"
	}
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	return fmt.Sprintf("%s%dm", sign, int(d.Minutes()))
}
